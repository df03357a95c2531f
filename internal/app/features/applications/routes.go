// internal/app/features/applications/routes.go
package applications

import (
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the application endpoints (typically at "/applications").
//
//	h := applications.NewHandler(appMgr, logger)
//	r.Mount("/applications", applications.Routes(h, gate))
func Routes(h *Handler, gate *auth.Gate) chi.Router {
	r := chi.NewRouter()

	r.Get("/mine", gate.Require(authz.Anyone, h.ServeMine))
	r.Get("/applied", gate.Require(authz.Anyone, h.ServeApplied))
	r.Post("/", gate.Require(authz.Students, h.HandleApply))

	// Withdrawal: students act on their own, admins name the student.
	r.Delete("/mine/{jobId}", gate.Require(authz.Students, h.HandleCancel))
	r.Delete("/{jobId}", gate.Require(authz.Admins, h.HandleCancel))

	// Review.
	r.Get("/job/{jobId}/applicants", gate.Require(authz.Staff, h.ServeApplicants))
	r.Patch("/{applicationId}/status", gate.Require(authz.Staff, h.HandleStatus))

	return r
}
