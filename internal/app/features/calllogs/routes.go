// internal/app/features/calllogs/routes.go
package calllogs

import (
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts call log endpoints (typically at "/call-logs").
func Routes(h *Handler, gate *auth.Gate) chi.Router {
	r := chi.NewRouter()

	r.Get("/", gate.Require(authz.Staff, h.ServeList))
	r.Post("/", gate.Require(authz.Staff, h.HandleCreate))
	r.Get("/{id}", gate.Require(authz.Staff, h.ServeOne))
	r.Put("/{id}", gate.Require(authz.Staff, h.HandleUpdate))
	r.Delete("/{id}", gate.Require(authz.Admins, h.HandleDelete))

	return r
}
