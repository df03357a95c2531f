// internal/app/features/contacts/routes.go
package contacts

import (
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts HR contact endpoints (typically at "/contacts").
func Routes(h *Handler, gate *auth.Gate) chi.Router {
	r := chi.NewRouter()

	r.Get("/", gate.Require(authz.Staff, h.ServeList))
	r.Get("/caller-stats", gate.Require(authz.Admins, h.ServeCallerStats))

	// Only admins move contacts between callers.
	r.Post("/bulk-assign", gate.Require(authz.Admins, h.HandleBulkAssign))
	r.Post("/bulk-unassign", gate.Require(authz.Admins, h.HandleBulkUnassign))

	return r
}
