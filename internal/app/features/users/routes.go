// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts identity approval endpoints (typically at "/users").
// Everything here is admin-only.
func Routes(h *Handler, gate *auth.Gate) chi.Router {
	r := chi.NewRouter()

	r.Get("/", gate.Require(authz.Admins, h.ServeList))
	r.Post("/{id}/approve", gate.Require(authz.Admins, h.HandleApprove))
	r.Post("/{id}/revoke", gate.Require(authz.Admins, h.HandleRevoke))

	return r
}
