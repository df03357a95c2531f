// internal/app/features/users/handler.go
package users

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/dalemusser/placementhub/internal/app/store/storeerr"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/auditlog"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is the part of userstore.Store this feature needs.
type Store interface {
	List(ctx context.Context, approved *bool) ([]models.Identity, error)
	SetApproved(ctx context.Context, id string, approved bool) (bool, error)
}

// Invalidator drops cached identities after an approval change.
type Invalidator interface {
	Invalidate(id string)
}

type Handler struct {
	Users Store
	Cache Invalidator
	Audit *auditlog.Logger
	Log   *zap.Logger
}

func NewHandler(users Store, cache Invalidator, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Cache: cache, Audit: audit, Log: logger}
}

// ServeList handles GET /users?approved=true|false.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request, _ models.Identity) {
	var approved *bool
	if raw := r.URL.Query().Get("approved"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respond.Error(w, r, h.Log, apperr.InvalidField("approved"))
			return
		}
		approved = &v
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Request(), h.Log, "users.list")
	defer cancel()

	out, err := h.Users.List(ctx, approved)
	if err != nil {
		respond.Error(w, r, h.Log, apperr.Internal(err))
		return
	}
	respond.OK(w, respond.Payload{"users": out})
}

// HandleApprove handles POST /users/{id}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request, who models.Identity) {
	h.setApproved(w, r, who, true)
}

// HandleRevoke handles POST /users/{id}/revoke.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request, who models.Identity) {
	h.setApproved(w, r, who, false)
}

func (h *Handler) setApproved(w http.ResponseWriter, r *http.Request, who models.Identity, approved bool) {
	// The store casts ids to uuid and ignores case; the cache and the
	// self-revoke guard compare canonical strings.
	parsed, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.Log, apperr.ErrUnknownSubject)
		return
	}
	id := parsed.String()
	if !approved && id == who.ID {
		respond.Error(w, r, h.Log, apperr.ErrInvalidField.WithMessage("You cannot revoke your own approval"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Request(), h.Log, "users.set_approved")
	defer cancel()

	changed, err := h.Users.SetApproved(ctx, id, approved)
	// Drop the cache entry even on failure so the next request re-reads.
	h.Cache.Invalidate(id)
	if err != nil {
		if errors.Is(err, storeerr.ErrNotFound) {
			respond.Error(w, r, h.Log, apperr.ErrUnknownSubject)
			return
		}
		respond.Error(w, r, h.Log, apperr.Internal(err))
		return
	}

	msg := "User approved"
	if !approved {
		msg = "User approval revoked"
	}
	if changed {
		h.Log.Info(msg, zap.String("user_id", id), zap.String("by", who.ID))
	}
	h.Audit.ApprovalChanged(r.Context(), who.ID, id, approved, changed)
	respond.JSON(w, http.StatusOK, msg, respond.Payload{"user_id": id, "is_approved": approved, "changed": changed})
}
