// internal/app/features/contacts/handler.go
package contacts

import (
	"net/http"

	"github.com/dalemusser/placementhub/internal/app/lifecycle/assignmentmgr"
	"github.com/dalemusser/placementhub/internal/app/system/auditlog"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Assign *assignmentmgr.Manager
	Audit  *auditlog.Logger
	Log    *zap.Logger
}

func NewHandler(assign *assignmentmgr.Manager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Assign: assign, Audit: audit, Log: logger}
}

type bulkInput struct {
	CallerID   string   `json:"callerId"`
	ContactIDs []string `json:"contactIds"`
}

// ServeList handles GET /contacts?filter=all|assigned|unassigned.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request, _ models.Identity) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Request(), h.Log, "contacts.list")
	defer cancel()

	out, err := h.Assign.ListContacts(ctx, r.URL.Query().Get("filter"))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, respond.Payload{"contacts": out})
}

// HandleBulkAssign handles POST /contacts/bulk-assign.
func (h *Handler) HandleBulkAssign(w http.ResponseWriter, r *http.Request, who models.Identity) {
	var in bulkInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Bulk(), h.Log, "contacts.bulk_assign")
	defer cancel()

	n, err := h.Assign.BulkAssign(ctx, in.CallerID, in.ContactIDs)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Log.Info("bulk assign", zap.String("by", who.ID), zap.String("caller_id", in.CallerID), zap.Int64("count", n))
	h.Audit.ContactsAssigned(r.Context(), who.ID, in.CallerID, len(in.ContactIDs), n)
	respond.JSON(w, http.StatusOK, "Contacts assigned successfully", respond.Payload{"count": n})
}

// HandleBulkUnassign handles POST /contacts/bulk-unassign.
func (h *Handler) HandleBulkUnassign(w http.ResponseWriter, r *http.Request, who models.Identity) {
	var in bulkInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Bulk(), h.Log, "contacts.bulk_unassign")
	defer cancel()

	n, err := h.Assign.BulkUnassign(ctx, in.ContactIDs)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Log.Info("bulk unassign", zap.String("by", who.ID), zap.Int64("count", n))
	h.Audit.ContactsUnassigned(r.Context(), who.ID, len(in.ContactIDs), n)
	respond.JSON(w, http.StatusOK, "Contacts unassigned successfully", respond.Payload{"count": n})
}

// ServeCallerStats handles GET /contacts/caller-stats.
func (h *Handler) ServeCallerStats(w http.ResponseWriter, r *http.Request, _ models.Identity) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Request(), h.Log, "contacts.caller_stats")
	defer cancel()

	out, err := h.Assign.CallerStats(ctx)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, respond.Payload{"callers": out})
}
