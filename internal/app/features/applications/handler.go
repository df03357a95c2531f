// internal/app/features/applications/handler.go
package applications

import (
	"net/http"

	"github.com/dalemusser/placementhub/internal/app/lifecycle/applicationmgr"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the job application endpoints. Every method receives the
// identity the gate resolved for the request.
type Handler struct {
	Apps *applicationmgr.Manager
	Log  *zap.Logger
}

func NewHandler(apps *applicationmgr.Manager, logger *zap.Logger) *Handler {
	return &Handler{Apps: apps, Log: logger}
}

// ServeMine handles GET /applications/mine.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request, who models.Identity) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Request(), h.Log, "applications.mine")
	defer cancel()

	out, err := h.Apps.ListForStudent(ctx, who.ID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, respond.Payload{"onCampus": out.OnCampus, "offCampus": out.OffCampus})
}

// HandleApply handles POST /applications.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request, who models.Identity) {
	var in applicationmgr.ApplyInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Request(), h.Log, "applications.apply")
	defer cancel()

	app, err := h.Apps.Apply(ctx, who.ID, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Application submitted successfully", respond.Payload{"application": app})
}

// HandleCancel handles DELETE /applications/{jobId}?studentId= (admin) and
// DELETE /applications/mine/{jobId} (student).
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request, who models.Identity) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Request(), h.Log, "applications.cancel")
	defer cancel()

	err := h.Apps.Cancel(ctx, who, r.URL.Query().Get("studentId"), chi.URLParam(r, "jobId"))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Application withdrawn successfully", nil)
}

// ServeApplicants handles GET /applications/job/{jobId}/applicants.
func (h *Handler) ServeApplicants(w http.ResponseWriter, r *http.Request, _ models.Identity) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Request(), h.Log, "applications.applicants")
	defer cancel()

	out, err := h.Apps.ListApplicants(ctx, chi.URLParam(r, "jobId"))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, respond.Payload{"applicants": out})
}

// ServeApplied handles GET /applications/applied.
func (h *Handler) ServeApplied(w http.ResponseWriter, r *http.Request, who models.Identity) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Request(), h.Log, "applications.applied")
	defer cancel()

	out, err := h.Apps.ListAppliedJobs(ctx, who.ID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, respond.Payload{"appliedJobs": out})
}

type statusInput struct {
	Status string `json:"status"`
}

// HandleStatus handles PATCH /applications/{applicationId}/status.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request, who models.Identity) {
	var in statusInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Request(), h.Log, "applications.status")
	defer cancel()

	app, err := h.Apps.UpdateStatus(ctx, who, chi.URLParam(r, "applicationId"), in.Status)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Log.Debug("status set", zap.String("by", who.ID), zap.String("application_id", app.ID.Hex()))
	respond.OK(w, respond.Payload{"application": app})
}
