package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Pinger is satisfied by *pgxpool.Pool and by the mongo adapter below.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Documents  Pinger
	Relational Pinger
	Log        *zap.Logger
}

// NewHandler constructs a health Handler over both stores.
func NewHandler(documents, relational Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		Documents:  documents,
		Relational: relational,
		Log:        logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status     string `json:"status"`
	Documents  string `json:"documents"`
	Relational string `json:"relational"`
	Message    string `json:"message,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "documents":"connected", "relational":"connected" }
//
// When either store fails its ping: 503 with the failing store marked
// "disconnected". The driver error is logged, not returned.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{
		Status:     "ok",
		Documents:  h.check(ctx, "mongo", h.Documents),
		Relational: h.check(ctx, "postgres", h.Relational),
	}

	status := http.StatusOK
	if resp.Documents != "connected" || resp.Relational != "connected" {
		status = http.StatusServiceUnavailable
		resp.Status = "error"
		resp.Message = "Database unavailable"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) check(ctx context.Context, name string, p Pinger) string {
	if p == nil {
		return "disconnected"
	}
	if err := p.Ping(ctx); err != nil {
		h.Log.Error("health-check: ping failed", zap.String("store", name), zap.Error(err))
		return "disconnected"
	}
	return "connected"
}
