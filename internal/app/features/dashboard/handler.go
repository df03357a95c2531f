// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const listLimit = 5

// ContactReader is the part of contactstore.Store the dashboard reads.
type ContactReader interface {
	ListAssignedTo(ctx context.Context, userID string) ([]models.HRContact, error)
}

// CallLogReader is the part of calllogstore.Store the dashboard reads.
type CallLogReader interface {
	Counts(ctx context.Context, callerID string, now time.Time) (total, pendingFollowUps int64, err error)
	Recent(ctx context.Context, callerID string, limit int) ([]models.CallLog, error)
	UpcomingFollowUps(ctx context.Context, callerID string, now time.Time, limit int) ([]models.CallLog, error)
}

type Handler struct {
	Contacts ContactReader
	Calls    CallLogReader
	Log      *zap.Logger
	now      func() time.Time
}

func NewHandler(contacts ContactReader, calls CallLogReader, logger *zap.Logger) *Handler {
	return &Handler{Contacts: contacts, Calls: calls, Log: logger, now: time.Now}
}

type stats struct {
	TotalContactsAssigned int   `json:"total_contacts_assigned"`
	TotalCalls            int64 `json:"total_calls"`
	PendingFollowUps      int64 `json:"pending_follow_ups"`
}

type summary struct {
	Stats              stats              `json:"stats"`
	RecentCallLogs     []models.CallLog   `json:"recent_call_logs"`
	UpcomingFollowUps  []models.CallLog   `json:"upcoming_follow_ups"`
	AssignedHRContacts []models.HRContact `json:"assigned_hr_contacts"`
}

// ServeDashboard handles GET /dashboard for the requesting staff member.
// The four reads are independent and run concurrently; the first failure
// cancels the rest.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request, who models.Identity) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Request(), h.Log, "dashboard")
	defer cancel()

	now := h.now().UTC()
	out := summary{
		RecentCallLogs:     []models.CallLog{},
		UpcomingFollowUps:  []models.CallLog{},
		AssignedHRContacts: []models.HRContact{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		contacts, err := h.Contacts.ListAssignedTo(gctx, who.ID)
		if err != nil {
			return err
		}
		if contacts != nil {
			out.AssignedHRContacts = contacts
		}
		out.Stats.TotalContactsAssigned = len(contacts)
		return nil
	})
	g.Go(func() error {
		total, pending, err := h.Calls.Counts(gctx, who.ID, now)
		if err != nil {
			return err
		}
		out.Stats.TotalCalls, out.Stats.PendingFollowUps = total, pending
		return nil
	})
	g.Go(func() error {
		logs, err := h.Calls.Recent(gctx, who.ID, listLimit)
		if err != nil {
			return err
		}
		if logs != nil {
			out.RecentCallLogs = logs
		}
		return nil
	})
	g.Go(func() error {
		logs, err := h.Calls.UpcomingFollowUps(gctx, who.ID, now, listLimit)
		if err != nil {
			return err
		}
		if logs != nil {
			out.UpcomingFollowUps = logs
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		respond.Error(w, r, h.Log, apperr.Internal(err))
		return
	}

	respond.OK(w, respond.Payload{"data": out})
}
