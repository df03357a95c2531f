// internal/app/features/calllogs/handler.go
package calllogs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/placementhub/internal/app/store/storeerr"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/auditlog"
	"github.com/dalemusser/placementhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/placementhub/internal/app/system/limits"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogStore is the call_logs side of the relational store.
type LogStore interface {
	Create(ctx context.Context, l models.CallLog) (models.CallLog, error)
	GetByID(ctx context.Context, id string) (models.CallLog, error)
	List(ctx context.Context, callerID string) ([]models.CallLog, error)
	Update(ctx context.Context, id, outcome, notes string, followUp *time.Time) (models.CallLog, error)
	Delete(ctx context.Context, id string) error
}

// ContactLocker share-locks the contact a new log refers to, so it cannot
// be reassigned while the log is written.
type ContactLocker interface {
	GetContactForShare(ctx context.Context, id string) (models.HRContact, error)
}

type TxRunner interface {
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type Handler struct {
	Tx       TxRunner
	Logs     LogStore
	Contacts ContactLocker
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(tx TxRunner, logs LogStore, contacts ContactLocker, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Tx: tx, Logs: logs, Contacts: contacts, Audit: audit, Log: logger}
}

type logInput struct {
	ContactID  string     `json:"contactId"`
	Outcome    string     `json:"outcome"`
	Notes      string     `json:"notes"`
	FollowUpAt *time.Time `json:"followUpAt"`
}

func (in *logInput) clean() error {
	in.Outcome = htmlsanitize.PlainText(in.Outcome)
	in.Notes = htmlsanitize.PlainText(in.Notes)
	if in.Outcome == "" {
		return apperr.MissingField("outcome")
	}
	if len(in.Notes) > limits.MaxCallNotes {
		return apperr.ErrInvalidField.WithMessage(fmt.Sprintf("notes: at most %d characters", limits.MaxCallNotes))
	}
	if in.FollowUpAt != nil {
		t := in.FollowUpAt.UTC()
		in.FollowUpAt = &t
	}
	return nil
}

// visible loads the log named in the URL. Callers only see their own;
// anyone else's log reports CALL_LOG_NOT_FOUND.
func (h *Handler) visible(ctx context.Context, r *http.Request, who models.Identity) (models.CallLog, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return models.CallLog{}, apperr.ErrCallLogNotFound
	}
	l, err := h.Logs.GetByID(ctx, id.String())
	if err != nil {
		if errors.Is(err, storeerr.ErrNotFound) {
			return models.CallLog{}, apperr.ErrCallLogNotFound
		}
		return models.CallLog{}, apperr.Internal(err)
	}
	if who.Role != models.RoleAdmin && l.CallerID != who.ID {
		return models.CallLog{}, apperr.ErrCallLogNotFound
	}
	return l, nil
}

// ServeList handles GET /call-logs. Admins see every log, or one caller's
// with ?callerId=; everyone else sees their own.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request, who models.Identity) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Request(), h.Log, "calllogs.list")
	defer cancel()

	callerID := who.ID
	if who.Role == models.RoleAdmin {
		callerID = ""
		if q := strings.TrimSpace(r.URL.Query().Get("callerId")); q != "" {
			parsed, err := uuid.Parse(q)
			if err != nil {
				respond.Error(w, r, h.Log, apperr.ErrInvalidField.WithMessage("callerId must be a user id"))
				return
			}
			callerID = parsed.String()
		}
	}

	out, err := h.Logs.List(ctx, callerID)
	if err != nil {
		respond.Error(w, r, h.Log, apperr.Internal(err))
		return
	}
	respond.OK(w, respond.Payload{"callLogs": out})
}

// ServeOne handles GET /call-logs/{id}.
func (h *Handler) ServeOne(w http.ResponseWriter, r *http.Request, who models.Identity) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Request(), h.Log, "calllogs.get")
	defer cancel()

	l, err := h.visible(ctx, r, who)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, respond.Payload{"callLog": l})
}

// HandleCreate handles POST /call-logs. Callers may only log contacts
// assigned to them; admins may log any contact.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request, who models.Identity) {
	var in logInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if strings.TrimSpace(in.ContactID) == "" {
		respond.Error(w, r, h.Log, apperr.MissingField("contactId"))
		return
	}
	contactID, err := uuid.Parse(strings.TrimSpace(in.ContactID))
	if err != nil {
		respond.Error(w, r, h.Log, apperr.ErrContactNotFound)
		return
	}
	if err := in.clean(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Request(), h.Log, "calllogs.create")
	defer cancel()

	var created models.CallLog
	err = h.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		c, err := h.Contacts.GetContactForShare(ctx, contactID.String())
		if err != nil {
			if errors.Is(err, storeerr.ErrNotFound) {
				return apperr.ErrContactNotFound
			}
			return apperr.Internal(err)
		}
		if who.Role != models.RoleAdmin && c.AssignedTo != who.ID {
			return apperr.ErrAccessDenied.WithMessage("HR contact is not assigned to you")
		}
		created, err = h.Logs.Create(ctx, models.CallLog{
			ContactID:  c.ID,
			CallerID:   who.ID,
			Outcome:    in.Outcome,
			Notes:      in.Notes,
			FollowUpAt: in.FollowUpAt,
		})
		if err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Audit.CallLogCreated(r.Context(), who.ID, created.ID, created.ContactID)
	respond.JSON(w, http.StatusCreated, "Call logged", respond.Payload{"callLog": created})
}

// HandleUpdate handles PUT /call-logs/{id}. Only the owner or an admin
// may edit; the contact and owner never change.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request, who models.Identity) {
	var in logInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := in.clean(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Request(), h.Log, "calllogs.update")
	defer cancel()

	cur, err := h.visible(ctx, r, who)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	updated, err := h.Logs.Update(ctx, cur.ID, in.Outcome, in.Notes, in.FollowUpAt)
	if err != nil {
		if errors.Is(err, storeerr.ErrNotFound) {
			err = apperr.ErrCallLogNotFound
		} else {
			err = apperr.Internal(err)
		}
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Audit.CallLogUpdated(r.Context(), who.ID, updated.CallerID, updated.ID)
	respond.JSON(w, http.StatusOK, "Call log updated", respond.Payload{"callLog": updated})
}

// HandleDelete handles DELETE /call-logs/{id}. Admin only.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request, who models.Identity) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Request(), h.Log, "calllogs.delete")
	defer cancel()

	cur, err := h.visible(ctx, r, who)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := h.Logs.Delete(ctx, cur.ID); err != nil {
		if errors.Is(err, storeerr.ErrNotFound) {
			err = apperr.ErrCallLogNotFound
		} else {
			err = apperr.Internal(err)
		}
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Log.Info("call log deleted", zap.String("by", who.ID), zap.String("call_id", cur.ID))
	h.Audit.CallLogDeleted(r.Context(), who.ID, cur.CallerID, cur.ID)
	respond.JSON(w, http.StatusOK, "Call log deleted", nil)
}
