// Package assignmentmgr is the only writer of HR contact assignments.
package assignmentmgr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/placementhub/internal/app/store/storeerr"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/limits"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TxRunner runs fn in one relational transaction.
type TxRunner interface {
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

// ContactStore is the hr_contacts side of the relational store.
type ContactStore interface {
	List(ctx context.Context, filter models.ContactFilter) ([]models.HRContact, error)
	LockByIDs(ctx context.Context, ids []string) ([]string, error)
	AssignTo(ctx context.Context, ids []string, userID string) (int64, error)
	Unassign(ctx context.Context, ids []string) (int64, error)
	CallerStats(ctx context.Context) ([]models.CallerStat, error)
}

// IdentityStore locks the assignee row for the duration of the batch.
type IdentityStore interface {
	GetForShare(ctx context.Context, id string) (models.Identity, error)
}

type Manager struct {
	tx       TxRunner
	contacts ContactStore
	ids      IdentityStore
	log      *zap.Logger
}

func New(tx TxRunner, contacts ContactStore, ids IdentityStore, logger *zap.Logger) *Manager {
	return &Manager{tx: tx, contacts: contacts, ids: ids, log: logger}
}

// normalizeIDs trims, lower-cases, drops blanks, and collapses duplicates
// while keeping first-seen order.
func normalizeIDs(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, id := range raw {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, apperr.MissingField("contactIds")
	}
	if len(out) > limits.MaxBulkIDs {
		return nil, apperr.ErrInvalidField.WithMessage(fmt.Sprintf("contactIds: at most %d per request", limits.MaxBulkIDs))
	}
	return out, nil
}

// checkIDs rejects ids that are not uuids, since they cannot name a contact.
func checkIDs(ids []string) error {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return apperr.ErrContactNotFound.WithMessage("HR contact not found: " + id)
		}
	}
	return nil
}

// lockAll locks every contact in ids or fails with CONTACT_NOT_FOUND.
func (m *Manager) lockAll(ctx context.Context, ids []string) error {
	found, err := m.contacts.LockByIDs(ctx, ids)
	if err != nil {
		return apperr.Internal(err)
	}
	if len(found) == len(ids) {
		return nil
	}
	have := make(map[string]struct{}, len(found))
	for _, id := range found {
		have[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := have[id]; !ok {
			return apperr.ErrContactNotFound.WithMessage("HR contact not found: " + id)
		}
	}
	return apperr.ErrContactNotFound
}

// BulkAssign points every listed contact at callerID in one transaction.
// The assignee must be an approved caller or admin; this is checked before
// any contact id is looked at, so a bad assignee always reports
// INVALID_CALLER. Contacts held by someone else are overwritten.
func (m *Manager) BulkAssign(ctx context.Context, callerID string, contactIDs []string) (int64, error) {
	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return 0, apperr.MissingField("callerId")
	}
	ids, err := normalizeIDs(contactIDs)
	if err != nil {
		return 0, err
	}

	var count int64
	err = m.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		who, err := m.ids.GetForShare(ctx, callerID)
		if err != nil {
			if errors.Is(err, storeerr.ErrNotFound) {
				return apperr.ErrInvalidCaller
			}
			return apperr.Internal(err)
		}
		if !who.Role.CanHoldContacts() || !who.Approved {
			return apperr.ErrInvalidCaller
		}
		if err := checkIDs(ids); err != nil {
			return err
		}
		if err := m.lockAll(ctx, ids); err != nil {
			return err
		}
		n, err := m.contacts.AssignTo(ctx, ids, who.ID)
		if err != nil {
			return apperr.Internal(err)
		}
		count = n
		return nil
	})
	if err != nil {
		return 0, apperr.From(err)
	}

	m.log.Info("contacts assigned",
		zap.String("caller_id", callerID),
		zap.Int("requested", len(ids)),
		zap.Int64("assigned", count))
	return count, nil
}

// BulkUnassign clears the assignee of every listed contact in one
// transaction. Contacts that were already unassigned are not counted and
// are not an error.
func (m *Manager) BulkUnassign(ctx context.Context, contactIDs []string) (int64, error) {
	ids, err := normalizeIDs(contactIDs)
	if err != nil {
		return 0, err
	}
	if err := checkIDs(ids); err != nil {
		return 0, err
	}

	var count int64
	err = m.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		if err := m.lockAll(ctx, ids); err != nil {
			return err
		}
		n, err := m.contacts.Unassign(ctx, ids)
		if err != nil {
			return apperr.Internal(err)
		}
		count = n
		return nil
	})
	if err != nil {
		return 0, apperr.From(err)
	}

	m.log.Info("contacts unassigned",
		zap.Int("requested", len(ids)),
		zap.Int64("unassigned", count))
	return count, nil
}

// ListContacts returns contacts narrowed by a filter name; blank means all.
func (m *Manager) ListContacts(ctx context.Context, filter string) ([]models.HRContact, error) {
	f, ok := models.ParseContactFilter(strings.TrimSpace(filter))
	if !ok {
		return nil, apperr.InvalidField("filter")
	}
	out, err := m.contacts.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// CallerStats reports how many contacts each possible assignee holds.
func (m *Manager) CallerStats(ctx context.Context) ([]models.CallerStat, error) {
	out, err := m.contacts.CallerStats(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}
