package calllogstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/placementhub/internal/app/store/storeerr"
	"github.com/dalemusser/placementhub/internal/app/system/txn"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const logColumns = `call_id::text, contact_id::text, caller_id::text, outcome, notes, follow_up_at, created_at`

type Store struct {
	db txn.Queryer
}

func New(db txn.Queryer) *Store {
	return &Store{db: db}
}

func (s *Store) q(ctx context.Context) txn.Queryer {
	return txn.QueryerFromContext(ctx, s.db)
}

// Create inserts l under a fresh id and returns the stored row. The
// contact and caller must exist; the foreign keys reject anything else.
func (s *Store) Create(ctx context.Context, l models.CallLog) (models.CallLog, error) {
	row := s.q(ctx).QueryRow(ctx,
		`INSERT INTO call_logs (call_id, contact_id, caller_id, outcome, notes, follow_up_at)
		 VALUES ($1::uuid, $2::uuid, $3::uuid, $4, $5, $6)
		 RETURNING `+logColumns,
		uuid.NewString(), l.ContactID, l.CallerID, l.Outcome, l.Notes, l.FollowUpAt)
	return scanLog(row)
}

// GetByID loads one call log. Ids that are not uuids return
// storeerr.ErrNotFound without a query.
func (s *Store) GetByID(ctx context.Context, id string) (models.CallLog, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.CallLog{}, storeerr.ErrNotFound
	}
	return scanLog(s.q(ctx).QueryRow(ctx,
		`SELECT `+logColumns+` FROM call_logs WHERE call_id = $1::uuid`, id))
}

// List returns call logs newest first, narrowed to callerID unless it is
// empty.
func (s *Store) List(ctx context.Context, callerID string) ([]models.CallLog, error) {
	if callerID == "" {
		return s.list(ctx, `SELECT `+logColumns+` FROM call_logs ORDER BY created_at DESC`)
	}
	return s.list(ctx,
		`SELECT `+logColumns+` FROM call_logs WHERE caller_id = $1::uuid ORDER BY created_at DESC`,
		callerID)
}

// Update replaces the editable fields of a call log. A nil followUp
// clears the follow-up.
func (s *Store) Update(ctx context.Context, id, outcome, notes string, followUp *time.Time) (models.CallLog, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.CallLog{}, storeerr.ErrNotFound
	}
	return scanLog(s.q(ctx).QueryRow(ctx,
		`UPDATE call_logs SET outcome = $2, notes = $3, follow_up_at = $4
		 WHERE call_id = $1::uuid
		 RETURNING `+logColumns,
		id, outcome, notes, followUp))
}

// Delete removes a call log.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return storeerr.ErrNotFound
	}
	tag, err := s.q(ctx).Exec(ctx, `DELETE FROM call_logs WHERE call_id = $1::uuid`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storeerr.ErrNotFound
	}
	return nil
}

// Counts returns how many calls callerID has logged and how many of those
// still have a follow-up at or after now.
func (s *Store) Counts(ctx context.Context, callerID string, now time.Time) (total, pendingFollowUps int64, err error) {
	err = s.q(ctx).QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE follow_up_at >= $2) FROM call_logs WHERE caller_id = $1::uuid`,
		callerID, now).Scan(&total, &pendingFollowUps)
	return total, pendingFollowUps, err
}

// Recent returns the newest calls logged by callerID.
func (s *Store) Recent(ctx context.Context, callerID string, limit int) ([]models.CallLog, error) {
	return s.list(ctx,
		`SELECT `+logColumns+` FROM call_logs WHERE caller_id = $1::uuid ORDER BY created_at DESC LIMIT $2`,
		callerID, limit)
}

// UpcomingFollowUps returns calls whose follow-up is due at or after now,
// soonest first.
func (s *Store) UpcomingFollowUps(ctx context.Context, callerID string, now time.Time, limit int) ([]models.CallLog, error) {
	return s.list(ctx,
		`SELECT `+logColumns+` FROM call_logs WHERE caller_id = $1::uuid AND follow_up_at >= $2 ORDER BY follow_up_at ASC LIMIT $3`,
		callerID, now, limit)
}

func (s *Store) list(ctx context.Context, sql string, args ...any) ([]models.CallLog, error) {
	rows, err := s.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.CallLog{}
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanLog(row pgx.Row) (models.CallLog, error) {
	var l models.CallLog
	if err := row.Scan(&l.ID, &l.ContactID, &l.CallerID, &l.Outcome, &l.Notes, &l.FollowUpAt, &l.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.CallLog{}, storeerr.ErrNotFound
		}
		return models.CallLog{}, err
	}
	return l, nil
}
