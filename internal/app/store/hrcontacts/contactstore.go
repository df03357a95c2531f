package contactstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/placementhub/internal/app/store/storeerr"
	"github.com/dalemusser/placementhub/internal/app/system/txn"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const contactColumns = `contact_id::text, full_name, company, email, phone, COALESCE(assigned_to_user_id::text, ''), updated_at`

type Store struct {
	db txn.Queryer
}

func New(db txn.Queryer) *Store {
	return &Store{db: db}
}

func (s *Store) q(ctx context.Context) txn.Queryer {
	return txn.QueryerFromContext(ctx, s.db)
}

// List returns contacts narrowed by filter, ordered by company then name.
func (s *Store) List(ctx context.Context, filter models.ContactFilter) ([]models.HRContact, error) {
	where := ""
	switch filter {
	case models.ContactsAll, "":
	case models.ContactsAssigned:
		where = ` WHERE assigned_to_user_id IS NOT NULL`
	case models.ContactsUnassigned:
		where = ` WHERE assigned_to_user_id IS NULL`
	default:
		return nil, fmt.Errorf("contactstore: unknown filter %q", filter)
	}
	rows, err := s.q(ctx).Query(ctx,
		`SELECT `+contactColumns+` FROM hr_contacts`+where+` ORDER BY company, full_name, contact_id`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ListAssignedTo returns the contacts currently held by userID.
func (s *Store) ListAssignedTo(ctx context.Context, userID string) ([]models.HRContact, error) {
	rows, err := s.q(ctx).Query(ctx,
		`SELECT `+contactColumns+` FROM hr_contacts WHERE assigned_to_user_id = $1::uuid ORDER BY company, full_name, contact_id`,
		userID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// GetContactForShare loads one contact and holds a share lock on the row
// until the surrounding transaction ends, so its assignee cannot change
// underneath the caller. Ids that are not uuids return storeerr.ErrNotFound.
func (s *Store) GetContactForShare(ctx context.Context, id string) (models.HRContact, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.HRContact{}, storeerr.ErrNotFound
	}
	var c models.HRContact
	err := s.q(ctx).QueryRow(ctx,
		`SELECT `+contactColumns+` FROM hr_contacts WHERE contact_id = $1::uuid FOR SHARE`, id).
		Scan(&c.ID, &c.FullName, &c.Company, &c.Email, &c.Phone, &c.AssignedTo, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.HRContact{}, storeerr.ErrNotFound
		}
		return models.HRContact{}, err
	}
	return c, nil
}

// LockByIDs row-locks the given contacts for the rest of the transaction and
// returns the ids that exist. Callers compare the result with their input to
// detect unknown ids before writing anything.
func (s *Store) LockByIDs(ctx context.Context, ids []string) ([]string, error) {
	rows, err := s.q(ctx).Query(ctx,
		`SELECT contact_id::text FROM hr_contacts WHERE contact_id = ANY($1::uuid[]) ORDER BY contact_id FOR UPDATE`,
		ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make([]string, 0, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found = append(found, id)
	}
	return found, rows.Err()
}

// AssignTo points every listed contact at userID, replacing any previous
// holder. It returns the number of rows written.
func (s *Store) AssignTo(ctx context.Context, ids []string, userID string) (int64, error) {
	tag, err := s.q(ctx).Exec(ctx,
		`UPDATE hr_contacts SET assigned_to_user_id = $1::uuid, updated_at = now() WHERE contact_id = ANY($2::uuid[])`,
		userID, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Unassign clears the holder of every listed contact. Contacts that were
// already unassigned are left alone and not counted.
func (s *Store) Unassign(ctx context.Context, ids []string) (int64, error) {
	tag, err := s.q(ctx).Exec(ctx,
		`UPDATE hr_contacts SET assigned_to_user_id = NULL, updated_at = now() WHERE contact_id = ANY($1::uuid[]) AND assigned_to_user_id IS NOT NULL`,
		ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CallerStats counts assigned contacts per identity that may hold them,
// including holders with zero contacts.
func (s *Store) CallerStats(ctx context.Context) ([]models.CallerStat, error) {
	rows, err := s.q(ctx).Query(ctx,
		`SELECT u.user_id::text, u.full_name, COUNT(c.contact_id) FROM users u `+
			`LEFT JOIN hr_contacts c ON c.assigned_to_user_id = u.user_id `+
			`WHERE u.role IN ('caller', 'admin') GROUP BY u.user_id, u.full_name ORDER BY u.full_name, u.user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.CallerStat{}
	for rows.Next() {
		var st models.CallerStat
		if err := rows.Scan(&st.CallerID, &st.FullName, &st.TotalContactsAssigned); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func collect(rows pgx.Rows) ([]models.HRContact, error) {
	defer rows.Close()
	out := []models.HRContact{}
	for rows.Next() {
		var c models.HRContact
		if err := rows.Scan(&c.ID, &c.FullName, &c.Company, &c.Email, &c.Phone, &c.AssignedTo, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
