package userstore

// Terminology: User Identifiers
//   - UserID / userID / user_id: the uuid primary key of a users row; also the
//     subject of an issued bearer token
//   - Email: the login name, stored folded (lowercase, diacritics stripped)

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/placementhub/internal/app/store/storeerr"
	"github.com/dalemusser/placementhub/internal/app/system/normalize"
	"github.com/dalemusser/placementhub/internal/app/system/txn"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// identityColumns never includes password_hash.
const identityColumns = `user_id::text, full_name, email, role, is_approved, created_at`

type Store struct {
	db txn.Queryer
}

func New(db txn.Queryer) *Store {
	return &Store{db: db}
}

func (s *Store) q(ctx context.Context) txn.Queryer {
	return txn.QueryerFromContext(ctx, s.db)
}

// NormalizeEmail folds an email for storage and lookup.
func NormalizeEmail(email string) string {
	return normalize.Email(email)
}

// GetByID loads an identity by primary key. Ids that are not uuids cannot
// match a row and return storeerr.ErrNotFound without a query.
func (s *Store) GetByID(ctx context.Context, id string) (models.Identity, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Identity{}, storeerr.ErrNotFound
	}
	row := s.q(ctx).QueryRow(ctx,
		`SELECT `+identityColumns+` FROM users WHERE user_id = $1::uuid`, id)
	return scanIdentity(row)
}

// GetForShare loads an identity and holds a share lock on the row until the
// surrounding transaction ends, so its role and approval cannot change
// underneath the caller.
func (s *Store) GetForShare(ctx context.Context, id string) (models.Identity, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Identity{}, storeerr.ErrNotFound
	}
	row := s.q(ctx).QueryRow(ctx,
		`SELECT `+identityColumns+` FROM users WHERE user_id = $1::uuid FOR SHARE`, id)
	return scanIdentity(row)
}

// GetMany loads identities by id. Unknown and malformed ids are simply
// absent from the result.
func (s *Store) GetMany(ctx context.Context, ids []string) (map[string]models.Identity, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	out := make(map[string]models.Identity, len(valid))
	if len(valid) == 0 {
		return out, nil
	}

	rows, err := s.q(ctx).Query(ctx,
		`SELECT `+identityColumns+` FROM users WHERE user_id = ANY($1::uuid[])`, valid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		id, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		out[id.ID] = id
	}
	return out, rows.Err()
}

// List returns identities ordered by name. A nil approved returns everyone.
func (s *Store) List(ctx context.Context, approved *bool) ([]models.Identity, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if approved == nil {
		rows, err = s.q(ctx).Query(ctx,
			`SELECT `+identityColumns+` FROM users ORDER BY full_name, user_id`)
	} else {
		rows, err = s.q(ctx).Query(ctx,
			`SELECT `+identityColumns+` FROM users WHERE is_approved = $1 ORDER BY full_name, user_id`, *approved)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Identity{}
	for rows.Next() {
		id, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// GetCredentialByEmail loads the identity and password hash for login.
func (s *Store) GetCredentialByEmail(ctx context.Context, email string) (models.Credential, error) {
	row := s.q(ctx).QueryRow(ctx,
		`SELECT `+identityColumns+`, password_hash FROM users WHERE email = $1`, NormalizeEmail(email))

	var (
		c    models.Credential
		role string
	)
	err := row.Scan(&c.Identity.ID, &c.Identity.FullName, &c.Identity.Email, &role,
		&c.Identity.Approved, &c.Identity.CreatedAt, &c.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Credential{}, storeerr.ErrNotFound
		}
		return models.Credential{}, err
	}
	c.Identity.Role = models.Role(role)
	return c, nil
}

// Create inserts a new, unapproved identity. A taken email returns
// storeerr.ErrDuplicate.
func (s *Store) Create(ctx context.Context, fullName, email string, role models.Role, passwordHash string) (models.Identity, error) {
	if _, ok := models.ParseRole(string(role)); !ok {
		return models.Identity{}, fmt.Errorf("userstore: invalid role %q", role)
	}
	now := time.Now().UTC()
	row := s.q(ctx).QueryRow(ctx,
		`INSERT INTO users (user_id, full_name, email, password_hash, role, is_approved, created_at, updated_at) `+
			`VALUES ($1::uuid, $2, $3, $4, $5, false, $6, $6) RETURNING `+identityColumns,
		uuid.NewString(), normalize.Name(fullName), NormalizeEmail(email), passwordHash, string(role), now)

	id, err := scanIdentity(row)
	if err != nil {
		if txn.IsUniqueViolation(err) {
			return models.Identity{}, storeerr.ErrDuplicate
		}
		return models.Identity{}, err
	}
	return id, nil
}

// SetApproved sets the approval flag. It is idempotent: changed is false when
// the identity already had the requested state. Unknown ids return
// storeerr.ErrNotFound.
func (s *Store) SetApproved(ctx context.Context, id string, approved bool) (changed bool, err error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, storeerr.ErrNotFound
	}
	tag, err := s.q(ctx).Exec(ctx,
		`UPDATE users SET is_approved = $2, updated_at = now() WHERE user_id = $1::uuid AND is_approved <> $2`,
		id, approved)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// PromoteAdmin makes the identity registered under email an approved admin.
// Used at startup to seed the first admin; unknown emails return
// storeerr.ErrNotFound.
func (s *Store) PromoteAdmin(ctx context.Context, email string) (models.Identity, error) {
	row := s.q(ctx).QueryRow(ctx,
		`UPDATE users SET role = 'admin', is_approved = true, updated_at = now() WHERE email = $1 RETURNING `+identityColumns,
		NormalizeEmail(email))
	return scanIdentity(row)
}

func scanIdentity(row pgx.Row) (models.Identity, error) {
	var (
		id   models.Identity
		role string
	)
	if err := row.Scan(&id.ID, &id.FullName, &id.Email, &role, &id.Approved, &id.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Identity{}, storeerr.ErrNotFound
		}
		return models.Identity{}, err
	}
	id.Role = models.Role(role)
	return id, nil
}
