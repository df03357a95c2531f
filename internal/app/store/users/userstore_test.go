package userstore

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/dalemusser/placementhub/internal/app/store/storeerr"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var identityCols = []string{"user_id", "full_name", "email", "role", "is_approved", "created_at"}

const aliceID = "5f0c6f1e-8a4b-4c43-9a55-4ad0f7c0b001"

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestStore_GetByID(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	store := New(mock)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE user_id = $1::uuid`)).
		WithArgs(aliceID).
		WillReturnRows(pgxmock.NewRows(identityCols).
			AddRow(aliceID, "Alice", "alice@example.com", "student", true, now))

	got, err := store.GetByID(context.Background(), aliceID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if got.ID != aliceID || got.Role != models.RoleStudent || !got.Approved {
		t.Fatalf("unexpected identity %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStore_GetByID_MalformedIDSkipsQuery(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	store := New(mock)

	if _, err := store.GetByID(context.Background(), "not-a-uuid"); !errors.Is(err, storeerr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStore_GetByID_NoRows(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	store := New(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE user_id = $1::uuid`)).
		WithArgs(aliceID).
		WillReturnRows(pgxmock.NewRows(identityCols))

	if _, err := store.GetByID(context.Background(), aliceID); !errors.Is(err, storeerr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	store := New(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs(pgxmock.AnyArg(), "Bob", "bob@example.com", "hash", "caller", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := store.Create(context.Background(), " Bob ", "  BOB@example.com", models.RoleCaller, "hash")
	if !errors.Is(err, storeerr.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStore_SetApproved(t *testing.T) {
	t.Parallel()

	t.Run("changed", func(t *testing.T) {
		mock := newMock(t)
		store := New(mock)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET is_approved = $2`)).
			WithArgs(aliceID, true).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		changed, err := store.SetApproved(context.Background(), aliceID, true)
		if err != nil || !changed {
			t.Fatalf("SetApproved = %v, %v; want true, nil", changed, err)
		}
	})

	t.Run("already in state", func(t *testing.T) {
		mock := newMock(t)
		store := New(mock)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET is_approved = $2`)).
			WithArgs(aliceID, true).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE user_id = $1::uuid`)).
			WithArgs(aliceID).
			WillReturnRows(pgxmock.NewRows(identityCols).
				AddRow(aliceID, "Alice", "alice@example.com", "student", true, time.Now()))

		changed, err := store.SetApproved(context.Background(), aliceID, true)
		if err != nil || changed {
			t.Fatalf("SetApproved = %v, %v; want false, nil", changed, err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		mock := newMock(t)
		store := New(mock)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET is_approved = $2`)).
			WithArgs(aliceID, false).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE user_id = $1::uuid`)).
			WithArgs(aliceID).
			WillReturnRows(pgxmock.NewRows(identityCols))

		if _, err := store.SetApproved(context.Background(), aliceID, false); !errors.Is(err, storeerr.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestStore_PromoteAdmin(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	store := New(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET role = 'admin', is_approved = true`)).
		WithArgs("alice@example.com").
		WillReturnRows(pgxmock.NewRows(identityCols).
			AddRow(aliceID, "Alice", "alice@example.com", "admin", true, time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET role = 'admin', is_approved = true`)).
		WithArgs("nobody@example.com").
		WillReturnRows(pgxmock.NewRows(identityCols))

	got, err := store.PromoteAdmin(context.Background(), "  Alice@Example.com ")
	if err != nil {
		t.Fatalf("PromoteAdmin returned error: %v", err)
	}
	if got.Role != models.RoleAdmin || !got.Approved {
		t.Fatalf("unexpected identity %+v", got)
	}
	if _, err := store.PromoteAdmin(context.Background(), "nobody@example.com"); !errors.Is(err, storeerr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStore_GetMany_DropsMalformedIDs(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	store := New(mock)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE user_id = ANY($1::uuid[])`)).
		WithArgs([]string{aliceID}).
		WillReturnRows(pgxmock.NewRows(identityCols).
			AddRow(aliceID, "Alice", "alice@example.com", "student", true, now))

	got, err := store.GetMany(context.Background(), []string{aliceID, "garbage"})
	if err != nil {
		t.Fatalf("GetMany returned error: %v", err)
	}
	if len(got) != 1 || got[aliceID].FullName != "Alice" {
		t.Fatalf("unexpected result %+v", got)
	}
}

type countingSource struct {
	calls int
	id    models.Identity
	err   error
}

func (c *countingSource) GetByID(_ context.Context, _ string) (models.Identity, error) {
	c.calls++
	return c.id, c.err
}

func TestFetcher_CachesAndInvalidates(t *testing.T) {
	t.Parallel()
	src := &countingSource{id: models.Identity{ID: aliceID, Role: models.RoleStudent, Approved: true}}
	f := NewFetcher(src, 16, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := f.Resolve(context.Background(), aliceID); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
	}
	if src.calls != 1 {
		t.Fatalf("expected 1 source call, got %d", src.calls)
	}

	f.Invalidate(aliceID)
	if _, err := f.Resolve(context.Background(), aliceID); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("expected 2 source calls after invalidate, got %d", src.calls)
	}
}

func TestFetcher_UnknownSubject(t *testing.T) {
	t.Parallel()
	f := NewFetcher(&countingSource{err: storeerr.ErrNotFound}, 0, 0)

	_, err := f.Resolve(context.Background(), aliceID)
	if !errors.Is(err, apperr.ErrUnknownSubject) {
		t.Fatalf("expected UNKNOWN_SUBJECT, got %v", err)
	}
}
