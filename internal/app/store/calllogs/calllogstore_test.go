package calllogstore

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/dalemusser/placementhub/internal/app/store/storeerr"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

const callerID = "5f0c6f1e-8a4b-4c43-9a55-4ad0f7c0b0ca"

func TestStore_Counts(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()
	store := New(mock)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`COUNT(*) FILTER (WHERE follow_up_at >= $2)`)).
		WithArgs(callerID, now).
		WillReturnRows(pgxmock.NewRows([]string{"total", "pending"}).AddRow(int64(9), int64(2)))

	total, pending, err := store.Counts(context.Background(), callerID, now)
	if err != nil {
		t.Fatalf("Counts returned error: %v", err)
	}
	if total != 9 || pending != 2 {
		t.Fatalf("Counts = %d, %d; want 9, 2", total, pending)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStore_UpcomingFollowUps(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()
	store := New(mock)

	now := time.Now().UTC()
	due := now.Add(24 * time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta(`AND follow_up_at >= $2 ORDER BY follow_up_at ASC LIMIT $3`)).
		WithArgs(callerID, now, 5).
		WillReturnRows(pgxmock.NewRows([]string{"call_id", "contact_id", "caller_id", "outcome", "notes", "follow_up_at", "created_at"}).
			AddRow("c1", "k1", callerID, "callback", "", &due, now))

	logs, err := store.UpcomingFollowUps(context.Background(), callerID, now, 5)
	if err != nil {
		t.Fatalf("UpcomingFollowUps returned error: %v", err)
	}
	if len(logs) != 1 || logs[0].FollowUpAt == nil || !logs[0].FollowUpAt.Equal(due) {
		t.Fatalf("unexpected logs %+v", logs)
	}
}

var logCols = []string{"call_id", "contact_id", "caller_id", "outcome", "notes", "follow_up_at", "created_at"}

const (
	callID    = "9a0c6f1e-8a4b-4c43-9a55-4ad0f7c0d001"
	contactID = "7b0c6f1e-8a4b-4c43-9a55-4ad0f7c0c00a"
)

func TestStore_Create(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()
	store := New(mock)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO call_logs`)).
		WithArgs(pgxmock.AnyArg(), contactID, callerID, "interested", "asked for JD", (*time.Time)(nil)).
		WillReturnRows(pgxmock.NewRows(logCols).
			AddRow(callID, contactID, callerID, "interested", "asked for JD", (*time.Time)(nil), now))

	got, err := store.Create(context.Background(), models.CallLog{
		ContactID: contactID, CallerID: callerID, Outcome: "interested", Notes: "asked for JD",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if got.ID != callID || got.CreatedAt.IsZero() {
		t.Fatalf("unexpected log %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStore_List_Scope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		caller string
		frag   string
	}{
		{"everyone", "", `FROM call_logs ORDER BY created_at DESC`},
		{"one caller", callerID, `WHERE caller_id = $1::uuid ORDER BY created_at DESC`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mock, err := pgxmock.NewPool()
			if err != nil {
				t.Fatalf("failed to create mock pool: %v", err)
			}
			defer mock.Close()
			store := New(mock)

			q := mock.ExpectQuery(regexp.QuoteMeta(tt.frag))
			if tt.caller != "" {
				q = q.WithArgs(tt.caller)
			}
			q.WillReturnRows(pgxmock.NewRows(logCols).
				AddRow(callID, contactID, callerID, "no answer", "", (*time.Time)(nil), time.Now().UTC()))

			got, err := store.List(context.Background(), tt.caller)
			if err != nil {
				t.Fatalf("List returned error: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("expected 1 log, got %d", len(got))
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestStore_UpdateDelete_NotFound(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()
	store := New(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE call_logs SET outcome = $2`)).
		WithArgs(callID, "callback", "", (*time.Time)(nil)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM call_logs WHERE call_id = $1::uuid`)).
		WithArgs(callID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM call_logs WHERE call_id = $1::uuid`)).
		WithArgs(callID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	if _, err := store.Update(context.Background(), callID, "callback", "", nil); !errors.Is(err, storeerr.ErrNotFound) {
		t.Fatalf("Update: err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(context.Background(), callID); !errors.Is(err, storeerr.ErrNotFound) {
		t.Fatalf("Delete missing: err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(context.Background(), callID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.GetByID(context.Background(), "not-a-uuid"); !errors.Is(err, storeerr.ErrNotFound) {
		t.Fatalf("GetByID malformed: err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
