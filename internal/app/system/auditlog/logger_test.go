package auditlog_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dalemusser/placementhub/internal/app/store/audit"
	"github.com/dalemusser/placementhub/internal/app/system/auditlog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type memSink struct {
	mu     sync.Mutex
	events []audit.Event
	err    error
}

func (m *memSink) Log(_ context.Context, e audit.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *memSink) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx := context.Background()

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, "u-1", "a@college.edu")
	logger.ContactsAssigned(ctx, "admin", "caller", 2, 2)
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		level  string
		wantDB int
		wantZ  int
	}{
		{auditlog.LevelAll, 1, 1},
		{auditlog.LevelDB, 1, 0},
		{auditlog.LevelLog, 0, 1},
		{auditlog.LevelOff, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			sink := &memSink{}
			core, logs := observer.New(zapcore.DebugLevel)
			logger := auditlog.New(sink, zap.New(core), auditlog.Config{Auth: tt.level, Admin: auditlog.LevelOff})

			logger.LoginSuccess(context.Background(), "u-1", "a@college.edu")
			logger.ApprovalChanged(context.Background(), "admin", "u-1", true, true)

			if got := sink.len(); got != tt.wantDB {
				t.Errorf("stored events = %d, want %d", got, tt.wantDB)
			}
			if got := logs.FilterMessage("audit event").Len(); got != tt.wantZ {
				t.Errorf("zap events = %d, want %d", got, tt.wantZ)
			}
		})
	}
}

func TestLogger_FailedLoginLogsWarn(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Auth: auditlog.LevelLog})

	logger.LoginFailedWrongPassword(context.Background(), "u-1", "a@college.edu")

	entries := logs.FilterMessage("audit event").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("level = %v, want warn", entries[0].Level)
	}
	if got := entries[0].ContextMap()["failure_reason"]; got != "wrong password" {
		t.Errorf("failure_reason = %v", got)
	}
}

func TestLogger_StoreFailureIsLogged(t *testing.T) {
	sink := &memSink{err: errors.New("no primary")}
	core, logs := observer.New(zapcore.ErrorLevel)
	logger := auditlog.New(sink, zap.New(core), auditlog.Config{Admin: auditlog.LevelDB})

	logger.ContactsUnassigned(context.Background(), "admin", 3, 1)

	if logs.FilterMessage("failed to store audit event").Len() != 1 {
		t.Error("expected store failure to be logged")
	}
}

func TestMiddleware_CarriesClient(t *testing.T) {
	sink := &memSink{}
	logger := auditlog.New(sink, zap.NewNop(), auditlog.Config{Admin: auditlog.LevelDB})

	h := auditlog.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.ApplicationWithdrawn(r.Context(), "admin", "student", "job")
	}))
	req := httptest.NewRequest(http.MethodDelete, "/applications/job", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	req.Header.Set("User-Agent", "TestBrowser/1.0")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if sink.len() != 1 {
		t.Fatalf("expected 1 event, got %d", sink.len())
	}
	e := sink.events[0]
	if e.IP != "10.1.2.3" || e.UserAgent != "TestBrowser/1.0" {
		t.Errorf("client = %q / %q", e.IP, e.UserAgent)
	}
	if e.Details["job_id"] != "job" || e.ActorID != "admin" || e.UserID != "student" {
		t.Errorf("event = %+v", e)
	}
}

func TestValidLevel(t *testing.T) {
	for _, s := range []string{"all", "db", "log", "off"} {
		if !auditlog.ValidLevel(s) {
			t.Errorf("ValidLevel(%q) = false", s)
		}
	}
	if auditlog.ValidLevel("verbose") {
		t.Error("ValidLevel(verbose) = true")
	}
}
