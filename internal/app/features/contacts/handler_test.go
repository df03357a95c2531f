package contacts_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/placementhub/internal/app/features/contacts"
	"github.com/dalemusser/placementhub/internal/app/lifecycle/assignmentmgr"
	"github.com/dalemusser/placementhub/internal/app/store/audit"
	"github.com/dalemusser/placementhub/internal/app/system/auditlog"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/testutil"
	"github.com/dalemusser/placementhub/internal/testutil/memstore"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type env struct {
	router  chi.Router
	kit     *testutil.AuthKit
	db      *memstore.Relational
	admin   models.Identity
	caller  models.Identity
	student models.Identity
	h1, h2  string
	trail   *memstore.Audit
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := memstore.NewRelational()
	e := &env{
		kit:     testutil.NewAuthKit(t, db),
		db:      db,
		admin:   testutil.AdminIdentity(),
		caller:  testutil.CallerIdentity(),
		student: testutil.StudentIdentity(),
		h1:      uuid.NewString(),
		h2:      uuid.NewString(),
		trail:   &memstore.Audit{},
	}
	db.PutIdentity(e.caller)
	db.PutContact(models.HRContact{ID: e.h1, FullName: "Priya", Company: "Acme"})
	db.PutContact(models.HRContact{ID: e.h2, FullName: "Ravi", Company: "Globex"})

	mgr := assignmentmgr.New(db, db, db, zap.NewNop())
	al := auditlog.New(e.trail, zap.NewNop(), auditlog.Config{Admin: auditlog.LevelDB})
	e.router = chi.NewRouter()
	e.router.Use(auditlog.Middleware)
	e.router.Mount("/contacts", contacts.Routes(contacts.NewHandler(mgr, al, zap.NewNop()), e.kit.Gate))
	return e
}

func (e *env) do(t *testing.T, req *http.Request, who models.Identity) *testutil.ResponseRecorder {
	t.Helper()
	testutil.WithBearer(req, e.kit.Token(t, who))
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestBulkAssign_ThenFilter(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, testutil.NewJSONRequest(http.MethodPost, "/contacts/bulk-assign",
		map[string]any{"callerId": e.caller.ID, "contactIds": []string{e.h1, e.h2}}), e.admin)
	rec.AssertStatus(t, http.StatusOK)
	if got := rec.DecodeJSON()["count"]; got != float64(2) {
		t.Fatalf("count: got %v, want 2", got)
	}

	rec = e.do(t, testutil.NewJSONRequest(http.MethodPost, "/contacts/bulk-unassign",
		map[string]any{"contactIds": []string{e.h1}}), e.admin)
	rec.AssertStatus(t, http.StatusOK)

	rec = e.do(t, httptest.NewRequest(http.MethodGet, "/contacts?filter=unassigned", nil), e.caller)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, e.h1)

	rec = e.do(t, httptest.NewRequest(http.MethodGet, "/contacts?filter=assigned", nil), e.caller)
	rec.AssertContains(t, e.h2)
	rec.AssertContains(t, e.caller.ID)

	if got := strings.Join(e.trail.Types(), ","); got != audit.EventContactsAssigned+","+audit.EventContactsUnassigned {
		t.Fatalf("audit events = %s", got)
	}
	last := e.trail.Last()
	if last.ActorID != e.admin.ID || last.Details["unassigned"] != "1" || last.IP == "" {
		t.Errorf("unassign event = %+v", last)
	}
}

func TestBulkAssign_Errors(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name string
		who  models.Identity
		body map[string]any
		want int
		code string
	}{
		{"caller may not assign", e.caller, map[string]any{"callerId": e.caller.ID, "contactIds": []string{e.h1}}, http.StatusForbidden, "ACCESS_DENIED"},
		{"student target", e.admin, map[string]any{"callerId": e.student.ID, "contactIds": []string{e.h1}}, http.StatusBadRequest, "INVALID_CALLER"},
		{"empty list", e.admin, map[string]any{"callerId": e.caller.ID, "contactIds": []string{}}, http.StatusBadRequest, "MISSING_FIELD"},
		{"unknown contact", e.admin, map[string]any{"callerId": e.caller.ID, "contactIds": []string{e.h1, uuid.NewString()}}, http.StatusNotFound, "CONTACT_NOT_FOUND"},
	}
	// The student must exist for the INVALID_CALLER case to be about role.
	e.db.PutIdentity(e.student)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, testutil.NewJSONRequest(http.MethodPost, "/contacts/bulk-assign", tt.body), tt.who)
			rec.AssertStatus(t, tt.want)
			if got := rec.DecodeJSON()["error"]; got != tt.code {
				t.Errorf("error code: got %v, want %s", got, tt.code)
			}
		})
	}

	if c, _ := e.db.Contact(e.h1); c.Assigned() {
		t.Fatal("failed batches must not assign anything")
	}
	if n := len(e.trail.Types()); n != 0 {
		t.Fatalf("failed batches recorded %d audit events", n)
	}
}

func TestList_UnknownFilter(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, httptest.NewRequest(http.MethodGet, "/contacts?filter=mine", nil), e.admin)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "INVALID_FIELD")
}

func TestList_StudentDenied(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, httptest.NewRequest(http.MethodGet, "/contacts", nil), e.student)
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestCallerStats(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, httptest.NewRequest(http.MethodGet, "/contacts/caller-stats", nil), e.admin)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"total_contacts_assigned"`)
}
