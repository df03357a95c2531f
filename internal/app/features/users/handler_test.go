package users_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/placementhub/internal/app/features/users"
	"github.com/dalemusser/placementhub/internal/app/store/audit"
	userstore "github.com/dalemusser/placementhub/internal/app/store/users"
	"github.com/dalemusser/placementhub/internal/app/system/auditlog"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/testutil"
	"github.com/dalemusser/placementhub/internal/testutil/memstore"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// listingStore adds List on top of the in-memory relational store.
type listingStore struct {
	*memstore.Relational
	all []models.Identity
}

func (s listingStore) List(ctx context.Context, approved *bool) ([]models.Identity, error) {
	out := []models.Identity{}
	for _, u := range s.all {
		cur, err := s.GetByID(ctx, u.ID)
		if err != nil {
			continue
		}
		if approved == nil || cur.Approved == *approved {
			out = append(out, cur)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func TestRevoke_TakesEffectImmediately(t *testing.T) {
	db := memstore.NewRelational()
	kit := testutil.NewAuthKit(t, db)

	// A caching fetcher in front of the same store, as in production.
	cache := userstore.NewFetcher(db, 16, time.Minute)
	admin := testutil.AdminIdentity()
	student := testutil.StudentIdentity()
	store := listingStore{Relational: db, all: []models.Identity{admin, student}}
	trail := &memstore.Audit{}
	al := auditlog.New(trail, zap.NewNop(), auditlog.Config{Admin: auditlog.LevelDB})

	router := chi.NewRouter()
	router.Mount("/users", users.Routes(users.NewHandler(store, cache, al, zap.NewNop()), kit.Gate))

	adminToken := kit.Token(t, admin)
	kit.Token(t, student)

	do := func(method, path string) *testutil.ResponseRecorder {
		req := testutil.WithBearer(httptest.NewRequest(method, path, nil), adminToken)
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/users/"+student.ID+"/revoke")
	rec.AssertStatus(t, http.StatusOK)
	if got := rec.DecodeJSON()["changed"]; got != true {
		t.Fatalf("first revoke: changed = %v, want true", got)
	}

	rec = do(http.MethodPost, "/users/"+student.ID+"/revoke")
	rec.AssertStatus(t, http.StatusOK)
	if got := rec.DecodeJSON()["changed"]; got != false {
		t.Fatalf("second revoke: changed = %v, want false", got)
	}

	rec = do(http.MethodGet, "/users?approved=false")
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, student.ID)

	rec = do(http.MethodPost, "/users/"+student.ID+"/approve")
	rec.AssertStatus(t, http.StatusOK)

	got := strings.Join(trail.Types(), ",")
	want := strings.Join([]string{audit.EventUserApprovalRevoked, audit.EventUserApprovalRevoked, audit.EventUserApproved}, ",")
	if got != want {
		t.Fatalf("audit events = %s, want %s", got, want)
	}
	if last := trail.Last(); last.ActorID != admin.ID || last.UserID != student.ID {
		t.Errorf("approve event = %+v", last)
	}
}

func TestRevoke_UpperCaseIDInvalidatesCache(t *testing.T) {
	db := memstore.NewRelational()
	kit := testutil.NewAuthKit(t, db)
	cache := userstore.NewFetcher(db, 16, time.Minute)
	admin := testutil.AdminIdentity()
	student := testutil.StudentIdentity()
	store := listingStore{Relational: db, all: []models.Identity{admin, student}}

	router := chi.NewRouter()
	router.Mount("/users", users.Routes(users.NewHandler(store, cache, nil, zap.NewNop()), kit.Gate))
	adminToken := kit.Token(t, admin)
	kit.Token(t, student)

	if got, err := cache.Resolve(context.Background(), student.ID); err != nil || !got.Approved {
		t.Fatalf("warm cache: approved = %v, err = %v", got.Approved, err)
	}

	req := testutil.WithBearer(httptest.NewRequest(http.MethodPost, "/users/"+strings.ToUpper(student.ID)+"/revoke", nil), adminToken)
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	if got := rec.DecodeJSON()["user_id"]; got != student.ID {
		t.Errorf("user_id = %v, want canonical %s", got, student.ID)
	}

	got, err := cache.Resolve(context.Background(), student.ID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Approved {
		t.Fatal("cached identity still approved after revoke")
	}
}

func TestApprove_Errors(t *testing.T) {
	db := memstore.NewRelational()
	kit := testutil.NewAuthKit(t, db)
	admin := testutil.AdminIdentity()
	caller := testutil.CallerIdentity()
	store := listingStore{Relational: db}

	router := chi.NewRouter()
	router.Mount("/users", users.Routes(users.NewHandler(store, userstore.NewFetcher(db, 0, 0), nil, zap.NewNop()), kit.Gate))

	tests := []struct {
		name string
		who  models.Identity
		path string
		want int
	}{
		{"caller denied", caller, "/users/x/approve", http.StatusForbidden},
		{"unknown user", admin, "/users/5f0c6f1e-8a4b-4c43-9a55-4ad0f7c0b0ff/approve", http.StatusNotFound},
		{"self revoke", admin, "/users/" + admin.ID + "/revoke", http.StatusBadRequest},
		{"self revoke upper case", admin, "/users/" + strings.ToUpper(admin.ID) + "/revoke", http.StatusBadRequest},
		{"malformed id", admin, "/users/not-a-uuid/approve", http.StatusNotFound},
		{"bad filter", admin, "/users?approved=maybe", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodPost
			if tt.name == "bad filter" {
				method = http.MethodGet
			}
			req := testutil.WithBearer(httptest.NewRequest(method, tt.path, nil), kit.Token(t, tt.who))
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, req)
			rec.AssertStatus(t, tt.want)
		})
	}
}
