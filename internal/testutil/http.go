package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func identity(name, email string, role models.Role) models.Identity {
	return models.Identity{
		ID:        uuid.NewString(),
		FullName:  name,
		Email:     email,
		Role:      role,
		Approved:  true,
		CreatedAt: time.Now().UTC(),
	}
}

// AdminIdentity returns an approved admin.
func AdminIdentity() models.Identity {
	return identity("Test Admin", "admin@test.com", models.RoleAdmin)
}

// CallerIdentity returns an approved caller.
func CallerIdentity() models.Identity {
	return identity("Test Caller", "caller@test.com", models.RoleCaller)
}

// StudentIdentity returns an approved student.
func StudentIdentity() models.Identity {
	return identity("Test Student", "student@test.com", models.RoleStudent)
}

// NewJSONRequest creates a request whose body is v encoded as JSON.
func NewJSONRequest(method, target string, v any) *http.Request {
	var buf bytes.Buffer
	if v != nil {
		_ = json.NewEncoder(&buf).Encode(v)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %s)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

// DecodeJSON decodes the recorded body into a generic map.
func (r *ResponseRecorder) DecodeJSON() map[string]any {
	out := map[string]any{}
	_ = json.Unmarshal(r.Body.Bytes(), &out)
	return out
}
