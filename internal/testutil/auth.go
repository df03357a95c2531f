package testutil

import (
	"net/http"
	"testing"
	"time"

	userstore "github.com/dalemusser/placementhub/internal/app/store/users"
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/testutil/memstore"
	"go.uber.org/zap"
)

// TestSecret signs every credential issued in tests.
const TestSecret = "placementhub-test-secret-0123456789abcdef"

// AuthKit bundles a real Gate over an in-memory identity store.
type AuthKit struct {
	Gate   *auth.Gate
	Issuer *auth.Issuer
	DB     *memstore.Relational
}

// NewAuthKit builds a Gate whose resolver reads identities from db.
func NewAuthKit(t *testing.T, db *memstore.Relational) *AuthKit {
	t.Helper()
	v, err := auth.NewVerifier(TestSecret, "")
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	return &AuthKit{
		Gate:   auth.NewGate(v, userstore.NewFetcher(db, 0, 0), zap.NewNop()),
		Issuer: auth.NewIssuer(TestSecret, "", time.Hour),
		DB:     db,
	}
}

// Token stores who and returns a bearer credential for it.
func (k *AuthKit) Token(t *testing.T, who models.Identity) string {
	t.Helper()
	k.DB.PutIdentity(who)
	token, _, err := k.Issuer.Issue(who.ID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

// WithBearer sets the Authorization header.
func WithBearer(r *http.Request, token string) *http.Request {
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}
