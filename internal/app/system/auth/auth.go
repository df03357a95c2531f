// Package auth is the request gate in front of every lifecycle operation:
// bearer credential → subject (Verifier) → identity (Resolver) → role check
// (authz). The resolved identity is handed to the handler as an argument;
// nothing is stashed on the request.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.uber.org/zap"
)

// SubjectVerifier turns a raw bearer token into a subject id.
type SubjectVerifier interface {
	Verify(raw string) (string, error)
}

// Resolver maps a subject id to its identity, failing with UNKNOWN_SUBJECT
// when no row matches.
type Resolver interface {
	Resolve(ctx context.Context, subjectID string) (models.Identity, error)
}

// IdentityHandler is an HTTP handler that receives the caller's identity.
type IdentityHandler func(w http.ResponseWriter, r *http.Request, who models.Identity)

// Gate authenticates and authorizes requests.
type Gate struct {
	verifier SubjectVerifier
	resolver Resolver
	log      *zap.Logger
}

// NewGate wires a Gate.
func NewGate(v SubjectVerifier, res Resolver, logger *zap.Logger) *Gate {
	return &Gate{verifier: v, resolver: res, log: logger}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. No header, or a Bearer scheme with no token, is
// MISSING_CREDENTIAL; any other scheme or shape is INVALID_CREDENTIAL.
func BearerToken(r *http.Request) (string, error) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) == 0 {
		return "", apperr.ErrMissingCredential
	}
	if !strings.EqualFold(parts[0], "bearer") || len(parts) > 2 {
		return "", apperr.ErrInvalidCredential.WithMessage("Invalid authorization header")
	}
	if len(parts) == 1 {
		return "", apperr.ErrMissingCredential
	}
	return parts[1], nil
}

// Authenticate verifies the bearer credential and resolves the identity.
// Identities whose approval was revoked (or never granted) are denied.
func (g *Gate) Authenticate(r *http.Request) (models.Identity, error) {
	raw, err := BearerToken(r)
	if err != nil {
		return models.Identity{}, err
	}
	subject, err := g.verifier.Verify(raw)
	if err != nil {
		return models.Identity{}, err
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Request(), g.log, "resolve identity")
	defer cancel()

	who, err := g.resolver.Resolve(ctx, subject)
	if err != nil {
		return models.Identity{}, err
	}
	if !who.Approved {
		return models.Identity{}, apperr.ErrAccessDenied.WithMessage("Account is not approved")
	}
	return who, nil
}

// Require authenticates the request, checks the identity's role against
// required, and only then calls next.
func (g *Gate) Require(required authz.RoleSet, next IdentityHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, err := g.Authenticate(r)
		if err != nil {
			respond.Error(w, r, g.log, err)
			return
		}
		if err := authz.Authorize(who, required); err != nil {
			g.log.Debug("role gate denied request",
				zap.String("user_id", who.ID),
				zap.String("role", string(who.Role)),
				zap.String("path", r.URL.Path))
			respond.Error(w, r, g.log, err)
			return
		}
		next(w, r, who)
	}
}
