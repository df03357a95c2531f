package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLen is the shortest HMAC secret accepted at startup.
const MinSecretLen = 32

// Verifier checks signed bearer tokens. It performs no store access.
type Verifier struct {
	secret []byte
	issuer string
	parser *jwt.Parser
}

// NewVerifier returns a Verifier for HS256 tokens signed with secret. When
// issuer is non-empty the iss claim must match it.
func NewVerifier(secret, issuer string) (*Verifier, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("auth: token secret must be at least %d bytes", MinSecretLen)
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5 * time.Second),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &Verifier{
		secret: []byte(secret),
		issuer: issuer,
		parser: jwt.NewParser(opts...),
	}, nil
}

// Verify validates raw and returns its subject.
//
// Signature comparison is delegated to the jwt library's HMAC verifier,
// which compares in constant time.
func (v *Verifier) Verify(raw string) (string, error) {
	if raw == "" {
		return "", apperr.ErrMissingCredential
	}

	var claims jwt.RegisteredClaims
	_, err := v.parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperr.ErrExpiredCredential.Wrap(err)
		}
		return "", apperr.ErrInvalidCredential.Wrap(err)
	}
	if claims.Subject == "" {
		return "", apperr.ErrInvalidCredential.WithMessage("Token has no subject")
	}
	return claims.Subject, nil
}

// Issuer signs tokens that Verifier accepts.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer producing tokens valid for ttl.
func NewIssuer(secret, issuer string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs a token for subject.
func (i *Issuer) Issue(subject string) (string, time.Time, error) {
	now := i.now().UTC()
	exp := now.Add(i.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    i.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, exp, nil
}
