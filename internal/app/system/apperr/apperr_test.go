package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing credential", ErrMissingCredential, http.StatusUnauthorized},
		{"invalid credential", ErrInvalidCredential, http.StatusUnauthorized},
		{"expired credential", ErrExpiredCredential, http.StatusUnauthorized},
		{"access denied", ErrAccessDenied, http.StatusForbidden},
		{"unknown subject", ErrUnknownSubject, http.StatusNotFound},
		{"job not found", ErrJobNotFound, http.StatusNotFound},
		{"application not found", ErrApplicationNotFound, http.StatusNotFound},
		{"contact not found", ErrContactNotFound, http.StatusNotFound},
		{"call log not found", ErrCallLogNotFound, http.StatusNotFound},
		{"duplicate application", ErrDuplicateApplication, http.StatusBadRequest},
		{"invalid transition", ErrInvalidTransition, http.StatusConflict},
		{"duplicate email", ErrDuplicateEmail, http.StatusConflict},
		{"missing field", MissingField("jobId"), http.StatusBadRequest},
		{"invalid caller", ErrInvalidCaller, http.StatusBadRequest},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests},
		{"untyped", errors.New("connection refused"), http.StatusInternalServerError},
		{"wrapped typed", fmt.Errorf("apply: %w", ErrJobNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.want {
				t.Errorf("Status(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestIs_MatchesOnCode(t *testing.T) {
	err := ErrJobNotFound.WithMessage("no such posting").Wrap(errors.New("mongo: no documents"))
	if !errors.Is(err, ErrJobNotFound) {
		t.Error("expected customized error to match its sentinel")
	}
	if errors.Is(err, ErrApplicationNotFound) {
		t.Error("expected different code not to match")
	}
}

func TestInternal_Timeout(t *testing.T) {
	err := Internal(fmt.Errorf("find: %w", context.DeadlineExceeded))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected TIMEOUT, got %v", err)
	}
	if Status(err) != http.StatusInternalServerError {
		t.Errorf("timeout should map to 500, got %d", Status(err))
	}
}

func TestFrom_KeepsCause(t *testing.T) {
	cause := errors.New("pool closed")
	e := From(cause)
	if e.Code != CodeInternal {
		t.Errorf("code = %s, want %s", e.Code, CodeInternal)
	}
	if !errors.Is(e, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
}
