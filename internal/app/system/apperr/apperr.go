// Package apperr defines the typed failures returned by the auth gate and
// the lifecycle managers, and the single place they map to HTTP statuses.
//
// Managers return *Error values built from the sentinels below (usually via
// WithMessage or Wrap). The HTTP boundary calls Status and Code; it never
// inspects driver error text.
package apperr

import (
	"context"
	"errors"
	"net/http"
)

// Kind groups codes into the failure families a client can act on.
type Kind int

const (
	KindInternal Kind = iota
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindValidation
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Code is the stable machine-readable identifier sent to clients.
type Code string

const (
	CodeMissingCredential    Code = "MISSING_CREDENTIAL"
	CodeInvalidCredential    Code = "INVALID_CREDENTIAL"
	CodeExpiredCredential    Code = "EXPIRED_CREDENTIAL"
	CodeAccessDenied         Code = "ACCESS_DENIED"
	CodeUnknownSubject       Code = "UNKNOWN_SUBJECT"
	CodeJobNotFound          Code = "JOB_NOT_FOUND"
	CodeApplicationNotFound  Code = "APPLICATION_NOT_FOUND"
	CodeContactNotFound      Code = "CONTACT_NOT_FOUND"
	CodeCallLogNotFound      Code = "CALL_LOG_NOT_FOUND"
	CodeDuplicateApplication Code = "DUPLICATE_APPLICATION"
	CodeInvalidTransition    Code = "INVALID_TRANSITION"
	CodeDuplicateEmail       Code = "DUPLICATE_EMAIL"
	CodeMissingField         Code = "MISSING_FIELD"
	CodeInvalidField         Code = "INVALID_FIELD"
	CodeInvalidCaller        Code = "INVALID_CALLER"
	CodeInternal             Code = "INTERNAL"
	CodeTimeout              Code = "TIMEOUT"
	CodeRateLimited          Code = "RATE_LIMITED"
)

// Error is a typed failure. Two Errors match under errors.Is when their
// codes are equal, so callers compare against the sentinels.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy of e carrying a client-facing message.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

// Wrap returns a copy of e with cause attached for logs. The cause is never
// sent to clients.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

func newErr(k Kind, c Code, msg string) *Error {
	return &Error{Kind: k, Code: c, Message: msg}
}

var (
	ErrMissingCredential = newErr(KindAuthentication, CodeMissingCredential, "Not authorized. Token not found")
	ErrInvalidCredential = newErr(KindAuthentication, CodeInvalidCredential, "Invalid token")
	ErrExpiredCredential = newErr(KindAuthentication, CodeExpiredCredential, "Token expired")

	ErrAccessDenied = newErr(KindAuthorization, CodeAccessDenied, "Access denied")

	ErrUnknownSubject      = newErr(KindNotFound, CodeUnknownSubject, "User not found")
	ErrJobNotFound         = newErr(KindNotFound, CodeJobNotFound, "Job not found")
	ErrApplicationNotFound = newErr(KindNotFound, CodeApplicationNotFound, "Application not found or already withdrawn")
	ErrContactNotFound     = newErr(KindNotFound, CodeContactNotFound, "HR contact not found")
	ErrCallLogNotFound     = newErr(KindNotFound, CodeCallLogNotFound, "Call log not found")

	ErrDuplicateApplication = newErr(KindConflict, CodeDuplicateApplication, "Already applied")
	ErrInvalidTransition    = newErr(KindConflict, CodeInvalidTransition, "Status change not allowed")
	ErrDuplicateEmail       = newErr(KindConflict, CodeDuplicateEmail, "A user with this email already exists")

	ErrMissingField  = newErr(KindValidation, CodeMissingField, "Required field missing")
	ErrInvalidField  = newErr(KindValidation, CodeInvalidField, "Invalid field value")
	ErrInvalidCaller = newErr(KindValidation, CodeInvalidCaller, "Target user cannot be assigned contacts")

	ErrInternal = newErr(KindInternal, CodeInternal, "Internal server error")
	ErrTimeout  = newErr(KindInternal, CodeTimeout, "Request timed out, please retry")

	ErrRateLimited = newErr(KindRateLimited, CodeRateLimited, "Too many attempts, please wait and retry")
)

// MissingField reports a missing request field by name.
func MissingField(name string) *Error {
	return ErrMissingField.WithMessage(name + " is required")
}

// InvalidField reports a malformed request field by name.
func InvalidField(name string) *Error {
	return ErrInvalidField.WithMessage(name + " is invalid")
}

// Internal classifies an untyped failure from a store. Deadline hits become
// the retryable TIMEOUT code.
func Internal(cause error) *Error {
	if errors.Is(cause, context.DeadlineExceeded) {
		return ErrTimeout.Wrap(cause)
	}
	return ErrInternal.Wrap(cause)
}

// From returns err as a typed failure, classifying anything untyped as
// internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// Status maps a failure to exactly one HTTP status.
func Status(err error) int {
	e := From(err)
	if e == nil {
		return http.StatusOK
	}
	switch e.Kind {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		// The application API historically answers duplicates with 400.
		if e.Code == CodeDuplicateApplication {
			return http.StatusBadRequest
		}
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
