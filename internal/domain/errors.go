package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrSelfShare is returned when an owner tries to share a
	// presentation with themselves.
	ErrSelfShare = errors.New("cannot share presentation with yourself")

	// ErrPasswordRequired is returned when a password-protected link is
	// accessed without a password attempt. Distinct from
	// ErrPasswordIncorrect so clients can prompt instead of rejecting.
	ErrPasswordRequired = errors.New("password required")

	// ErrPasswordIncorrect is returned when the password attempt does not
	// match the link's stored hash.
	ErrPasswordIncorrect = errors.New("incorrect password")
)

// LinkStateReason identifies why a share link is not usable.
type LinkStateReason string

const (
	LinkRevoked           LinkStateReason = "revoked"
	LinkExpired           LinkStateReason = "expired"
	LinkViewLimitExceeded LinkStateReason = "view_limit_exceeded"
)

// LinkStateError is returned when a share link exists but is not in the
// Active state. Distinct from ErrNotFound so clients can render the right
// message for a link that was valid once.
type LinkStateError struct {
	Reason LinkStateReason
}

func (e *LinkStateError) Error() string {
	switch e.Reason {
	case LinkRevoked:
		return "this link has been deactivated"
	case LinkExpired:
		return "this link has expired"
	case LinkViewLimitExceeded:
		return "this link has reached its maximum view limit"
	default:
		return "this link is not usable"
	}
}

// StatusCode implements the HTTPError interface
func (e *LinkStateError) StatusCode() int { return http.StatusForbidden }

// TransientStorageError wraps storage failures that are safe to retry at
// the call site. Every engine operation is idempotent or re-checkable, so
// no internal retry loop exists.
type TransientStorageError struct {
	Op  string
	Err error
}

func (e *TransientStorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *TransientStorageError) Unwrap() error { return e.Err }

// StatusCode implements the HTTPError interface
func (e *TransientStorageError) StatusCode() int { return http.StatusServiceUnavailable }

// ConflictError represents a resource conflict with details about the
// existing resource.
type ConflictError struct {
	Message      string
	ResourceType string
	ResourceID   string
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
