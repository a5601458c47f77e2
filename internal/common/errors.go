// Package common defines shared constants and sentinel errors used across
// client and server layers of the tracker. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("not authorized")
	ErrorConflict     = errors.New("already exists")
	ErrorValidation   = errors.New("validation failed")
	ErrorBadRequest   = errors.New("bad request")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")

	// ErrTooManyRequests is returned by the auth rate limiter.
	ErrTooManyRequests = errors.New("too many requests")
)

// DetailedError pairs one of the sentinels above with a message that is safe
// to show to the user. errors.Is matches the sentinel.
type DetailedError struct {
	Kind    error
	Message string
}

func (e *DetailedError) Error() string { return e.Message }

func (e *DetailedError) Unwrap() error { return e.Kind }

// NewError returns a DetailedError of the given kind.
func NewError(kind error, message string) error {
	return &DetailedError{Kind: kind, Message: message}
}
