package domain

import "errors"

// Request-boundary error kinds. Each maps to one fixed HTTP status.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("missing bearer token")
	ErrUnauthorized       = errors.New("token rejected")
	ErrNoteNotFound       = errors.New("note not found or not owned by caller")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
)

// Token verification failures. Both collapse into ErrUnauthorized at the
// boundary but stay distinct for logs and metrics.
var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// ErrUserNotFound is internal to the credential store; login never surfaces it.
var ErrUserNotFound = errors.New("user not found")
