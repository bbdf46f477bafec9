// Package httperr maps domain errors onto HTTP responses.
package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/jotter/notes/internal/core/domain"
)

// Response is the canonical error envelope for all API errors.
type Response struct {
	Msg string `json:"msg"`
}

// Client-facing messages. InvalidCredentials is deliberately vague.
const (
	MsgMissingFields      = "Please enter all fields"
	MsgDuplicateEmail     = "User with this email already exists."
	MsgInvalidCredentials = "Invalid credentials."
	MsgUnauthenticated    = "Missing authorization token."
	MsgUnauthorized       = "Token is invalid or expired."
	MsgNoteNotFound       = "Note not found or user not authorized."
	MsgTooManyAttempts    = "Too many failed login attempts, try again later."
	MsgInternal           = "Server Error"
)

// Status is the pure mapping from an error kind to its status code and
// client message. ok is false for errors with no known kind.
func Status(err error) (code int, msg string, ok bool) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, validationMessage(err), true
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusBadRequest, MsgDuplicateEmail, true
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, MsgInvalidCredentials, true
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, MsgUnauthenticated, true
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenExpired):
		return http.StatusForbidden, MsgUnauthorized, true
	case errors.Is(err, domain.ErrNoteNotFound):
		return http.StatusNotFound, MsgNoteNotFound, true
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, MsgTooManyAttempts, true
	}
	return http.StatusInternalServerError, MsgInternal, false
}

// validationMessage strips the sentinel prefix from a wrapped validation error,
// leaving only the field detail.
func validationMessage(err error) string {
	prefix := domain.ErrValidation.Error() + ": "
	if msg, found := strings.CutPrefix(err.Error(), prefix); found && msg != "" {
		return msg
	}
	return MsgMissingFields
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their fixed HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"msg": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, Response{Msg: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("server error")
			return he.Code, MsgInternal
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	code, msg, ok := Status(err)
	if ok {
		return code, msg
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return code, msg
}
