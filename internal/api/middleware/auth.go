package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/jotter/notes/internal/api/metrics"
	"github.com/jotter/notes/internal/core/domain"
	"github.com/jotter/notes/internal/core/ports"
)

// UserIDKey is the echo context key holding the verified user id.
const UserIDKey = "user_id"

type ctxKey struct{}

// WithUserID returns a copy of ctx carrying the verified user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserIDFrom returns the user id bound by Auth, if any.
func UserIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// Auth is the authorization gate. A request without a bearer token is
// rejected with domain.ErrUnauthenticated (401); a token that fails
// verification with domain.ErrUnauthorized (403). On success the subject is
// bound to this request only, both on the echo context and on the request's
// context.Context.
func Auth(tokens ports.TokenService, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
				return domain.ErrUnauthenticated
			}

			userID, err := tokens.Verify(raw)
			if err != nil {
				reason := "invalid"
				if errors.Is(err, domain.ErrTokenExpired) {
					reason = "expired"
				}
				metrics.TokenVerificationsTotal.WithLabelValues(reason).Inc()
				log.Debug().
					Err(err).
					Str("reason", reason).
					Str("path", c.Path()).
					Msg("bearer token rejected")
				return domain.ErrUnauthorized
			}

			metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()
			c.Set(UserIDKey, userID)
			c.SetRequest(c.Request().WithContext(WithUserID(c.Request().Context(), userID)))

			return next(c)
		}
	}
}

// bearerToken extracts <token> from "Bearer <token>". The scheme is
// case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
