package ports

import (
	"context"
	"time"

	"github.com/jotter/notes/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// PasswordHasher produces and checks salted one-way digests.
// Verify never errors: a malformed stored hash is reported as a mismatch.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, hash string) bool
}

// TokenService issues and verifies bearer tokens.
// Verify fails with domain.ErrTokenInvalid or domain.ErrTokenExpired.
type TokenService interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

// LoginLimiter tracks failed login attempts per normalized email.
type LoginLimiter interface {
	Allow(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// TokenTTL is the fixed lifetime of every issued token.
const TokenTTL = time.Hour
