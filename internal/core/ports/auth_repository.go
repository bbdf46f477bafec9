package ports

import (
	"context"

	"github.com/jotter/notes/internal/core/domain"
)

// AuthRepository persists user identity records.
type AuthRepository interface {
	// Create inserts the user in a single constrained write. A uniqueness
	// violation on the (normalized) email must surface as
	// domain.ErrDuplicateEmail.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByEmail returns domain.ErrUserNotFound when no user matches.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}
