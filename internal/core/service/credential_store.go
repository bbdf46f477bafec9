package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jotter/notes/internal/core/domain"
	"github.com/jotter/notes/internal/core/ports"
)

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

// CredentialStore owns user identity records: it hashes secrets on the way in
// and relies on the repository's unique index for email uniqueness.
type CredentialStore struct {
	repo   ports.AuthRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
}

func NewCredentialStore(repo ports.AuthRepository, hasher ports.PasswordHasher, log zerolog.Logger) *CredentialStore {
	return &CredentialStore{repo: repo, hasher: hasher, log: log}
}

// Register hashes password and inserts the user under its normalized email.
// The plaintext is never logged, including on failure.
func (s *CredentialStore) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}
	if len(password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, maxPasswordBytes)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return created, nil
}

// FindByEmail returns (nil, nil) when no user is registered under email.
func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// VerifyPassword checks password against user's stored hash.
func (s *CredentialStore) VerifyPassword(ctx context.Context, user *domain.User, password string) bool {
	return s.hasher.Verify(ctx, password, user.PasswordHash)
}
