package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jotter/notes/internal/core/domain"
	"github.com/jotter/notes/internal/core/ports"
)

// AuthService implements registration and login.
type AuthService struct {
	store   *CredentialStore
	tokens  ports.TokenService
	limiter ports.LoginLimiter
	log     zerolog.Logger

	// dummy is verified against when the email is unknown, so that an
	// unknown account costs the same hashing work as a wrong password.
	dummyOnce sync.Once
	dummy     string
}

// NewAuthService wires the credential store and token service. limiter may be
// nil, which disables login throttling.
func NewAuthService(store *CredentialStore, tokens ports.TokenService, limiter ports.LoginLimiter, log zerolog.Logger) *AuthService {
	return &AuthService{store: store, tokens: tokens, limiter: limiter, log: log}
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	return s.store.Register(ctx, email, password)
}

// Login returns a bearer token for valid credentials. Unknown email and wrong
// password both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	if !s.allow(ctx, email) {
		return "", nil, domain.ErrTooManyAttempts
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	if user == nil {
		s.store.hasher.Verify(ctx, password, s.dummyHash(ctx))
		s.recordFailure(ctx, email)
		return "", nil, domain.ErrInvalidCredentials
	}
	if !s.store.VerifyPassword(ctx, user, password) {
		s.recordFailure(ctx, email)
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, err
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("failed to reset login failure counter")
		}
	}
	s.log.Info().Str("user_id", user.ID).Msg("user logged in")

	return token, user, nil
}

func (s *AuthService) dummyHash(ctx context.Context) string {
	s.dummyOnce.Do(func() {
		h, err := s.store.hasher.Hash(context.WithoutCancel(ctx), "not-a-real-password")
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to prepare dummy hash")
			return
		}
		s.dummy = h
	})
	return s.dummy
}

func (s *AuthService) allow(ctx context.Context, email string) bool {
	if s.limiter == nil {
		return true
	}
	ok, err := s.limiter.Allow(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("login limiter unavailable, allowing attempt")
		return true
	}
	return ok
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to record login failure")
	}
}
