package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jotter/notes/internal/core/domain"
	"github.com/jotter/notes/internal/infrastructure/security"
)

type stubAuthRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubAuthRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrDuplicateEmail
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("u%d", r.nextID)
	r.users[stored.Email] = stored
	return cloneUser(stored), nil
}

func (r *stubAuthRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubAuthRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// countingHasher wraps a real bcrypt hasher and counts Verify calls.
type countingHasher struct {
	*security.BcryptHasher
	mu       sync.Mutex
	verifies int
}

func (h *countingHasher) Verify(ctx context.Context, plaintext, hash string) bool {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return h.BcryptHasher.Verify(ctx, plaintext, hash)
}

type stubLimiter struct {
	failures map[string]int
	max      int
	allowErr error
	resets   int
}

func newStubLimiter(max int) *stubLimiter {
	return &stubLimiter{failures: make(map[string]int), max: max}
}

func (l *stubLimiter) Allow(_ context.Context, email string) (bool, error) {
	if l.allowErr != nil {
		return false, l.allowErr
	}
	return l.failures[email] < l.max, nil
}

func (l *stubLimiter) RecordFailure(_ context.Context, email string) error {
	l.failures[email]++
	return nil
}

func (l *stubLimiter) Reset(_ context.Context, email string) error {
	delete(l.failures, email)
	l.resets++
	return nil
}

type fixture struct {
	repo   *stubAuthRepo
	hasher *countingHasher
	tokens *security.JWTService
	svc    *AuthService
}

func newFixture(limiter *stubLimiter) *fixture {
	repo := newStubAuthRepo()
	hasher := &countingHasher{BcryptHasher: security.NewBcryptHasher(bcrypt.MinCost, nil, nil)}
	tokens := security.NewJWTService("secret", time.Hour)
	store := NewCredentialStore(repo, hasher, zerolog.Nop())

	f := &fixture{repo: repo, hasher: hasher, tokens: tokens}
	if limiter != nil {
		f.svc = NewAuthService(store, tokens, limiter, zerolog.Nop())
	} else {
		f.svc = NewAuthService(store, tokens, nil, zerolog.Nop())
	}
	return f
}

func TestAuthService_Register_Success(t *testing.T) {
	f := newFixture(nil)

	user, err := f.svc.Register(context.Background(), "  Alice@Example.COM ", "pass123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user == nil || user.ID == "" {
		t.Fatalf("expected user with id, got %+v", user)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_DuplicateIsCaseInsensitive(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, "bob@example.com", "pw"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, err := f.svc.Register(ctx, "BOB@example.com", "other")
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if n := f.repo.count(); n != 1 {
		t.Fatalf("expected exactly one stored user, got %d", n)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "   ", "pw"},
		{"empty password", "a@example.com", ""},
		{"password too long", "a@example.com", strings.Repeat("x", 73)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(ctx, tt.email, tt.password)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
	if n := f.repo.count(); n != 0 {
		t.Fatalf("expected no stored users, got %d", n)
	}
}

func TestAuthService_Login_TokenVerifiesToUserID(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, "alice@example.com", "secret")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	token, user, err := f.svc.Login(ctx, "ALICE@example.com", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.ID != registered.ID || user.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	sub, err := f.tokens.Verify(token)
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if sub != registered.ID {
		t.Fatalf("expected sub %q, got %q", registered.ID, sub)
	}
}

func TestAuthService_Login_IdenticalFailureForUnknownAndWrongPassword(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, "alice@example.com", "secret"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	_, _, wrongPw := f.svc.Login(ctx, "alice@example.com", "wrong")
	_, _, unknown := f.svc.Login(ctx, "nobody@example.com", "secret")

	if !errors.Is(wrongPw, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongPw)
	}
	if !errors.Is(unknown, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", unknown)
	}
	if wrongPw.Error() != unknown.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPw, unknown)
	}
	if f.hasher.verifies != 2 {
		t.Fatalf("expected both paths to verify a hash, got %d verifies", f.hasher.verifies)
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	limiter := newStubLimiter(2)
	f := newFixture(limiter)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, "alice@example.com", "secret"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, _, err := f.svc.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}

	_, _, err := f.svc.Login(ctx, "alice@example.com", "secret")
	if !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAuthService_Login_SuccessResetsLimiter(t *testing.T) {
	limiter := newStubLimiter(3)
	f := newFixture(limiter)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, "alice@example.com", "secret"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	_, _, _ = f.svc.Login(ctx, "alice@example.com", "wrong")

	if _, _, err := f.svc.Login(ctx, "alice@example.com", "secret"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if limiter.resets != 1 || limiter.failures["alice@example.com"] != 0 {
		t.Fatalf("expected counter reset, got resets=%d failures=%d", limiter.resets, limiter.failures["alice@example.com"])
	}
}

func TestAuthService_Login_UnknownEmailCountsAsFailure(t *testing.T) {
	limiter := newStubLimiter(5)
	f := newFixture(limiter)

	_, _, _ = f.svc.Login(context.Background(), "Ghost@Example.com", "pw")

	if limiter.failures["ghost@example.com"] != 1 {
		t.Fatalf("expected one failure keyed by normalized email, got %v", limiter.failures)
	}
}

func TestAuthService_Login_LimiterErrorFailsOpen(t *testing.T) {
	limiter := newStubLimiter(1)
	limiter.allowErr = errors.New("redis: connection refused")
	f := newFixture(limiter)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, "alice@example.com", "secret"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if _, _, err := f.svc.Login(ctx, "alice@example.com", "secret"); err != nil {
		t.Fatalf("expected login to proceed when limiter is down, got %v", err)
	}
}
