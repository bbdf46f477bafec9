package security

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jotter/notes/internal/infrastructure/queue"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, nil, nil)
	ctx := context.Background()

	hash, err := h.Hash(ctx, "pw123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "pw123" || !strings.HasPrefix(hash, "$2") {
		t.Fatalf("unexpected hash: %q", hash)
	}
	if !h.Verify(ctx, "pw123", hash) {
		t.Fatalf("expected password to verify")
	}
	if h.Verify(ctx, "pw124", hash) {
		t.Fatalf("wrong password verified")
	}
}

func TestBcryptHasher_Salted(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, nil, nil)
	a, _ := h.Hash(context.Background(), "same")
	b, _ := h.Hash(context.Background(), "same")
	if a == b {
		t.Fatalf("expected distinct salts")
	}
}

func TestBcryptHasher_MalformedHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, nil, nil)
	for _, stored := range []string{"", "plain", "$2a$10$short"} {
		if h.Verify(context.Background(), "pw", stored) {
			t.Fatalf("malformed hash %q verified", stored)
		}
	}
}

func TestBcryptHasher_OnPool(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool := queue.NewPool(2, nil, zerolog.Nop())
	pool.Start(ctx)

	h := NewBcryptHasher(bcrypt.MinCost, pool, nil)
	hash, err := h.Hash(ctx, "pw123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if !h.Verify(ctx, "pw123", hash) {
		t.Fatalf("expected password to verify")
	}

	cancelled, stop := context.WithCancel(context.Background())
	stop()
	if h.Verify(cancelled, "pw123", hash) {
		t.Fatalf("cancelled verify must report a mismatch")
	}
}
