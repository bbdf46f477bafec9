package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jotter/notes/internal/core/domain"
)

func TestAuthRepository_ConcurrentDuplicateInsert(t *testing.T) {
	repo := NewAuthRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	dups := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := "Same@Example.com"
			if i%2 == 0 {
				email = "same@example.com"
			}
			_, err := repo.Create(ctx, &domain.User{Email: email, PasswordHash: "h"})
			if errors.Is(err, domain.ErrDuplicateEmail) {
				mu.Lock()
				dups++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if repo.Count() != 1 {
		t.Fatalf("expected exactly one user, got %d", repo.Count())
	}
	if dups != 19 {
		t.Fatalf("expected 19 duplicate errors, got %d", dups)
	}
}

func TestNoteRepository_OwnerScoping(t *testing.T) {
	repo := NewNoteRepository()
	ctx := context.Background()

	n, _ := repo.Create(ctx, "alice", "hello")

	if _, err := repo.UpdateByOwner(ctx, "bob", n.ID, "pwned"); !errors.Is(err, domain.ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}
	if err := repo.DeleteByOwner(ctx, "bob", n.ID); !errors.Is(err, domain.ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}
	bobs, _ := repo.ListByOwner(ctx, "bob")
	if len(bobs) != 0 {
		t.Fatalf("bob must not see alice's notes")
	}

	updated, err := repo.UpdateByOwner(ctx, "alice", n.ID, "edited")
	if err != nil || updated.Content != "edited" {
		t.Fatalf("owner update failed: %v %+v", err, updated)
	}
	if err := repo.DeleteByOwner(ctx, "alice", n.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
}

func TestNoteRepository_NewestFirst(t *testing.T) {
	repo := NewNoteRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	ctx := context.Background()
	_, _ = repo.Create(ctx, "alice", "first")
	_, _ = repo.Create(ctx, "alice", "second")
	_, _ = repo.Create(ctx, "alice", "third")

	notes, _ := repo.ListByOwner(ctx, "alice")
	if len(notes) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(notes))
	}
	if notes[0].Content != "third" || notes[2].Content != "first" {
		t.Fatalf("unexpected order: %s, %s, %s", notes[0].Content, notes[1].Content, notes[2].Content)
	}
}

func TestNoteRepository_SameTimestampNewestFirst(t *testing.T) {
	repo := NewNoteRepository()
	frozen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return frozen }

	ctx := context.Background()
	for _, content := range []string{"first", "second", "third", "fourth"} {
		if _, err := repo.Create(ctx, "alice", content); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	for i := 0; i < 20; i++ {
		notes, _ := repo.ListByOwner(ctx, "alice")
		got := []string{notes[0].Content, notes[1].Content, notes[2].Content, notes[3].Content}
		want := []string{"fourth", "third", "second", "first"}
		for k := range want {
			if got[k] != want[k] {
				t.Fatalf("run %d: unexpected order %v", i, got)
			}
		}
	}
}
