// Package memory provides process-local repositories for development runs
// (DATABASE_URL=memory://) and tests. Data is lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jotter/notes/internal/core/domain"
)

// AuthRepository keeps users in a map keyed by normalized email. The map
// write under one lock is the atomic constrained insert.
type AuthRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func NewAuthRepository() *AuthRepository {
	return &AuthRepository{users: make(map[string]*domain.User)}
}

func (r *AuthRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	key := domain.NormalizeEmail(user.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[key]; exists {
		return nil, domain.ErrDuplicateEmail
	}
	stored := *user
	stored.ID = uuid.NewString()
	stored.Email = key
	r.users[key] = &stored

	out := stored
	return &out, nil
}

func (r *AuthRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

// Count returns the number of stored users.
func (r *AuthRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// NoteRepository keeps notes in a map keyed by id. seq records insertion
// order and breaks ties between equal timestamps.
type NoteRepository struct {
	mu    sync.RWMutex
	notes map[string]*domain.Note
	seq   map[string]uint64
	next  uint64
	now   func() time.Time
}

func NewNoteRepository() *NoteRepository {
	return &NoteRepository{
		notes: make(map[string]*domain.Note),
		seq:   make(map[string]uint64),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *NoteRepository) ListByOwner(_ context.Context, owner string) ([]*domain.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Note, 0)
	for _, n := range r.notes {
		if n.Owner != owner {
			continue
		}
		clone := *n
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return r.seq[out[i].ID] > r.seq[out[j].ID]
	})
	return out, nil
}

func (r *NoteRepository) Create(_ context.Context, owner, content string) (*domain.Note, error) {
	n := &domain.Note{
		ID:        uuid.NewString(),
		Owner:     owner,
		Content:   content,
		CreatedAt: r.now(),
	}

	r.mu.Lock()
	r.next++
	r.notes[n.ID] = n
	r.seq[n.ID] = r.next
	r.mu.Unlock()

	clone := *n
	return &clone, nil
}

func (r *NoteRepository) UpdateByOwner(_ context.Context, owner, id, content string) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notes[id]
	if !ok || n.Owner != owner {
		return nil, domain.ErrNoteNotFound
	}
	n.Content = content
	clone := *n
	return &clone, nil
}

func (r *NoteRepository) DeleteByOwner(_ context.Context, owner, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notes[id]
	if !ok || n.Owner != owner {
		return domain.ErrNoteNotFound
	}
	delete(r.notes, id)
	delete(r.seq, id)
	return nil
}
