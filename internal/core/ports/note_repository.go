package ports

import (
	"context"

	"github.com/jotter/notes/internal/core/domain"
)

// NoteRepository is the owner-scoped notes store. Every method takes the
// owner explicitly and must constrain its query by it; a row that exists but
// belongs to someone else is reported exactly like a missing row
// (domain.ErrNoteNotFound).
type NoteRepository interface {
	// ListByOwner returns the owner's notes, newest first.
	ListByOwner(ctx context.Context, owner string) ([]*domain.Note, error)
	Create(ctx context.Context, owner, content string) (*domain.Note, error)
	UpdateByOwner(ctx context.Context, owner, id, content string) (*domain.Note, error)
	DeleteByOwner(ctx context.Context, owner, id string) error
}
