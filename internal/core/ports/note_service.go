package ports

import (
	"context"

	"github.com/jotter/notes/internal/core/domain"
)

// NoteService exposes note use-cases. The owner argument is always the
// identity bound by the auth gate, never client input.
type NoteService interface {
	List(ctx context.Context, owner string) ([]*domain.Note, error)
	Create(ctx context.Context, owner, content string) (*domain.Note, error)
	Update(ctx context.Context, owner, id, content string) (*domain.Note, error)
	Delete(ctx context.Context, owner, id string) error
}
