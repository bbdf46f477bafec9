package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jotter/notes/internal/core/domain"
	"github.com/jotter/notes/internal/core/ports"
)

// NoteService implements ports.NoteService on top of an owner-scoped repository.
type NoteService struct {
	repo   ports.NoteRepository
	logger zerolog.Logger
}

func NewNoteService(repo ports.NoteRepository, logger zerolog.Logger) *NoteService {
	return &NoteService{repo: repo, logger: logger}
}

// List returns the owner's notes, newest first.
func (s *NoteService) List(ctx context.Context, owner string) ([]*domain.Note, error) {
	if owner == "" {
		return nil, domain.ErrUnauthenticated
	}
	notes, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	if notes == nil {
		notes = []*domain.Note{}
	}
	return notes, nil
}

func (s *NoteService) Create(ctx context.Context, owner, content string) (*domain.Note, error) {
	if owner == "" {
		return nil, domain.ErrUnauthenticated
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", domain.ErrValidation)
	}

	note, err := s.repo.Create(ctx, owner, content)
	if err != nil {
		s.logger.Error().Err(err).Str("owner", owner).Msg("failed to create note")
		return nil, fmt.Errorf("create note: %w", err)
	}

	s.logger.Debug().Str("note_id", note.ID).Str("owner", owner).Msg("note created")
	return note, nil
}

// Update replaces the content of a note owned by owner. Missing and foreign
// notes both yield domain.ErrNoteNotFound.
func (s *NoteService) Update(ctx context.Context, owner, id, content string) (*domain.Note, error) {
	if owner == "" {
		return nil, domain.ErrUnauthenticated
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", domain.ErrValidation)
	}
	if id == "" {
		return nil, domain.ErrNoteNotFound
	}

	note, err := s.repo.UpdateByOwner(ctx, owner, id, content)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, fmt.Errorf("update note: %w", err)
	}
	return note, nil
}

// Delete removes a note owned by owner. Missing and foreign notes both yield
// domain.ErrNoteNotFound.
func (s *NoteService) Delete(ctx context.Context, owner, id string) error {
	if owner == "" {
		return domain.ErrUnauthenticated
	}
	if id == "" {
		return domain.ErrNoteNotFound
	}

	if err := s.repo.DeleteByOwner(ctx, owner, id); err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return domain.ErrNoteNotFound
		}
		return fmt.Errorf("delete note: %w", err)
	}

	s.logger.Debug().Str("note_id", id).Str("owner", owner).Msg("note deleted")
	return nil
}
