package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jotter/notes/internal/core/domain"
)

type NoteRepository struct {
	pool *pgxpool.Pool
}

func NewNoteRepository(pool *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{pool: pool}
}

const noteColumns = `id::text, user_id::text, content, created_at`

func scanNote(row pgx.Row) (*domain.Note, error) {
	n := &domain.Note{}
	if err := row.Scan(&n.ID, &n.Owner, &n.Content, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.CreatedAt = n.CreatedAt.UTC()
	return n, nil
}

// parseIDs converts path and identity ids to the BIGINT keys. Ids that cannot
// be keys cannot match a row.
func parseIDs(owner, id string) (int64, int64, bool) {
	ownerID, err := strconv.ParseInt(owner, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	noteID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return ownerID, noteID, true
}

func (r *NoteRepository) ListByOwner(ctx context.Context, owner string) ([]*domain.Note, error) {
	ownerID, err := strconv.ParseInt(owner, 10, 64)
	if err != nil {
		return []*domain.Note{}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	notes := make([]*domain.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *NoteRepository) Create(ctx context.Context, owner, content string) (*domain.Note, error) {
	ownerID, err := strconv.ParseInt(owner, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("owner id %q: %w", owner, err)
	}

	n, err := scanNote(r.pool.QueryRow(ctx,
		`INSERT INTO notes (user_id, content) VALUES ($1, $2) RETURNING `+noteColumns, ownerID, content))
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return n, nil
}

func (r *NoteRepository) UpdateByOwner(ctx context.Context, owner, id, content string) (*domain.Note, error) {
	ownerID, noteID, ok := parseIDs(owner, id)
	if !ok {
		return nil, domain.ErrNoteNotFound
	}

	n, err := scanNote(r.pool.QueryRow(ctx,
		`UPDATE notes SET content = $1 WHERE id = $2 AND user_id = $3 RETURNING `+noteColumns,
		content, noteID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, fmt.Errorf("update note: %w", err)
	}
	return n, nil
}

func (r *NoteRepository) DeleteByOwner(ctx context.Context, owner, id string) error {
	ownerID, noteID, ok := parseIDs(owner, id)
	if !ok {
		return domain.ErrNoteNotFound
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, noteID, ownerID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}
