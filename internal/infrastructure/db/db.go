// Package db selects and opens the storage backend named by DATABASE_URL.
package db

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/jotter/notes/internal/core/ports"
	"github.com/jotter/notes/internal/infrastructure/db/memory"
	mongodb "github.com/jotter/notes/internal/infrastructure/db/mongo"
	"github.com/jotter/notes/internal/infrastructure/db/postgres"
)

const (
	BackendMemory   = "memory"
	BackendMongo    = "mongodb"
	BackendPostgres = "postgres"
)

// Store is an opened backend: its repositories plus lifecycle hooks.
type Store struct {
	Backend string
	Users   ports.AuthRepository
	Notes   ports.NoteRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping checks the backend is reachable.
func (s *Store) Ping(ctx context.Context) error { return s.ping(ctx) }

// Close releases the backend's connections.
func (s *Store) Close(ctx context.Context) error { return s.close(ctx) }

// BackendFor maps a connection string scheme to a backend name.
func BackendFor(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	switch u.Scheme {
	case "memory":
		return BackendMemory, nil
	case "mongodb", "mongodb+srv":
		return BackendMongo, nil
	case "postgres", "postgresql":
		return BackendPostgres, nil
	default:
		return "", fmt.Errorf("unsupported DATABASE_URL scheme %q", u.Scheme)
	}
}

// Open connects to the backend, prepares its schema or indexes, and returns
// the repositories. Any failure here is fatal for the process.
func Open(ctx context.Context, rawURL, database string, log zerolog.Logger) (*Store, error) {
	backend, err := BackendFor(rawURL)
	if err != nil {
		return nil, err
	}

	switch backend {
	case BackendMongo:
		client, mdb, err := mongodb.Connect(ctx, mongodb.Config{URI: rawURL, Database: database})
		if err != nil {
			return nil, err
		}
		repos, err := mongodb.NewRepositories(ctx, mdb)
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("backend", backend).Str("database", database).Msg("storage ready")
		return &Store{
			Backend: backend,
			Users:   repos.Users,
			Notes:   repos.Notes,
			ping:    func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
			close:   client.Disconnect,
		}, nil

	case BackendPostgres:
		pool, err := postgres.Connect(ctx, postgres.Config{URL: rawURL})
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Str("backend", backend).Msg("storage ready")
		return &Store{
			Backend: backend,
			Users:   postgres.NewAuthRepository(pool),
			Notes:   postgres.NewNoteRepository(pool),
			ping:    pool.Ping,
			close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	default:
		log.Warn().Str("backend", backend).Msg("using in-memory storage, data will not survive a restart")
		return NewMemoryStore(), nil
	}
}

// NewMemoryStore returns a Store backed by process-local maps.
func NewMemoryStore() *Store {
	return &Store{
		Backend: BackendMemory,
		Users:   memory.NewAuthRepository(),
		Notes:   memory.NewNoteRepository(),
		ping:    func(context.Context) error { return nil },
		close:   func(context.Context) error { return nil },
	}
}
