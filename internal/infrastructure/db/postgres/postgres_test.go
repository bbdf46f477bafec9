package postgres

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/jotter/notes/internal/infrastructure/db/postgres/migrations"
)

func TestParseIDs(t *testing.T) {
	if _, _, ok := parseIDs("1", "42"); !ok {
		t.Fatalf("expected numeric ids to parse")
	}
	for _, tc := range [][2]string{{"1", "abc"}, {"x", "1"}, {"1", ""}, {"1", "1; DROP TABLE notes"}} {
		if _, _, ok := parseIDs(tc[0], tc[1]); ok {
			t.Fatalf("expected %v to be rejected", tc)
		}
	}
}

func TestMigrations_Embedded(t *testing.T) {
	files, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatalf("no migrations embedded")
	}

	body, err := fs.ReadFile(migrations.FS, files[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	sql := string(body)
	if !strings.Contains(sql, "-- +goose Up") || !strings.Contains(sql, "-- +goose Down") {
		t.Fatalf("migration %s lacks goose annotations", files[0])
	}
	if !strings.Contains(sql, "UNIQUE INDEX IF NOT EXISTS users_email_lower_idx ON users (lower(email))") {
		t.Fatalf("email uniqueness must be enforced by the schema")
	}
}
