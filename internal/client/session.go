package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sync"
)

// Session holds the bearer token of the signed-in user. When path is set the
// token is persisted there so that it survives between CLI invocations.
type Session struct {
	path string

	mu    sync.Mutex
	token string
}

type sessionFile struct {
	Token string `json:"token"`
}

// NewSession returns an empty session persisted at path. An empty path keeps
// the token in memory only.
func NewSession(path string) *Session {
	return &Session{path: path}
}

// LoadSession reads the session stored at path. A missing file is an empty
// session, not an error.
func LoadSession(path string) (*Session, error) {
	s := NewSession(path)
	if path == "" {
		return s, nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var f sessionFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", path, err)
	}
	s.token = f.Token
	return s, nil
}

// Token returns the held token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Set stores token and persists it.
func (s *Session) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return s.save()
}

// Clear drops the held token and removes the session file.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Attach adds the Authorization header when a token is held.
func (s *Session) Attach(req *http.Request) {
	if token := s.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (s *Session) save() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	raw, err := json.Marshal(sessionFile{Token: s.token})
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// DefaultSessionPath is ~/.config/notes/session.json, or the platform
// equivalent.
func DefaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".notes-session.json"
	}
	return filepath.Join(dir, "notes", "session.json")
}
