// Package client talks to the notes API on behalf of one signed-in user.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jotter/notes/internal/core/domain"
)

// ErrSessionExpired is returned when the server rejected the held token. The
// session has already been cleared when it is returned.
var ErrSessionExpired = errors.New("session expired, please log in again")

// APIError is any other non-2xx answer. Msg is the server's {"msg"} text.
type APIError struct {
	Status int
	Msg    string
}

func (e *APIError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("server answered %d", e.Status)
	}
	return e.Msg
}

// Client is an HTTP client for the notes API.
type Client struct {
	baseURL          string
	http             *http.Client
	session          *Session
	onReauthenticate func()
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithReauthenticate registers the hook fired once per rejected request,
// after the session has been cleared.
func WithReauthenticate(fn func()) Option {
	return func(c *Client) { c.onReauthenticate = fn }
}

func New(baseURL string, session *Session, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		session: session,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type noteRequest struct {
	Content string `json:"content"`
}

type messageResponse struct {
	Msg string `json:"msg"`
}

func (c *Client) Register(ctx context.Context, email, password string) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodPost, "/auth/register", credentials{email, password}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a token and stores it in the session.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.User, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", credentials{email, password}, &resp); err != nil {
		return nil, err
	}
	if err := c.session.Set(resp.Token); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout forgets the token locally. Tokens are not revocable server-side.
func (c *Client) Logout() error {
	return c.session.Clear()
}

func (c *Client) ListNotes(ctx context.Context) ([]domain.Note, error) {
	var notes []domain.Note
	if err := c.do(ctx, http.MethodGet, "/api/notes", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) CreateNote(ctx context.Context, content string) (*domain.Note, error) {
	var note domain.Note
	if err := c.do(ctx, http.MethodPost, "/api/notes", noteRequest{content}, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) UpdateNote(ctx context.Context, id, content string) (*domain.Note, error) {
	var note domain.Note
	if err := c.do(ctx, http.MethodPut, "/api/notes/"+url.PathEscape(id), noteRequest{content}, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	var msg messageResponse
	return c.do(ctx, http.MethodDelete, "/api/notes/"+url.PathEscape(id), nil, &msg)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.session.Attach(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if err := c.onResponse(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// onResponse inspects every answer. 401 and 403 clear the session and fire
// the re-authenticate hook; there is no retry.
func (c *Client) onResponse(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if err := c.session.Clear(); err != nil {
			return err
		}
		if c.onReauthenticate != nil {
			c.onReauthenticate()
		}
		return ErrSessionExpired
	case resp.StatusCode >= 300:
		var msg messageResponse
		_ = json.NewDecoder(resp.Body).Decode(&msg)
		return &APIError{Status: resp.StatusCode, Msg: msg.Msg}
	}
	return nil
}
