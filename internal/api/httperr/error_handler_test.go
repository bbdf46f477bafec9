package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/jotter/notes/internal/core/domain"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{domain.ErrValidation, http.StatusBadRequest, MsgMissingFields},
		{fmt.Errorf("%w: content is required", domain.ErrValidation), http.StatusBadRequest, "content is required"},
		{domain.ErrDuplicateEmail, http.StatusBadRequest, MsgDuplicateEmail},
		{domain.ErrInvalidCredentials, http.StatusBadRequest, MsgInvalidCredentials},
		{domain.ErrUnauthenticated, http.StatusUnauthorized, MsgUnauthenticated},
		{domain.ErrUnauthorized, http.StatusForbidden, MsgUnauthorized},
		{domain.ErrTokenInvalid, http.StatusForbidden, MsgUnauthorized},
		{domain.ErrTokenExpired, http.StatusForbidden, MsgUnauthorized},
		{fmt.Errorf("wrapped: %w", domain.ErrNoteNotFound), http.StatusNotFound, MsgNoteNotFound},
		{domain.ErrTooManyAttempts, http.StatusTooManyRequests, MsgTooManyAttempts},
		{errors.New("connection refused"), http.StatusInternalServerError, MsgInternal},
	}

	for _, tc := range cases {
		code, msg, _ := Status(tc.err)
		if code != tc.code || msg != tc.msg {
			t.Errorf("Status(%v) = (%d, %q), want (%d, %q)", tc.err, code, msg, tc.code, tc.msg)
		}
	}
}

func TestStatus_ExpiredAndInvalidLookIdentical(t *testing.T) {
	c1, m1, _ := Status(domain.ErrTokenExpired)
	c2, m2, _ := Status(domain.ErrTokenInvalid)
	if c1 != c2 || m1 != m2 {
		t.Fatalf("expired and invalid tokens must be indistinguishable to clients")
	}
}

func TestHTTPErrorHandler_HidesInternalErrors(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	e.HTTPErrorHandler(errors.New("pq: password authentication failed for user admin"), c)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Msg != MsgInternal {
		t.Fatalf("internal error text leaked: %q", resp.Msg)
	}
}

func TestHTTPErrorHandler_EchoErrors(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	e.HTTPErrorHandler(echo.ErrNotFound, c)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
