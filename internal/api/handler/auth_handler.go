package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jotter/notes/internal/api/httperr"
	"github.com/jotter/notes/internal/api/metrics"
	"github.com/jotter/notes/internal/core/domain"
	"github.com/jotter/notes/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Email and password"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  httperr.Response
// @Failure      500   {object}  httperr.Response
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, httperr.Response{Msg: "invalid payload"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, httperr.Response{Msg: httperr.MsgMissingFields})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, httperr.Response{Msg: err.Error()})
	}

	user, err := h.authService.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			metrics.AuthAttemptsTotal.WithLabelValues("register", "duplicate").Inc()
		case errors.Is(err, domain.ErrValidation):
			metrics.AuthAttemptsTotal.WithLabelValues("register", "invalid").Inc()
		default:
			metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
		}
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "ok").Inc()
	return c.JSON(http.StatusCreated, userResponse{ID: user.ID, Email: user.Email})
}

// Login authenticates a user and returns a bearer token valid for one hour.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  httperr.Response
// @Failure      429   {object}  httperr.Response
// @Failure      500   {object}  httperr.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, httperr.Response{Msg: "invalid payload"})
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid").Inc()
		case errors.Is(err, domain.ErrTooManyAttempts):
			metrics.AuthAttemptsTotal.WithLabelValues("login", "throttled").Inc()
		default:
			metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
		}
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "ok").Inc()
	return c.JSON(http.StatusOK, loginResponse{
		Token: token,
		User:  userResponse{ID: user.ID, Email: user.Email},
	})
}
