package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/jotter/notes/internal/api/middleware"
	"github.com/jotter/notes/internal/core/domain"
)

// ctxUserID returns the identity bound by the Auth middleware. Its absence
// means the route was mounted outside the gate; fail closed.
func ctxUserID(c echo.Context) (string, error) {
	userID, _ := c.Get(middleware.UserIDKey).(string)
	if userID == "" {
		return "", domain.ErrUnauthenticated
	}
	return userID, nil
}
