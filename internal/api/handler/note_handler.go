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

// NoteHandler serves /api/notes. Every method reads the owner from the
// identity bound by the auth gate; request bodies never carry an owner.
type NoteHandler struct {
	service ports.NoteService
}

func NewNoteHandler(service ports.NoteService) *NoteHandler {
	return &NoteHandler{service: service}
}

func observe(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNoteNotFound):
		result = "not_found"
	default:
		result = "error"
	}
	metrics.NotesOperationsTotal.WithLabelValues(op, result).Inc()
}

// List handles GET /api/notes.
//
// @Summary      List the caller's notes, newest first
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Note
// @Failure      401  {object}  httperr.Response
// @Failure      403  {object}  httperr.Response
// @Router       /api/notes [get]
func (h *NoteHandler) List(c echo.Context) error {
	owner, err := ctxUserID(c)
	if err != nil {
		return err
	}

	notes, err := h.service.List(c.Request().Context(), owner)
	observe("list", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notes)
}

// Create handles POST /api/notes.
//
// @Summary      Create a note owned by the caller
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      noteRequest  true  "Note content"
// @Success      200   {object}  domain.Note
// @Failure      400   {object}  httperr.Response
// @Failure      401   {object}  httperr.Response
// @Failure      403   {object}  httperr.Response
// @Router       /api/notes [post]
func (h *NoteHandler) Create(c echo.Context) error {
	owner, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, httperr.Response{Msg: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, httperr.Response{Msg: err.Error()})
	}

	note, err := h.service.Create(c.Request().Context(), owner, req.Content)
	observe("create", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, note)
}

// Update handles PUT /api/notes/:id.
//
// @Summary      Replace the content of one of the caller's notes
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Note id"
// @Param        body  body      noteRequest  true  "New content"
// @Success      200   {object}  domain.Note
// @Failure      400   {object}  httperr.Response
// @Failure      404   {object}  httperr.Response
// @Router       /api/notes/{id} [put]
func (h *NoteHandler) Update(c echo.Context) error {
	owner, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, httperr.Response{Msg: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, httperr.Response{Msg: err.Error()})
	}

	note, err := h.service.Update(c.Request().Context(), owner, c.Param("id"), req.Content)
	observe("update", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, note)
}

// Delete handles DELETE /api/notes/:id.
//
// @Summary      Delete one of the caller's notes
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Note id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  httperr.Response
// @Router       /api/notes/{id} [delete]
func (h *NoteHandler) Delete(c echo.Context) error {
	owner, err := ctxUserID(c)
	if err != nil {
		return err
	}

	err = h.service.Delete(c.Request().Context(), owner, c.Param("id"))
	observe("delete", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Msg: "Note deleted"})
}
