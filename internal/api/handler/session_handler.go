package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yogastudio/booking/internal/api/middleware"
	"github.com/yogastudio/booking/internal/core/ports"
)

// SessionHandler serves /api/session.
type SessionHandler struct {
	service ports.SessionService
}

func NewSessionHandler(service ports.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

// List handles GET /api/session.
//
// @Summary      List sessions
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/session [get]
func (h *SessionHandler) List(c echo.Context) error {
	sessions, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponses(sessions))
}

// Get handles GET /api/session/:id.
//
// @Summary      Get a session
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Session id"
// @Success      200  {object}  sessionResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/session/{id} [get]
func (h *SessionHandler) Get(c echo.Context) error {
	id, err := middleware.PathID(c, "id")
	if err != nil {
		return err
	}
	s, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(s))
}

// Create handles POST /api/session.
//
// @Summary      Create a session
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      sessionRequest  true  "Session fields"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/session [post]
func (h *SessionHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req sessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	s, err := h.service.Create(c.Request().Context(), p, req.toFields())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toSessionResponse(s))
}

// Update handles PUT /api/session/:id.
//
// @Summary      Update a session
// @Description  Replaces name, description, date and teacher. The roster is never changed here.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int             true  "Session id"
// @Param        body  body      sessionRequest  true  "Session fields"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/session/{id} [put]
func (h *SessionHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := middleware.PathID(c, "id")
	if err != nil {
		return err
	}

	var req sessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	s, err := h.service.Update(c.Request().Context(), p, id, req.toFields())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(s))
}

// Delete handles DELETE /api/session/:id.
//
// @Summary      Delete a session
// @Tags         sessions
// @Security     BearerAuth
// @Param        id   path  int  true  "Session id"
// @Success      200
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/session/{id} [delete]
func (h *SessionHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := middleware.PathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), p, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}
