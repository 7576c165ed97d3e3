package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yogastudio/booking/internal/api/middleware"
	"github.com/yogastudio/booking/internal/core/ports"
)

// ParticipationHandler serves /api/session/:id/participate/:userId.
type ParticipationHandler struct {
	service ports.ParticipationService
}

func NewParticipationHandler(service ports.ParticipationService) *ParticipationHandler {
	return &ParticipationHandler{service: service}
}

// Participate handles POST /api/session/:id/participate/:userId.
//
// @Summary      Join a session
// @Tags         participation
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      int  true  "Session id"
// @Param        userId  path      int  true  "User id, must be the caller"
// @Success      200     {object}  sessionResponse
// @Failure      400     {object}  map[string]string
// @Failure      403     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Failure      409     {object}  map[string]string
// @Router       /api/session/{id}/participate/{userId} [post]
func (h *ParticipationHandler) Participate(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	t, err := middleware.ParticipantTarget(c)
	if err != nil {
		return err
	}

	s, err := h.service.Participate(c.Request().Context(), p, t.SessionID, t.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(s))
}

// UnParticipate handles DELETE /api/session/:id/participate/:userId.
//
// @Summary      Leave a session
// @Tags         participation
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      int  true  "Session id"
// @Param        userId  path      int  true  "User id, must be the caller"
// @Success      200     {object}  sessionResponse
// @Failure      400     {object}  map[string]string
// @Failure      403     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Failure      409     {object}  map[string]string
// @Router       /api/session/{id}/participate/{userId} [delete]
func (h *ParticipationHandler) UnParticipate(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	t, err := middleware.ParticipantTarget(c)
	if err != nil {
		return err
	}

	s, err := h.service.UnParticipate(c.Request().Context(), p, t.SessionID, t.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(s))
}
