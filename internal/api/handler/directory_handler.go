package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yogastudio/booking/internal/api/middleware"
	"github.com/yogastudio/booking/internal/core/domain"
	"github.com/yogastudio/booking/internal/core/ports"
)

type TeacherHandler struct {
	service ports.TeacherService
}

func NewTeacherHandler(service ports.TeacherService) *TeacherHandler {
	return &TeacherHandler{service: service}
}

// List handles GET /api/teacher.
//
// @Summary      List teachers
// @Tags         teachers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  teacherResponse
// @Router       /api/teacher [get]
func (h *TeacherHandler) List(c echo.Context) error {
	teachers, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]teacherResponse, len(teachers))
	for i, t := range teachers {
		out[i] = toTeacherResponse(t)
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /api/teacher/:id.
//
// @Summary      Get a teacher
// @Tags         teachers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Teacher id"
// @Success      200  {object}  teacherResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/teacher/{id} [get]
func (h *TeacherHandler) Get(c echo.Context) error {
	id, err := middleware.PathID(c, "id")
	if err != nil {
		return err
	}
	t, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTeacherResponse(t))
}

type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Get handles GET /api/user/:id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/user/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	id, err := middleware.PathID(c, "id")
	if err != nil {
		return err
	}
	u, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

// Delete handles DELETE /api/user/:id. Members may only delete their own
// account; any other id is answered with 401.
//
// @Summary      Delete own account
// @Description  Removes the member from every session roster, then deletes the account.
// @Tags         users
// @Security     BearerAuth
// @Param        id   path      int  true  "User id"
// @Success      200
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/user/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := middleware.PathID(c, "id")
	if err != nil {
		return err
	}
	err = h.service.Delete(c.Request().Context(), p, id)
	if errors.Is(err, domain.ErrForbidden) {
		return echo.NewHTTPError(http.StatusUnauthorized, "cannot delete another user's account")
	}
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}
