package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yogastudio/booking/internal/api/middleware"
	"github.com/yogastudio/booking/internal/core/domain"
)

// principal returns the caller identity set by the Auth middleware. Its
// absence means the route was mounted without Auth, so reject with 401.
func principal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}
