package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/yogastudio/booking/internal/core/policy"
	"github.com/yogastudio/booking/internal/pkg/metrics"
)

// TargetFunc extracts the authorization target of a request from its path.
type TargetFunc func(c echo.Context) (policy.Target, error)

// Guard rejects the request before the handler runs when the principal may
// not perform action. The services evaluate the same policy again. Denials
// count toward booking_guard_denials_total like those raised by the services.
func Guard(action policy.Action, target TargetFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
			}

			t := policy.Target{}
			if target != nil {
				var err error
				if t, err = target(c); err != nil {
					return err
				}
			}

			if err := policy.Authorize(p, action, t); err != nil {
				metrics.GuardDenialsTotal.WithLabelValues(string(action)).Inc()
				return err
			}
			return next(c)
		}
	}
}

// SessionTarget reads the :id path parameter.
func SessionTarget(c echo.Context) (policy.Target, error) {
	id, err := PathID(c, "id")
	if err != nil {
		return policy.Target{}, err
	}
	return policy.Target{SessionID: id}, nil
}

// ParticipantTarget reads the :id and :userId path parameters.
func ParticipantTarget(c echo.Context) (policy.Target, error) {
	sessionID, err := PathID(c, "id")
	if err != nil {
		return policy.Target{}, err
	}
	userID, err := PathID(c, "userId")
	if err != nil {
		return policy.Target{}, err
	}
	return policy.Target{SessionID: sessionID, UserID: userID}, nil
}

// PathID parses a positive decimal id from the named path parameter.
func PathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
