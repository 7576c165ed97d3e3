package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yogastudio/booking/internal/api/handler"
	"github.com/yogastudio/booking/internal/api/middleware"
	"github.com/yogastudio/booking/internal/core/policy"
	"github.com/yogastudio/booking/internal/core/ports"
)

// Dependencies are the services and backends the router exposes. Mongo and
// Redis are only used by the readiness probe and may be nil.
type Dependencies struct {
	Sessions      ports.SessionService
	Participation ports.ParticipationService
	Teachers      ports.TeacherService
	Users         ports.UserService

	JWTSecret string
	Logger    zerolog.Logger

	Mongo *mongo.Database
	Redis *redis.Client

	// Registry receives the HTTP metrics. Nil means the default registry,
	// which also holds the service metrics.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "booking",
		Registerer: registerer,
	}))

	// --- Probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- API ---
	sessions := handler.NewSessionHandler(deps.Sessions)
	participation := handler.NewParticipationHandler(deps.Participation)
	teachers := handler.NewTeacherHandler(deps.Teachers)
	users := handler.NewUserHandler(deps.Users)

	g := e.Group("/api", middleware.Auth(deps.JWTSecret))

	g.GET("/session", sessions.List)
	g.GET("/session/:id", sessions.Get)
	g.POST("/session", sessions.Create, middleware.Guard(policy.ActionSessionCreate, nil))
	g.PUT("/session/:id", sessions.Update, middleware.Guard(policy.ActionSessionUpdate, middleware.SessionTarget))
	g.DELETE("/session/:id", sessions.Delete, middleware.Guard(policy.ActionSessionDelete, middleware.SessionTarget))

	g.POST("/session/:id/participate/:userId", participation.Participate,
		middleware.Guard(policy.ActionSessionParticipate, middleware.ParticipantTarget))
	g.DELETE("/session/:id/participate/:userId", participation.UnParticipate,
		middleware.Guard(policy.ActionSessionUnParticipate, middleware.ParticipantTarget))

	g.GET("/teacher", teachers.List)
	g.GET("/teacher/:id", teachers.Get)
	g.GET("/user/:id", users.Get)
	// No route guard: a missing id answers 404 before the self-only check.
	g.DELETE("/user/:id", users.Delete)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			switch {
			case v.Status >= 500:
				ev = log.Error().Err(v.Error)
			case v.Error != nil:
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
