package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/elikia/membership-auth/docs"
	"github.com/elikia/membership-auth/internal/api/handler"
	"github.com/elikia/membership-auth/internal/api/middleware"
	"github.com/elikia/membership-auth/internal/core/domain"
	"github.com/elikia/membership-auth/internal/core/ports"
)

const msgRateLimited = "Too many login attempts. Please try again later."

// RouterDeps carries everything the HTTP layer needs.
type RouterDeps struct {
	Login    ports.LoginService
	Accounts ports.AccountService
	Roles    ports.RoleService
	Tokens   ports.TokenVerifier
	Health   map[string]handler.HealthCheck
	Log      zerolog.Logger

	// LoginRateLimit is the sustained request rate per client IP on /login.
	LoginRateLimit float64

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// route is one entry of the policy table.
type route struct {
	method  string
	path    string
	policy  middleware.Policy
	handler echo.HandlerFunc
	extra   []echo.MiddlewareFunc
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: deps.Registerer,
	}))

	authHandler := handler.NewAuthHandler(deps.Login, deps.Accounts)
	accountHandler := handler.NewAccountHandler(deps.Accounts)
	roleHandler := handler.NewRoleHandler(deps.Roles)
	healthHandler := handler.NewHealthHandler(deps.Health)

	loginLimiter := echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStore(rate.Limit(deps.LoginRateLimit)),
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return c.JSON(http.StatusTooManyRequests, handler.NewEnvelope(http.StatusTooManyRequests, msgRateLimited))
		},
	})

	routes := []route{
		{http.MethodPost, "/login", middleware.Public, authHandler.Login, []echo.MiddlewareFunc{loginLimiter}},
		{http.MethodPost, "/register", middleware.Public, authHandler.Register, nil},
		{http.MethodGet, "/me", middleware.Authenticated(""), authHandler.Me, nil},
		{http.MethodPost, "/admin/admins", middleware.Authenticated(domain.RoleAdmin), accountHandler.CreateAdmin, nil},
		{http.MethodPatch, "/admin/members/:id", middleware.Authenticated(domain.RoleAdmin), accountHandler.UpdateMember, nil},
		{http.MethodPost, "/admin/roles", middleware.Authenticated(domain.RoleAdmin), roleHandler.Create, nil},
		{http.MethodGet, "/admin/roles", middleware.Authenticated(domain.RoleAdmin), roleHandler.List, nil},
		{http.MethodGet, "/admin/roles/:id", middleware.Authenticated(domain.RoleAdmin), roleHandler.Get, nil},
		{http.MethodDelete, "/admin/roles/:id", middleware.Authenticated(domain.RoleAdmin), roleHandler.Delete, nil},

		// --- Probes and tooling (no auth required) ---
		{http.MethodGet, "/health", middleware.Public, healthHandler.Liveness, nil},
		{http.MethodGet, "/health/ready", middleware.Public, healthHandler.Readiness, nil},
		{http.MethodGet, "/metrics", middleware.Public, echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}), nil},
		{http.MethodGet, "/swagger/*", middleware.Public, echoSwagger.WrapHandler, nil},
	}

	for _, r := range routes {
		mws := append([]echo.MiddlewareFunc{middleware.Gate(deps.Tokens, r.policy)}, r.extra...)
		e.Add(r.method, r.path, r.handler, mws...)
	}

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
