package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/salesintel/sales-intelligence-api/docs"
	"github.com/salesintel/sales-intelligence-api/internal/api/handler"
	"github.com/salesintel/sales-intelligence-api/internal/api/middleware"
	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
	"github.com/salesintel/sales-intelligence-api/internal/core/ports"
)

// Deps carries everything the router wires into handlers and middleware.
// Registerer and Gatherer default to the global Prometheus registry.
type Deps struct {
	Log zerolog.Logger

	Tokens         ports.TokenVerifier
	AuthService    ports.AuthService
	SalesService   ports.SalesService
	InsightService ports.InsightService

	AuthLimiter echomiddleware.RateLimiterStore
	APILimiter  echomiddleware.RateLimiterStore

	ReadinessChecks map[string]handler.CheckFunc
	CORSOrigins     []string

	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: d.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "salesintel",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.AuthService)
	salesHandler := handler.NewSalesHandler(d.SalesService)
	insightHandler := handler.NewInsightHandler(d.InsightService)
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.ReadinessChecks, d.Log)

	authLimit := middleware.RateLimit("auth", d.AuthLimiter, d.Log)
	apiLimit := middleware.RateLimit("api", d.APILimiter, d.Log)
	authRequired := middleware.Auth(d.Tokens)

	api := e.Group("/api")

	// --- Health probes (no auth required) ---
	api.GET("/health", healthHandler.Liveness)
	api.GET("/health/ready", readinessHandler.Readiness)

	// --- Auth routes ---
	api.POST("/auth/register", authHandler.Register, authLimit)
	api.POST("/auth/login", authHandler.Login, authLimit)

	// --- Protected routes ---
	// Middleware is attached per route: a group Use would install catch-all
	// routes under /api and turn unknown paths into 401s.
	protected := []echo.MiddlewareFunc{apiLimit, authRequired}
	managers := []echo.MiddlewareFunc{apiLimit, authRequired, middleware.RBAC(domain.RoleAdmin, domain.RoleManager)}

	api.GET("/auth/me", authHandler.Me, protected...)

	api.GET("/sales", salesHandler.List, protected...)
	api.GET("/sales/stats", salesHandler.Stats, protected...)
	api.GET("/sales/:id", salesHandler.Get, protected...)
	api.POST("/sales", salesHandler.Create, protected...)

	api.GET("/insights", insightHandler.List, protected...)
	api.POST("/insights", insightHandler.Create, managers...)
	api.GET("/insights/trends", insightHandler.Trends, protected...)
	api.GET("/insights/forecast", insightHandler.Forecast, protected...)
	api.GET("/insights/top-performers", insightHandler.TopPerformers, protected...)

	api.GET("/dashboard", insightHandler.Dashboard, protected...)

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

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
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Status >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
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
