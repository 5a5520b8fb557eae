package api

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/aurora-advisory/advisory-api/internal/api/handler"
	"github.com/aurora-advisory/advisory-api/internal/api/middleware"
	"github.com/aurora-advisory/advisory-api/internal/core/domain"
	"github.com/aurora-advisory/advisory-api/internal/core/ports"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	Logger   zerolog.Logger
	Auth     ports.AuthService
	Profiles ports.ProfileService
	Workflow ports.WorkflowService
	Query    ports.QueryService

	// HealthChecks are pinged by /health/ready, keyed by dependency name.
	HealthChecks map[string]handler.HealthCheck

	// Registerer and Gatherer back the HTTP metrics middleware and /metrics.
	// Both nil disables the metrics surface.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	CORSAllowOrigins []string

	// FrontendDir serves the static pages when non-empty.
	FrontendDir string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(corsConfig(d.CORSAllowOrigins)))
	if d.Registerer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "http",
			Registerer: d.Registerer,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		}))
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	profileHandler := handler.NewProfileHandler(d.Profiles)
	requestHandler := handler.NewRequestHandler(d.Workflow, d.Query)
	healthHandler := handler.NewHealthHandler(d.HealthChecks, d.Logger)

	authMW := middleware.Auth(d.Auth)
	staffOnly := middleware.RBAC(domain.RoleAdvisor, domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/me", authHandler.Me, authMW)

	// --- Profile routes ---
	me := e.Group("/me", authMW)
	me.GET("/profile", profileHandler.Get)
	me.POST("/profile", profileHandler.Upsert)
	me.PUT("/profile", profileHandler.Upsert)

	// --- Request routes ---
	requests := e.Group("/requests", authMW)
	requests.POST("", requestHandler.Create)
	requests.GET("/me", requestHandler.ListMine)
	requests.GET("/me/:id", requestHandler.GetMine)
	requests.PATCH("/me/:id", requestHandler.Cancel)
	requests.DELETE("/me/:id", requestHandler.Delete)

	requests.GET("", requestHandler.ListAll, staffOnly)
	requests.GET("/stats", requestHandler.Stats, staffOnly)
	requests.PATCH("/:id", requestHandler.SetStatus, staffOnly)
	requests.GET("/:id/history", requestHandler.History)

	// --- Operational routes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	if d.Gatherer != nil {
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: d.Gatherer,
		}))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	if d.FrontendDir != "" {
		registerFrontend(e, d.FrontendDir)
	}

	return e
}

func corsConfig(origins []string) echomiddleware.CORSConfig {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return echomiddleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderAuthorization, "Idempotency-Key",
		},
		ExposeHeaders: []string{"Idempotent-Replayed", echo.HeaderXRequestID},
	}
}

// registerFrontend serves the browser pages. They are plain files, not part of
// the documented API.
func registerFrontend(e *echo.Echo, dir string) {
	e.Static("/static", filepath.Join(dir, "static"))

	toLogin := func(c echo.Context) error {
		return c.Redirect(http.StatusTemporaryRedirect, "/app/login")
	}
	e.GET("/", toLogin)
	e.GET("/app", toLogin)

	pages := map[string]string{
		"/app/login":          "login.html",
		"/app/dashboard":      "dashboard.html",
		"/app/my-requests":    "my_requests.html",
		"/app/requests-admin": "requests_admin.html",
	}
	for route, file := range pages {
		e.File(route, filepath.Join(dir, file))
	}
}
