package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/99minutos/auth-portal/internal/api/handler"
	"github.com/99minutos/auth-portal/internal/api/middleware"
	"github.com/99minutos/auth-portal/internal/api/webctx"
	"github.com/99minutos/auth-portal/internal/core/ports"
)

// bodyLimit caps form submissions; auth forms are tiny.
const bodyLimit = "64K"

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Auth         ports.Authenticator
	Registration ports.RegistrationService
	Sessions     ports.SessionManager
	Guard        middleware.SessionGuard
	Cookies      webctx.Cookies
	Renderer     echo.Renderer
	HealthChecks map[string]handler.Check
	Log          zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = d.Renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.Session(d.Cookies))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Registration, d.Sessions, d.Cookies, d.Log)
	pageHandler := handler.NewPageHandler()
	identify := middleware.Identify(d.Guard)
	requireAuth := middleware.RequireAuth(d.Guard, d.Cookies)

	// --- Pages ---
	e.GET("/", pageHandler.Index, identify)
	e.GET("/dashboard", pageHandler.Dashboard, requireAuth)

	// --- Auth routes ---
	e.GET("/login", authHandler.ShowLogin, identify)
	e.POST("/login", authHandler.Login)
	e.GET("/logout", authHandler.Logout)
	e.GET("/register", authHandler.ShowRegister, identify)
	e.POST("/register", authHandler.Register)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.HealthChecks, d.Log)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
