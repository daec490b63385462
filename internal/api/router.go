package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/user-admin/docs"
	"github.com/99minutos/user-admin/internal/api/handler"
	"github.com/99minutos/user-admin/internal/api/middleware"
	"github.com/99minutos/user-admin/internal/core/guard"
	"github.com/99minutos/user-admin/internal/core/ports"
	"github.com/99minutos/user-admin/internal/core/service"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Logger   zerolog.Logger
	Users    ports.UserService
	Sessions ports.SessionProvider
	Guard    *guard.Guard
	Health   *handler.HealthHandler
	Cookie   handler.CookieConfig
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	if deps.Guard == nil {
		deps.Guard = guard.New()
	}
	if deps.Health == nil {
		deps.Health = handler.NewHealthHandler(nil)
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.Metrics())
	e.Use(middleware.RequestLogger(deps.Logger))

	// --- Ops (no session) ---
	e.GET("/health", deps.Health.Liveness)
	e.GET("/health/ready", deps.Health.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api", middleware.Session(deps.Sessions, deps.Cookie.Name))

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Sessions, deps.Guard, deps.Cookie)
	auth := api.Group("/auth")
	auth.POST("/sign-up/email", authHandler.SignUp)
	auth.POST("/sign-in/email", authHandler.SignIn)
	auth.POST("/sign-out", authHandler.SignOut)
	auth.GET("/get-session", authHandler.GetSession)
	auth.GET("/route-decision", authHandler.RouteDecision)

	// --- User administration ---
	userHandler := handler.NewUserHandler(deps.Users)
	users := api.Group("/users")
	users.GET("", userHandler.List, middleware.RBAC(service.ActionListUsers))
	users.POST("/users", userHandler.Create, middleware.RBAC(service.ActionCreateUser))
	users.PUT("/:id/role", userHandler.UpdateRole, middleware.RBAC(service.ActionUpdateRole))
	users.DELETE("/:id/user", userHandler.Delete, middleware.RBAC(service.ActionDeleteUser))
	users.GET("/:id/activity", userHandler.Activity, middleware.RBAC(service.ActionViewActivity))

	return e
}
