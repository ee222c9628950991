package api

import (
	"embed"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dynamicfusion/expense-portal/internal/api/handler"
	"github.com/dynamicfusion/expense-portal/internal/api/middleware"
	"github.com/dynamicfusion/expense-portal/internal/core/domain"
	"github.com/dynamicfusion/expense-portal/internal/core/ports"
	"github.com/dynamicfusion/expense-portal/internal/core/service"
)

//go:embed static
var staticFS embed.FS

// Deps are the wired dependencies the router needs. Everything behind a
// port is swappable in tests.
type Deps struct {
	Backend    ports.BackendClient
	Sessions   ports.SessionStore
	Auth       ports.AuthService
	Tokens     ports.AttachmentTokenStore
	Redis      *redis.Client
	SessionTTL time.Duration
	Logger     zerolog.Logger
	// Registerer receives the HTTP middleware's collectors. Defaults to
	// the process-wide registry; tests pass a private one so routers can
	// be built repeatedly.
	Registerer prometheus.Registerer
}

// NewRouter builds the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Renderer = NewRenderer()
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Sessions, d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	reg := d.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "portal",
		Registerer: reg,
	}))
	e.Use(middleware.ResolveSession(d.Sessions))

	// --- Handlers ---
	views := service.NewRequestViewService()
	authHandler := handler.NewAuthHandler(d.Auth, d.SessionTTL, d.Logger)
	pageHandler := handler.NewPageHandler(d.Backend, views, d.Logger)
	actionHandler := handler.NewActionHandler(d.Backend, d.Logger)
	userHandler := handler.NewUserHandler(d.Backend, d.Logger)
	attachmentHandler := handler.NewAttachmentHandler(d.Backend, d.Sessions, d.Tokens, d.Logger)
	healthHandler := handler.NewHealthHandler(d.Backend, d.Redis)

	e.StaticFS("/static", echo.MustSubFS(staticFS, "static"))

	// --- Public routes ---
	e.GET("/", func(c echo.Context) error { return c.Redirect(http.StatusFound, "/home") })
	e.GET("/login", authHandler.LoginPage)
	e.POST("/login", authHandler.Login)
	e.POST("/logout", authHandler.Logout)
	e.GET("/attachments/:filename", attachmentHandler.Fetch)

	// --- Signed-in routes ---
	auth := e.Group("", middleware.RequireAuth())
	auth.GET("/home", pageHandler.Home)
	auth.GET("/history", pageHandler.History)
	auth.GET("/requests/:id", pageHandler.Detail)
	auth.GET("/attachments/view/:filename", attachmentHandler.View)

	// --- Staff-only submission routes ---
	staff := e.Group("", middleware.RequireRole(domain.RoleStaff))
	staff.GET("/reimbursement", pageHandler.SubmitPage)
	staff.POST("/reimbursement", actionHandler.Submit)
	staff.GET("/payment", pageHandler.SubmitPage)
	staff.POST("/payment", actionHandler.Submit)

	// --- Admin routes ---
	admin := e.Group("/admin", middleware.RequireRole(domain.RoleAdmin))
	admin.GET("/review", pageHandler.Review)
	admin.GET("/records", pageHandler.Records)
	admin.POST("/requests/:id/status", actionHandler.UpdateStatus)
	admin.GET("/users", userHandler.Users)
	admin.POST("/users", userHandler.CreateUser)
	admin.POST("/users/:username/delete", userHandler.DeleteUser)

	// --- Health probes and metrics (no auth required) ---
	e.GET("/healthz", healthHandler.Live)
	e.GET("/healthz/ready", healthHandler.Ready)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
