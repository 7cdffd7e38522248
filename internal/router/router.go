package router

import (
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app/server"

	"github.com/SINTEF/entities-service/internal/handler"
	"github.com/SINTEF/entities-service/internal/middleware"
	"github.com/SINTEF/entities-service/pkg/metrics"
)

// Handlers groups everything the routes dispatch to
type Handlers struct {
	User   *handler.UserHandler
	Entity *handler.EntityHandler
	Health *handler.HealthHandler
}

// Options toggles optional routes and middleware
type Options struct {
	AllowRegistration bool
	Metrics           *metrics.Metrics // nil disables request metrics
	Logger            *slog.Logger
}

// Setup sets up all routes
func Setup(h *server.Hertz, handlers Handlers, opts Options) {
	h.Use(middleware.Recovery(opts.Logger))
	h.Use(middleware.Logger(opts.Logger))
	if opts.Metrics != nil {
		h.Use(middleware.Metrics(opts.Metrics))
	}
	h.Use(middleware.CORS())

	h.GET("/ping", handlers.Health.Ping)
	h.GET("/health/ready", handlers.Health.Readiness)
	h.GET("/health/live", handlers.Health.Liveness)

	api := h.Group("/_api")
	{
		api.GET("/namespaces", handlers.Entity.ListNamespaces)
		api.GET("/entities", handlers.Entity.ListEntities)
		api.POST("/validate", handlers.Entity.Validate)
	}

	auth := h.Group("/_auth")
	{
		auth.POST("/login", handlers.User.Login)
		auth.POST("/refresh", handlers.User.RefreshToken)
		if opts.AllowRegistration {
			auth.POST("/register", handlers.User.Register)
		}
		auth.GET("/me", handlers.User.AuthMiddleware(), handlers.User.GetCurrentUser)
	}

	admin := h.Group("/_admin")
	admin.Use(handlers.User.AuthMiddleware())
	{
		admin.POST("/create", handlers.Entity.Create)

		users := admin.Group("/users")
		{
			users.GET("", handlers.User.ListUsers)
			users.GET("/:id", handlers.User.GetUser)
			users.DELETE("/:id", handlers.User.DeleteUser)
		}
	}

	// Everything else is an entity path below the base namespace
	h.GET("/*path", handlers.Entity.GetEntity)
}
