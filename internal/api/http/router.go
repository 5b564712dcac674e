package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Invitations    *handlers.InvitationHandler
	Accounts       *handlers.AccountHandler
	AuthMiddleware *auth.AuthMiddleware
	// Gatherer backs /metrics. The route is omitted when nil.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")
	api.Post("/auth", cfg.Auth.Login)
	api.Delete("/auth", cfg.Auth.Logout)
	api.Post("/invitation", cfg.Invitations.Create)
	api.Post("/register/:invitation_id", cfg.Invitations.Register)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/auth", cfg.Auth.Me)
	protected.Post("/password_change", cfg.Accounts.ChangePassword)
	protected.Delete("/account", cfg.Accounts.Delete)
}
