package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/localhands/marketplace-api/internal/api/http/handlers"
	"github.com/localhands/marketplace-api/internal/auth"
	"github.com/localhands/marketplace-api/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Listings       *handlers.ListingsHandler
	Realtime       *handlers.RealtimeHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
	SeedEnabled    bool
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}
	if cfg.Realtime != nil {
		app.Get("/ws", cfg.Realtime.RequireUpgrade, cfg.Realtime.Serve())
	}

	app.Post("/signup", cfg.Auth.Signup)
	app.Post("/login", cfg.Auth.Login)

	requireAuth := cfg.AuthMiddleware.Handle
	requireProvider := auth.RequireProvider()

	// Auth is attached per route; public reads share the prefix.
	listings := app.Group("/api/listings")
	listings.Get("/search", cfg.Listings.Search)
	listings.Get("/provider/:providerId", requireAuth, cfg.Listings.ListByProvider)
	listings.Get("/:id", cfg.Listings.Get)
	listings.Post("/", requireAuth, requireProvider, cfg.Listings.Create)
	listings.Put("/:id", requireAuth, requireProvider, cfg.Listings.Update)
	listings.Delete("/:id", requireAuth, requireProvider, cfg.Listings.Delete)

	if cfg.SeedEnabled {
		app.Post("/api/seed-services", requireAuth, requireProvider, cfg.Listings.Seed)
	}
}
