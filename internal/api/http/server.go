package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/localhands/marketplace-api/internal/observability"
)

// ServerConfig holds the settings the fiber app is built from.
type ServerConfig struct {
	Name           string
	RequestTimeout time.Duration
	AllowOrigins   string
}

// NewServer builds the fiber app with middlewares and routes registered.
func NewServer(cfg ServerConfig, logger *zap.Logger, metrics *observability.Metrics, routes RouteConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.Name,
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	routes.Metrics = metrics
	RegisterMiddlewares(app, logger, metrics, cfg.RequestTimeout, cfg.AllowOrigins)
	RegisterRoutes(app, routes)
	return app
}
