package server

import (
	"strings"

	"pwsi/core/middleware/auth"
	"pwsi/core/middleware/rayid"
	"pwsi/core/middleware/requestlog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// New builds the Fiber application with the common middleware chain and
// returns it together with the router features mount on.
func New(cfg Config, logger *zap.Logger) (*fiber.App, fiber.Router) {
	limit := cfg.BodyLimitMB
	if limit <= 0 {
		limit = 8
	}
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             limit * 1024 * 1024,
	})

	// Ray id first so everything below is traceable.
	app.Use(rayid.New())
	app.Use(requestlog.New(logger))

	if cfg.Metrics {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	admin := cfg.AdminPath()
	app.Use(auth.New(auth.Config{
		ApiKey: cfg.ApiKey,
		Public: func(c *fiber.Ctx) bool {
			return auth.ReadOnly(c) && !auth.Destructive(c) && !strings.HasPrefix(c.Path(), admin)
		},
	}))
	if cfg.ApiKey == "" {
		logger.Warn("API key is empty, mutating routes are unprotected")
	}

	base := cfg.BasePath()
	if base == "" {
		return app, app
	}
	return app, app.Group(base)
}
