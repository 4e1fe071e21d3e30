// Package app assembles the HTTP application from its dependencies.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"dynamicapp/internal/database"
	"dynamicapp/internal/handlers"
	"dynamicapp/internal/services"
	"dynamicapp/pkg/metrics"
)

// Dependencies are the collaborators NewApp wires together.
type Dependencies struct {
	DB       *gorm.DB
	Service  services.DataService
	Registry *prometheus.Registry
	Logger   *slog.Logger

	// DisableRequestLog turns off the per-request access log.
	DisableRequestLog bool
}

// NewApp builds the Fiber application with health, metrics and the
// versioned entity API.
func NewApp(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "dynamicapp",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	if !deps.DisableRequestLog {
		app.Use(logger.New())
	}

	app.Get("/health", healthHandler(deps.DB))
	if deps.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(deps.Registry)))
	}

	apiV1 := app.Group("/api/v1")
	handlers.NewEntityHandler(deps.Service, deps.Logger).RegisterRoutes(apiV1)

	return app
}

func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := fiber.Map{
			"status":   "healthy",
			"time":     time.Now().UTC().Format(time.RFC3339),
			"database": "not configured",
		}

		if db != nil {
			status["database"] = "connected"
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := database.Ping(ctx, db); err != nil {
				status["status"] = "unhealthy"
				status["database"] = err.Error()
				return c.Status(fiber.StatusServiceUnavailable).JSON(status)
			}
		}
		return c.JSON(status)
	}
}
