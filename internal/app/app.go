// Package app assembles the HTTP pipeline:
//
//	request logger → metrics → recover → API key (/api/products only) →
//	body parsing → validation (POST, PUT) → handler → error handler
//
// The error handler is installed as the fiber ErrorHandler, so it receives
// every failure that was not already answered by an earlier stage.
package app

import (
	"io"
	"os"
	"runtime/debug"
	"time"

	"productapi/internal/handlers"
	"productapi/internal/metrics"
	"productapi/internal/middleware"
	"productapi/internal/services"
	"productapi/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// AccessLogFormat produces lines like "[2026-10-14T09:30:00Z] GET /api/products 200 1.2ms".
const AccessLogFormat = "[${time}] ${method} ${path} ${status} ${latency}\n"

// Dependencies are the collaborators of the HTTP layer.
type Dependencies struct {
	Products *services.ProductService
	APIKeys  middleware.APIKeyVerifier
	Metrics  *metrics.Metrics
	Log      *zap.Logger

	CreateValidation validation.Policy
	UpdateValidation validation.Policy

	// ReadTimeout bounds GET /api/products/:id when positive.
	ReadTimeout time.Duration

	// AccessLog receives one line per request. Defaults to stdout.
	AccessLog io.Writer
}

// New builds the fiber app.
func New(d Dependencies) *fiber.App {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.AccessLog == nil {
		d.AccessLog = os.Stdout
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(d.Log),
		DisableStartupMessage: true,
	})

	// The request logger runs first so rejected requests are recorded too.
	app.Use(logger.New(logger.Config{
		Format:     AccessLogFormat,
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Output:     d.AccessLog,
	}))
	if d.Metrics != nil {
		app.Use(middleware.Metrics(d.Metrics))
	}
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			d.Log.Error("panic recovered",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Any("panic", e),
				zap.ByteString("stack", debug.Stack()),
			)
		},
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Hello, World!")
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().UTC().Format(time.RFC3339),
			"products": d.Products.CountProducts(),
		})
	})
	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))
	}

	// The key check is attached per route; a group handler would also match
	// paths that merely share the prefix, such as /api/productsfoo.
	products := app.Group("/api/products")
	handlers.NewProductHandler(d.Products, d.CreateValidation, d.UpdateValidation,
		handlers.WithReadTimeout(d.ReadTimeout),
	).RegisterRoutes(products, middleware.APIKeyRequired(d.APIKeys))

	return app
}
