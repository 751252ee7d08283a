package http

import (
	"context"
	"errors"
	"log/slog"
	nethttp "net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/medclimate/backend/internal/domain"
)

// AppConfig holds the settings NewApp needs
type AppConfig struct {
	Name        string
	CORSOrigins string

	// RequestTimeout bounds the store calls of one request; zero means DefaultRequestTimeout
	RequestTimeout time.Duration
}

// DefaultRequestTimeout matches the server write timeout
const DefaultRequestTimeout = 10 * time.Second

// NewApp builds the fiber app with the shared error handler and middleware
func NewApp(cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  DefaultRequestTimeout,
		WriteTimeout: DefaultRequestTimeout,
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(requestContext(cfg.RequestTimeout))

	return app
}

// requestContext installs a deadline-bound user context that handlers pass to the store.
// fasthttp does not report client disconnects, so the deadline is what ends a stuck call.
func requestContext(timeout time.Duration) fiber.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()

		c.SetUserContext(ctx)
		return c.Next()
	}
}

// SetupRoutes configures all HTTP routes. metrics may be nil.
func SetupRoutes(app *fiber.App, repo domain.RecordRepository, metrics nethttp.Handler) {
	handler := NewHandler(repo)

	app.Get("/", handler.Root)

	// Health checks
	app.Get("/health", handler.HealthCheck)
	app.Get("/health/ready", handler.Ready)

	if metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metrics))
	}

	// API v1 routes
	api := app.Group("/api/v1")
	{
		api.Post("/records", handler.CreateRecord)
		api.Get("/records", handler.ListRecords)
		api.Get("/records/stats", handler.RecordStats)
		api.Get("/records/extremes", handler.ExtremeEvents)
	}
}

// ErrorHandler renders every error as {"error": true, "message": ...}
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
		message = fe.Message
	case errors.Is(err, domain.ErrValidation):
		code = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, domain.ErrStorageUnavailable):
		code = fiber.StatusServiceUnavailable
		message = "Storage unavailable"
	}

	if code >= fiber.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"status", code,
			"request_id", c.Locals("requestid"),
			"error", err,
		)
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
