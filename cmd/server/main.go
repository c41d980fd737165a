package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/kakpu/IT-onboarding/internal/cache"
	"github.com/kakpu/IT-onboarding/internal/config"
	"github.com/kakpu/IT-onboarding/internal/database"
	"github.com/kakpu/IT-onboarding/internal/logging"
	"github.com/kakpu/IT-onboarding/internal/middleware"
	"github.com/kakpu/IT-onboarding/internal/routes"
	"github.com/kakpu/IT-onboarding/internal/services"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// ERROR+ records are also batched into system_logs
	dbLogHandler := logging.NewDBHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewFanout(
		logging.NewStdoutHandler(),
		dbLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanup, err := logging.StartCleanup(database.DB)
	if err != nil {
		slog.Error("log cleanup schedule failed", "error", err)
		os.Exit(1)
	}

	// Stats cache: Redis when configured, in-process otherwise
	var statsStore cache.Store = cache.NewMemoryStore()
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(context.Background(), cfg)
		if err != nil {
			slog.Warn("redis unavailable, using in-memory stats cache", "error", err)
		} else {
			defer redisClient.Close()
			statsStore = cache.NewRedisStore(redisClient)
		}
	}

	// Services
	catalog := services.NewCatalogService(database.DB)
	activity := services.NewActivityService(database.DB, services.DefaultActivityOptions())
	deps := routes.Deps{
		DB:       database.DB,
		Config:   cfg,
		Auth:     services.NewAuthService(database.DB, cfg),
		Catalog:  catalog,
		Progress: services.NewProgressService(database.DB, activity),
		Activity: activity,
		Stats:    services.NewStatsService(database.DB, catalog, statsStore, cache.Policy{MaxAge: cfg.StatsCacheMaxAge}),
		Users:    services.NewUserService(database.DB),
	}

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	// Routes (identity, gate and route table)
	routes.Setup(app, deps)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Pending activity events are flushed before the database goes away.
	activity.Stop()
	<-cleanup.Stop().Done()
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(database.DB); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"error", err.Error(),
			"request_id", c.Locals("requestid"),
		)
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
