package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	fiberRecover "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/mkh1n/play-pulse/internal/config"
	"github.com/mkh1n/play-pulse/internal/database"
	"github.com/mkh1n/play-pulse/internal/gateway"
	"github.com/mkh1n/play-pulse/internal/middleware"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.LoadGateway()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Redis backs the rate limiter; the gateway runs open without it
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable, rate limiting disabled", "error", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "Play Pulse Gateway",
		ServerHeader: "play-pulse-gateway",
	})

	app.Use(fiberRecover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	if rdb != nil {
		rateLimiter := middleware.NewRateLimiter(rdb, cfg.RateLimitMax, cfg.RateLimitWindowSeconds)
		app.Use(rateLimiter.Handler())
	}

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "play-pulse-gateway"})
	})

	deals := gateway.NewDealsHandler(cfg.DealsAPIURL)
	app.Get("/api/deals", deals.Search)

	// Everything else under /api goes to the backend with the prefix
	// stripped
	svcProxy := gateway.NewServiceProxy()
	app.All("/api/*", svcProxy.ForwardTo(cfg.BackendURL, "/api"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("gateway starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down gateway...")

	if err := app.Shutdown(); err != nil {
		slog.Error("error shutting down HTTP server", "error", err)
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("error closing Redis connection", "error", err)
		}
	}

	slog.Info("gateway shutdown complete")
}
