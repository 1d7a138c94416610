package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/mkh1n/play-pulse/internal/config"
	"github.com/mkh1n/play-pulse/internal/database"
	"github.com/mkh1n/play-pulse/internal/handler"
	"github.com/mkh1n/play-pulse/internal/middleware"
	"github.com/mkh1n/play-pulse/internal/models"
	"github.com/mkh1n/play-pulse/internal/rawg"
	"github.com/mkh1n/play-pulse/internal/repository"
	"github.com/mkh1n/play-pulse/internal/service"
)

func main() {
	// Structured logging
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Connect to PostgreSQL
	db, err := database.NewPostgres(cfg.DB)
	if err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to Redis (non-fatal if unavailable)
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable, running without cache", "error", err)
	}

	// RAWG catalog client
	catalog := rawg.NewClient(cfg.RAWG.APIKey, cfg.RAWG.BaseURL)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	gameRepo := repository.NewGameRepository(db)
	actionRepo := repository.NewActionRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)

	// Services
	authSvc := service.NewAuthService(userRepo, cfg.JWT)
	gameSvc := service.NewGameService(gameRepo, catalog, rdb)
	prefSvc := service.NewPreferenceService(actionRepo, gameRepo)
	recSvc := service.NewRecommendationService(prefRepo, actionRepo, catalog, rdb)
	userSvc := service.NewUserService(userRepo, actionRepo)

	// Handlers
	authH := handler.NewAuthHandler(authSvc)
	gameH := handler.NewGameHandler(gameSvc, prefSvc)
	recH := handler.NewRecommendationHandler(recSvc, prefSvc)
	userH := handler.NewUserHandler(userSvc, prefSvc)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Play Pulse",
		ServerHeader: "play-pulse",
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("unhandled error", "error", err, "status", code)
			return c.Status(code).JSON(handler.ErrorResponse{Error: err.Error()})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	requireAuth := middleware.RequireAuth(authSvc)

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "play-pulse"})
	})

	// Auth
	app.Post("/auth/register", authH.Register)
	app.Post("/auth/login", authH.Login)
	app.Get("/auth/validate", requireAuth, authH.Validate)
	app.Post("/auth/logout", requireAuth, authH.Logout)

	// Catalog. Metadata routes go before /games/:id so the param does not
	// capture them.
	app.Get("/games", gameH.List)
	app.Get("/games/metadata/genres", gameH.Genres)
	app.Get("/games/metadata/platforms", gameH.Platforms)
	app.Get("/games/metadata/all", gameH.Metadata)
	app.Get("/games/:id", gameH.Detail)

	// Game actions
	app.Post("/games/:id/like", requireAuth, gameH.RecordAction(models.ActionLike))
	app.Delete("/games/:id/like", requireAuth, gameH.RemoveAction(models.ActionLike))
	app.Post("/games/:id/dislike", requireAuth, gameH.RecordAction(models.ActionDislike))
	app.Delete("/games/:id/dislike", requireAuth, gameH.RemoveAction(models.ActionDislike))
	app.Post("/games/:id/wishlist", requireAuth, gameH.RecordAction(models.ActionWishlist))
	app.Delete("/games/:id/wishlist", requireAuth, gameH.RemoveAction(models.ActionWishlist))
	app.Post("/games/:id/rate", requireAuth, gameH.Rate)
	app.Delete("/games/:id/rate", requireAuth, gameH.RemoveAction(models.ActionRate))
	app.Post("/games/:id/status", requireAuth, gameH.UpdateStatus)
	app.Post("/games/:id/purchase", requireAuth, gameH.UpdatePurchase)
	app.Get("/games/:id/user-actions", requireAuth, gameH.UserActions)

	// Recommendations
	app.Get("/recommendations/personalized", requireAuth, recH.Personalized)
	app.Get("/recommendations/popular", recH.Popular)
	app.Get("/recommendations/new", recH.New)
	app.Get("/recommendations/my-preferences", requireAuth, recH.MyPreferences)

	// Users
	app.Get("/users/me", requireAuth, userH.Me)
	app.Put("/users/me", requireAuth, userH.UpdateMe)
	app.Get("/users/me/games", requireAuth, userH.MyGames)
	app.Get("/users/:id", userH.PublicProfile)
	app.Get("/users/:id/stats", userH.Stats)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		slog.Info("shutting down server...")
		_ = app.Shutdown()
	}()

	// Start server
	addr := ":" + cfg.Port
	slog.Info("starting server", "addr", addr)
	if err := app.Listen(addr); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
