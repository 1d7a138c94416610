package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/mkh1n/play-pulse/internal/middleware"
	"github.com/mkh1n/play-pulse/internal/models"
	"github.com/mkh1n/play-pulse/internal/service"
)

// RecommendationHandler serves personalized and popularity feeds.
type RecommendationHandler struct {
	recs  *service.RecommendationService
	prefs *service.PreferenceService
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(recs *service.RecommendationService, prefs *service.PreferenceService) *RecommendationHandler {
	return &RecommendationHandler{recs: recs, prefs: prefs}
}

// Personalized returns the caller's scored recommendation feed.
// GET /recommendations/personalized
func (h *RecommendationHandler) Personalized(c fiber.Ctx) error {
	claims, ok := middleware.UserFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "not authenticated"})
	}
	limit := fiber.Query(c, "limit", 20)

	games, err := h.recs.GetPersonalized(c.Context(), claims.UserID, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.RecommendationsResponse{
		Success:         true,
		Count:           len(games),
		Recommendations: games,
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
	})
}

// Popular returns the highest-rated catalog games for everyone.
// GET /recommendations/popular
func (h *RecommendationHandler) Popular(c fiber.Ctx) error {
	limit := fiber.Query(c, "limit", 20)

	games, err := h.recs.GetPopular(c.Context(), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.PopularGamesResponse{
		Success: true,
		Count:   len(games),
		Games:   games,
	})
}

// New returns recently released popular games.
// GET /recommendations/new
func (h *RecommendationHandler) New(c fiber.Ctx) error {
	limit := fiber.Query(c, "limit", 20)

	games, err := h.recs.GetNew(c.Context(), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.PopularGamesResponse{
		Success: true,
		Count:   len(games),
		Games:   games,
	})
}

// MyPreferences returns the caller's aggregated preference profile.
// GET /recommendations/my-preferences
func (h *RecommendationHandler) MyPreferences(c fiber.Ctx) error {
	claims, ok := middleware.UserFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "not authenticated"})
	}
	return c.JSON(h.prefs.GetUserPreferences(claims.UserID))
}
