package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/mkh1n/play-pulse/internal/middleware"
	"github.com/mkh1n/play-pulse/internal/models"
	"github.com/mkh1n/play-pulse/internal/service"
)

// GameHandler handles catalog reads and user game actions.
type GameHandler struct {
	games *service.GameService
	prefs *service.PreferenceService
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(games *service.GameService, prefs *service.PreferenceService) *GameHandler {
	return &GameHandler{games: games, prefs: prefs}
}

// List returns a catalog page annotated with is_cached.
// GET /games
func (h *GameHandler) List(c fiber.Ctx) error {
	params := models.GameListParams{
		Page:       fiber.Query(c, "page", 1),
		PageSize:   fiber.Query(c, "pageSize", 20),
		Search:     c.Query("search"),
		Ordering:   c.Query("ordering", "-rating"),
		Genres:     c.Query("genres"),
		Platforms:  c.Query("platforms"),
		Tags:       c.Query("tags"),
		Dates:      c.Query("dates"),
		Developers: c.Query("developers"),
		Publishers: c.Query("publishers"),
	}

	result, err := h.games.List(c.Context(), params)
	if err != nil {
		slog.Error("failed to list games", "error", err)
		return respondError(c, err)
	}
	return c.JSON(result)
}

// Detail returns one catalog item, shadow-caching it in the background.
// GET /games/:id
func (h *GameHandler) Detail(c fiber.Ctx) error {
	id := fiber.Params[int](c, "id")
	if id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid game ID"})
	}

	detail, err := h.games.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

// Genres returns the genre catalog.
// GET /games/metadata/genres
func (h *GameHandler) Genres(c fiber.Ctx) error {
	genres, err := h.games.Genres(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(genres)
}

// Platforms returns the platform catalog.
// GET /games/metadata/platforms
func (h *GameHandler) Platforms(c fiber.Ctx) error {
	platforms, err := h.games.Platforms(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(platforms)
}

// Metadata returns genres and platforms in one response.
// GET /games/metadata/all
func (h *GameHandler) Metadata(c fiber.Ctx) error {
	genres, err := h.games.Genres(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	platforms, err := h.games.Platforms(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"genres": genres, "platforms": platforms})
}

// RecordAction upserts a like/dislike/wishlist row for the caller.
// POST /games/:id/{like|dislike|wishlist}
func (h *GameHandler) RecordAction(actionType string) fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, id, ok := h.authAndGameID(c)
		if !ok {
			return nil
		}

		var req models.GameActionRequest
		if err := c.Bind().JSON(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
		}
		req.Game = withGameID(req.Game, id)

		action, err := h.prefs.ProcessGameAction(claims.UserID, req.Game, actionType)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "action": action})
	}
}

// RemoveAction deletes the caller's action row of the given type.
// DELETE /games/:id/{like|dislike|wishlist|rate}
func (h *GameHandler) RemoveAction(actionType string) fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, id, ok := h.authAndGameID(c)
		if !ok {
			return nil
		}

		if err := h.prefs.RemoveGameAction(claims.UserID, id, actionType); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// Rate upserts the caller's rating for a game.
// POST /games/:id/rate
func (h *GameHandler) Rate(c fiber.Ctx) error {
	claims, id, ok := h.authAndGameID(c)
	if !ok {
		return nil
	}

	var req models.RateGameRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	req.Game = withGameID(req.Game, id)

	action, err := h.prefs.ProcessGameRating(claims.UserID, req.Game, req.Rating)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "action": action})
}

// UpdateStatus upserts the caller's completion status for a game.
// POST /games/:id/status
func (h *GameHandler) UpdateStatus(c fiber.Ctx) error {
	claims, id, ok := h.authAndGameID(c)
	if !ok {
		return nil
	}

	var req models.UpdateStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	req.Game = withGameID(req.Game, id)

	action, err := h.prefs.UpdateCompletionStatus(claims.UserID, req.Game, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "action": action})
}

// UpdatePurchase upserts the caller's purchase status for a game.
// POST /games/:id/purchase
func (h *GameHandler) UpdatePurchase(c fiber.Ctx) error {
	claims, id, ok := h.authAndGameID(c)
	if !ok {
		return nil
	}

	var req models.UpdatePurchaseRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	req.Game = withGameID(req.Game, id)

	action, err := h.prefs.UpdatePurchaseStatus(claims.UserID, req.Game, req.Purchase)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "action": action})
}

// UserActions returns the flattened snapshot of everything the caller has
// done with one game.
// GET /games/:id/user-actions
func (h *GameHandler) UserActions(c fiber.Ctx) error {
	claims, id, ok := h.authAndGameID(c)
	if !ok {
		return nil
	}

	snapshot, err := h.prefs.GetUserGameActions(claims.UserID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snapshot)
}

// authAndGameID resolves the caller and the :id path param. When it
// returns false the response has already been written.
func (h *GameHandler) authAndGameID(c fiber.Ctx) (*service.TokenClaims, int, bool) {
	claims, ok := middleware.UserFromCtx(c)
	if !ok {
		_ = c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "not authenticated"})
		return nil, 0, false
	}
	id := fiber.Params[int](c, "id")
	if id <= 0 {
		_ = c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid game ID"})
		return nil, 0, false
	}
	return claims, id, true
}

// withGameID pins the snapshot to the path id; the body may omit or
// contradict it.
func withGameID(game models.GameSnapshot, id int) models.GameSnapshot {
	game.RawgID = id
	game.ID = id
	return game
}
