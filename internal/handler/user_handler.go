package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mkh1n/play-pulse/internal/middleware"
	"github.com/mkh1n/play-pulse/internal/models"
	"github.com/mkh1n/play-pulse/internal/service"
)

// UserHandler serves profile and library endpoints.
type UserHandler struct {
	users *service.UserService
	prefs *service.PreferenceService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, prefs *service.PreferenceService) *UserHandler {
	return &UserHandler{users: users, prefs: prefs}
}

// Me returns the caller's account and profile.
// GET /users/me
func (h *UserHandler) Me(c fiber.Ctx) error {
	claims, ok := middleware.UserFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "not authenticated"})
	}

	me, err := h.users.GetMe(claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(me)
}

// UpdateMe patches the caller's profile.
// PUT /users/me
func (h *UserHandler) UpdateMe(c fiber.Ctx) error {
	claims, ok := middleware.UserFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "not authenticated"})
	}

	var req models.UpdateProfileRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	profile, err := h.users.UpdateProfile(claims.UserID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// MyGames returns the caller's library grouped by game.
// GET /users/me/games
func (h *UserHandler) MyGames(c fiber.Ctx) error {
	claims, ok := middleware.UserFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "not authenticated"})
	}

	games, err := h.prefs.GetUserGames(claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "count": len(games), "games": games})
}

// PublicProfile returns another user's public profile.
// GET /users/:id
func (h *UserHandler) PublicProfile(c fiber.Ctx) error {
	id := fiber.Params[int](c, "id")
	if id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid user ID"})
	}

	profile, err := h.users.GetPublicProfile(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// Stats returns a user's public activity statistics.
// GET /users/:id/stats
func (h *UserHandler) Stats(c fiber.Ctx) error {
	id := fiber.Params[int](c, "id")
	if id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid user ID"})
	}

	stats, err := h.users.GetUserStats(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
