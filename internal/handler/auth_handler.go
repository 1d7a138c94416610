package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mkh1n/play-pulse/internal/middleware"
	"github.com/mkh1n/play-pulse/internal/models"
	"github.com/mkh1n/play-pulse/internal/service"
)

// AuthHandler handles registration, login and token validation.
type AuthHandler struct {
	svc *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register creates a new account.
// POST /auth/register
func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	resp, err := h.svc.Register(req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login authenticates an existing account.
// POST /auth/login
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	resp, err := h.svc.Login(req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Validate confirms the bearer token is still good.
// GET /auth/validate
func (h *AuthHandler) Validate(c fiber.Ctx) error {
	claims, ok := middleware.UserFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "not authenticated"})
	}
	return c.JSON(fiber.Map{
		"valid": true,
		"user": fiber.Map{
			"id":       claims.UserID,
			"login":    claims.Login,
			"username": claims.Username,
		},
	})
}

// Logout is a no-op acknowledgement; tokens are stateless.
// POST /auth/logout
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}
