package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/mkh1n/play-pulse/internal/service"
)

const userLocalsKey = "auth_user"

// RequireAuth validates the bearer token and stores the caller's identity
// in the request locals.
func RequireAuth(auth *service.AuthService) fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing Authorization header",
			})

		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid Authorization header format, expected 'Bearer <token>'",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.ParseToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		c.Locals(userLocalsKey, claims)
		return c.Next()
	}
}

// UserFromCtx returns the identity stored by RequireAuth.
func UserFromCtx(c fiber.Ctx) (*service.TokenClaims, bool) {
	claims, ok := c.Locals(userLocalsKey).(*service.TokenClaims)
	return claims, ok
}
