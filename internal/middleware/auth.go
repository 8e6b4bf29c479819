package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"realty_backend/pkg/utils/jwt"
)

// AuthMiddleware requires a valid "Authorization: Bearer <token>" header and
// stores the token claims under c.Locals("user").
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := claimsFromHeader(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		c.Locals("user", claims)
		return c.Next()
	}
}

// OptionalAuth attaches claims when a valid token is present and otherwise
// lets the request through anonymously.
func OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if header := c.Get(fiber.HeaderAuthorization); header != "" {
			if claims, err := claimsFromHeader(header); err == nil {
				c.Locals("user", claims)
			}
		}
		return c.Next()
	}
}

func claimsFromHeader(header string) (*jwt.Claims, error) {
	if header == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Missing Authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid Authorization header format")
	}
	claims, err := jwt.ValidateToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}
	return claims, nil
}
