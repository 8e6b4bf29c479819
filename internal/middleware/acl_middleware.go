package middleware

import (
	"github.com/gofiber/fiber/v2"

	"realty_backend/internal/model"
	"realty_backend/pkg/database"
	"realty_backend/pkg/utils/jwt"
)

// RequireRole lets the request through only when the token role is one of
// roles. It must run after AuthMiddleware.
func RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("user").(*jwt.Claims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}
		for _, r := range roles {
			if model.Role(claims.Role) == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You don't have permission to perform this action",
		})
	}
}

// CheckPropertyOwnership allows the listing agent and admins to touch the
// property named by the :id route parameter.
func CheckPropertyOwnership() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)
		propertyID, err := c.ParamsInt("id")
		if err != nil || propertyID <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid property ID",
			})
		}

		var property model.Property
		if err := database.GetDB().First(&property, propertyID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Property not found",
			})
		}

		if property.AgentID != claims.UserID && model.Role(claims.Role) != model.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You don't have permission to access this property",
			})
		}

		c.Locals("property", &property)
		return c.Next()
	}
}
