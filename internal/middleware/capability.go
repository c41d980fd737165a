package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kakpu/IT-onboarding/internal/authz"
	"github.com/kakpu/IT-onboarding/internal/dto"
	"github.com/kakpu/IT-onboarding/internal/identity"
)

// Require rejects callers whose role lacks capability. The gate only knows
// "privileged" versus "user"; this is where admin and trainer differ.
func Require(capability authz.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := identity.FromContext(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Authentication required",
			})
		}
		if !authz.Can(id.Role, capability) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Insufficient privileges",
			})
		}
		return c.Next()
	}
}
