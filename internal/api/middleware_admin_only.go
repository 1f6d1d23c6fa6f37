package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclecore/internal/security"
)

func (handler *Handler) AdminOnly(c *fiber.Ctx) error {
	if _, ok := currentUserID(c); !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if currentRole(c) != security.RoleAdmin {
		return apiError(c, fiber.StatusForbidden, "admin access required")
	}
	return c.Next()
}
