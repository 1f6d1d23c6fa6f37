package api

import "github.com/gofiber/fiber/v2"

func (handler *Handler) GetStats(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	report, err := handler.statsService.BuildReport(userID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load stats")
	}
	return c.JSON(report)
}
