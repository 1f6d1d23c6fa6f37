package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclecore/internal/models"
	"github.com/terraincognita07/cyclecore/internal/services"
)

func (handler *Handler) GetPreferences(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	prefs, err := handler.preferencesService.Load(userID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load preferences")
	}
	return c.JSON(preferencesResponse(prefs))
}

func (handler *Handler) UpdatePreferences(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	payload := preferencesPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	anchor, err := handler.parseOptionalDay(payload.LastPeriodStart)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid last period start")
	}

	input := services.PreferencesInput{
		AvgCycleDays:    payload.AvgCycleDays,
		AvgPeriodDays:   payload.AvgPeriodDays,
		LastPeriodStart: anchor,
	}
	prefs, err := handler.preferencesService.Update(userID, input, handler.today())
	switch {
	case errors.Is(err, services.ErrInvalidCycleLength):
		return apiError(c, fiber.StatusBadRequest, "cycle length must be between 15 and 90 days")
	case errors.Is(err, services.ErrInvalidPeriodLength):
		return apiError(c, fiber.StatusBadRequest, "period length must be between 1 and 14 days")
	case errors.Is(err, services.ErrPeriodLongerThanCycle):
		return apiError(c, fiber.StatusBadRequest, "period length is too long for the cycle length")
	case errors.Is(err, services.ErrLastPeriodInFuture):
		return apiError(c, fiber.StatusBadRequest, "last period start cannot be in the future")
	case err != nil:
		return apiError(c, fiber.StatusInternalServerError, "failed to update preferences")
	}

	handler.refreshLearning(c.UserContext(), userID)
	return c.JSON(preferencesResponse(prefs))
}

func preferencesResponse(prefs models.CyclePreferences) fiber.Map {
	response := fiber.Map{
		"avgCycleDays":    prefs.AvgCycleDays,
		"avgPeriodDays":   prefs.AvgPeriodDays,
		"lastPeriodStart": nil,
	}
	if prefs.HasAnchor() {
		response["lastPeriodStart"] = services.DayKey(*prefs.LastPeriodStart)
	}
	return response
}
