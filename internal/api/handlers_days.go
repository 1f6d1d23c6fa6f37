package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclecore/internal/services"
)

const defaultLogRangeDays = 90

func (handler *Handler) GetLogs(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	today := handler.today()
	from, to, err := handler.parseRange(c, today.AddDate(0, 0, -defaultLogRangeDays), today)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid range")
	}
	logs, err := handler.dayService.FetchLogsForUser(userID, from, to)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load logs")
	}
	return c.JSON(logs)
}

func (handler *Handler) GetLog(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	day, err := handler.parseDay(c.Params("date"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	entry, found, err := handler.dayService.FetchLogByDate(userID, day)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load log")
	}
	return c.JSON(fiber.Map{
		"date":   services.DayKey(day),
		"exists": found,
		"log":    entry,
	})
}

func (handler *Handler) UpsertLog(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	day, err := handler.parseDay(c.Params("date"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}
	if services.DaysBetween(handler.today(), day) > 0 {
		return apiError(c, fiber.StatusBadRequest, "cannot log future days")
	}

	input := services.DayEntryInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	entry, err := handler.dayService.UpsertDayEntry(userID, day, input)
	switch {
	case errors.Is(err, services.ErrInvalidDayFlow):
		return apiError(c, fiber.StatusBadRequest, "invalid flow value")
	case errors.Is(err, services.ErrInvalidDayMood):
		return apiError(c, fiber.StatusBadRequest, "invalid mood value")
	case err != nil:
		return apiError(c, fiber.StatusInternalServerError, "failed to save log")
	}

	handler.refreshLearning(c.UserContext(), userID)
	return c.JSON(entry)
}

func (handler *Handler) DeleteLog(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	day, err := handler.parseDay(c.Params("date"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	err = handler.dayService.DeleteDayEntry(userID, day)
	switch {
	case errors.Is(err, services.ErrDayEntryNotFound):
		return apiError(c, fiber.StatusNotFound, "log not found")
	case err != nil:
		return apiError(c, fiber.StatusInternalServerError, "failed to delete log")
	}

	handler.refreshLearning(c.UserContext(), userID)
	return c.SendStatus(fiber.StatusNoContent)
}
