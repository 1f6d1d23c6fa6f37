package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclecore/internal/services"
)

func (handler *Handler) GetPeriods(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	periods, err := handler.periodService.List(userID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load periods")
	}
	return c.JSON(periods)
}

func (handler *Handler) StartPeriod(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	input := periodInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	start, err := handler.parseDay(input.Start)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid start date")
	}
	end, err := handler.parseOptionalDay(input.End)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid end date")
	}

	span, err := handler.periodService.StartPeriod(userID, start, end, handler.today())
	if err != nil {
		return periodError(c, err)
	}

	handler.refreshLearning(c.UserContext(), userID)
	return c.Status(fiber.StatusCreated).JSON(span)
}

func (handler *Handler) EndPeriod(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	input := periodEndInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	end, err := handler.parseDay(input.End)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid end date")
	}

	span, err := handler.periodService.EndPeriod(userID, strings.TrimSpace(c.Params("id")), end, handler.today())
	if err != nil {
		return periodError(c, err)
	}

	handler.refreshLearning(c.UserContext(), userID)
	return c.JSON(span)
}

func (handler *Handler) DeletePeriod(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if err := handler.periodService.DeletePeriod(userID, strings.TrimSpace(c.Params("id"))); err != nil {
		return periodError(c, err)
	}

	handler.refreshLearning(c.UserContext(), userID)
	return c.SendStatus(fiber.StatusNoContent)
}

func periodError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrPeriodNotFound):
		return apiError(c, fiber.StatusNotFound, "period not found")
	case errors.Is(err, services.ErrPeriodOverlap):
		return apiError(c, fiber.StatusConflict, "period overlaps another period")
	case errors.Is(err, services.ErrPeriodInFuture):
		return apiError(c, fiber.StatusBadRequest, "period dates cannot be in the future")
	case errors.Is(err, services.ErrPeriodEndBeforeStart):
		return apiError(c, fiber.StatusBadRequest, "period end is before start")
	default:
		return apiError(c, fiber.StatusInternalServerError, "failed to update periods")
	}
}
