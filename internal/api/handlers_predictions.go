package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclecore/internal/models"
	"github.com/terraincognita07/cyclecore/internal/services"
)

const maxPredictionRangeDays = 366

func (handler *Handler) GetPredictions(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	today := handler.today()
	monthStart := today.AddDate(0, 0, 1-today.Day())
	from, to, err := handler.parseRange(c, monthStart, monthStart.AddDate(0, 2, -1))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid range")
	}
	if services.DaysBetween(from, to) > maxPredictionRangeDays {
		return apiError(c, fiber.StatusBadRequest, "range too large")
	}

	data, err := handler.loadCycleData(userID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load cycle data")
	}

	input := services.PredictionInputFromPreferences(data.prefs, data.periods, data.logs)
	days := services.PredictCycle(input, from, to, handler.now().In(handler.location))
	return c.JSON(fiber.Map{
		"from": services.DayKey(from),
		"to":   services.DayKey(to),
		"days": days,
	})
}

func (handler *Handler) GetCycleWindow(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	prefs, err := handler.preferencesService.Load(userID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load preferences")
	}

	window, ok := services.BuildCycleWindow(prefs)
	if !ok {
		return apiError(c, fiber.StatusNotFound, "no last period start recorded")
	}
	dayInCycle := services.DayInCycle(window.LastPeriodStart, handler.today(), prefs.AvgCycleDays)
	return c.JSON(cycleWindowResponse{
		LastPeriodStart:      services.DayKey(window.LastPeriodStart),
		NextPeriodStart:      services.DayKey(window.NextPeriodStart),
		NextPeriodEnd:        services.DayKey(window.NextPeriodEnd),
		OvulationDate:        services.DayKey(window.OvulationDate),
		FertilityWindowStart: services.DayKey(window.FertilityWindowStart),
		FertilityWindowEnd:   services.DayKey(window.FertilityWindowEnd),
		DayInCycle:           dayInCycle,
		Phase:                services.ClassifyPhase(dayInCycle, prefs.AvgCycleDays, prefs.AvgPeriodDays),
	})
}

func (handler *Handler) GetFeatures(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	day := handler.today()
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		parsed, err := handler.parseDay(raw)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid date")
		}
		day = parsed
	}

	data, err := handler.loadCycleData(userID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load cycle data")
	}
	vector := handler.featuresFor(data, day)
	return c.JSON(fiber.Map{
		"date":     services.DayKey(day),
		"length":   models.FeatureLength,
		"features": vector.Slice(),
	})
}

func (handler *Handler) featuresFor(data cycleData, day time.Time) models.FeatureVector {
	return services.BuildFeatures(services.FeatureInput{
		Log:     data.logForDay(services.DayKey(day)),
		Prefs:   data.prefs,
		Periods: data.periods,
		AsOf:    day,
	})
}
