package api

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclecore/internal/services"
)

const (
	defaultTrainingSetUsers  = 5
	maxTrainingSetUsers      = 50
	defaultTrainingSetCycles = 3
	maxTrainingSetCycles     = 12
)

// refreshLearning hands the user's current data to the lifecycle manager and
// starts a model refresh in the background when one is due. Failures are
// logged only; the write that triggered them has already succeeded.
func (handler *Handler) refreshLearning(ctx context.Context, userID uint) {
	if handler.lifecycle == nil {
		return
	}
	data, err := handler.loadCycleData(userID)
	if err != nil {
		handler.log.Warn("learning refresh skipped", "user_id", userID, "err", err)
		return
	}
	if err := handler.lifecycle.AddUserData(ctx, userID, data.logs, data.periods, data.prefs); err != nil {
		handler.log.Warn("learning data update failed", "user_id", userID, "err", err)
		return
	}

	go func() {
		result, attempted := handler.lifecycle.CheckAndUpdate(context.Background(), userID)
		if !attempted {
			return
		}
		if !result.Success {
			handler.log.Warn("background model update failed", "user_id", userID, "errors", result.Errors)
			return
		}
		handler.log.Info("background model updated", "user_id", userID, "version", result.ModelVersion)
	}()
}

func (handler *Handler) GetLearning(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if handler.lifecycle == nil {
		return apiError(c, fiber.StatusServiceUnavailable, "learning is disabled")
	}

	stats, found, err := handler.lifecycle.Stats(userID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load learning state")
	}
	if !found {
		return c.JSON(fiber.Map{"initialized": false})
	}
	performance, _, err := handler.lifecycle.Performance(userID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load learning state")
	}
	shouldUpdate, err := handler.lifecycle.ShouldUpdate(userID, handler.now())
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load learning state")
	}
	return c.JSON(fiber.Map{
		"initialized":  true,
		"stats":        stats,
		"performance":  performance,
		"shouldUpdate": shouldUpdate,
	})
}

// UpdateLearning runs a model refresh now. A refresh already in flight for
// the user is reported as a conflict rather than waited for.
func (handler *Handler) UpdateLearning(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if handler.lifecycle == nil {
		return apiError(c, fiber.StatusServiceUnavailable, "learning is disabled")
	}

	result := handler.lifecycle.Update(c.UserContext(), userID)
	switch {
	case errors.Is(result.Err, services.ErrAlreadyTraining):
		return c.Status(fiber.StatusConflict).JSON(result)
	case errors.Is(result.Err, services.ErrNotEligible):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(result)
	case result.Err != nil:
		handler.log.Warn("model update failed", "user_id", userID, "err", result.Err)
		return c.Status(fiber.StatusInternalServerError).JSON(result)
	}
	return c.JSON(result)
}

// GetSyntheticTrainingSet exports a freshly generated population as a
// training set. ?users= and ?cycles= size it; ?seed= makes it reproducible.
func (handler *Handler) GetSyntheticTrainingSet(c *fiber.Ctx) error {
	users, err := boundedQueryInt(c, "users", defaultTrainingSetUsers, 1, maxTrainingSetUsers)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "users must be between 1 and 50")
	}
	cycles, err := boundedQueryInt(c, "cycles", defaultTrainingSetCycles, 1, maxTrainingSetCycles)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "cycles must be between 1 and 12")
	}

	generator := handler.generator
	if raw := c.Query("seed"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid seed")
		}
		generator = services.NewGenerator(seed, generator.Start)
	}

	population, err := generator.GenerateUsers(c.UserContext(), users, cycles)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to generate population")
	}
	set := services.BuildTrainingSet(population)
	if err := services.SelfTest(population, set); err != nil {
		handler.log.Error("synthetic self-test failed", "err", err)
		return apiError(c, fiber.StatusInternalServerError, "synthetic self-test failed")
	}
	return c.JSON(fiber.Map{
		"users": users,
		"rows":  set.Rows(),
		"set":   set,
	})
}

func boundedQueryInt(c *fiber.Ctx, key string, fallback int, low int, high int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if value < low || value > high {
		return 0, errors.New("out of range")
	}
	return value, nil
}
