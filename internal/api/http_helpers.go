package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclecore/internal/services"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func (handler *Handler) parseDay(raw string) (time.Time, error) {
	return services.ParseDay(raw, handler.location)
}

func (handler *Handler) parseOptionalDay(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	day, err := handler.parseDay(*raw)
	if err != nil {
		return nil, err
	}
	return &day, nil
}

// parseRange reads ?from=&to= with the given defaults.
func (handler *Handler) parseRange(c *fiber.Ctx, defaultFrom time.Time, defaultTo time.Time) (time.Time, time.Time, error) {
	from, to := defaultFrom, defaultTo
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		parsed, err := handler.parseDay(raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		parsed, err := handler.parseDay(raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed
	}
	return from, to, nil
}
