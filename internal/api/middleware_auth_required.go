package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclecore/internal/security"
)

const (
	authFailureLimit  = 20
	authFailureWindow = 15 * time.Minute
)

var errMissingBearer = errors.New("missing bearer token")

// AuthRequired accepts "Authorization: Bearer <jwt>" and stores the user id
// and role in the request locals.
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	limiterKey := requestLimiterKey(c)
	now := handler.now()
	if handler.authLimiter.blocked(limiterKey, now) {
		return apiError(c, fiber.StatusTooManyRequests, "too many failed attempts")
	}

	claims, err := handler.authenticateRequest(c)
	if err != nil {
		handler.authLimiter.recordFailure(limiterKey, now)
		handler.log.Debug("auth rejected", "path", c.Path(), "reason", err.Error())
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	handler.authLimiter.reset(limiterKey)
	c.Locals(contextUserIDKey, claims.UserID)
	c.Locals(contextRoleKey, claims.Role)
	return c.Next()
}

func (handler *Handler) authenticateRequest(c *fiber.Ctx) (security.AuthClaims, error) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	scheme, rawToken, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(rawToken) == "" {
		return security.AuthClaims{}, errMissingBearer
	}
	return security.ParseToken(handler.signingKey, rawToken, handler.now())
}
