package api

import "github.com/gofiber/fiber/v2"

const (
	contextUserIDKey   = "current_user_id"
	contextRoleKey     = "current_role"
	contextLanguageKey = "current_language"
	languageQueryParam = "lang"
)

func currentUserID(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals(contextUserIDKey).(uint)
	return userID, ok && userID != 0
}

func currentRole(c *fiber.Ctx) string {
	role, _ := c.Locals(contextRoleKey).(string)
	return role
}

func currentLanguage(c *fiber.Ctx) string {
	language, _ := c.Locals(contextLanguageKey).(string)
	return language
}
