package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// LanguageMiddleware picks the catalog language from ?lang= first, then the
// Accept-Language header.
func (handler *Handler) LanguageMiddleware(c *fiber.Ctx) error {
	language := handler.knowledge.DefaultLanguage()
	if requested := strings.TrimSpace(c.Query(languageQueryParam)); requested != "" {
		language = handler.knowledge.NormalizeLanguage(requested)
	} else if header := c.Get(fiber.HeaderAcceptLanguage); header != "" {
		language = handler.knowledge.DetectFromAcceptLanguage(header)
	}
	c.Locals(contextLanguageKey, language)
	c.Set(fiber.HeaderContentLanguage, language)
	return c.Next()
}
