package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api", handler.AuthRequired, handler.LanguageMiddleware)

	api.Get("/preferences", handler.GetPreferences)
	api.Put("/preferences", handler.UpdatePreferences)

	periods := api.Group("/periods")
	periods.Get("", handler.GetPeriods)
	periods.Post("", handler.StartPeriod)
	periods.Post("/:id/end", handler.EndPeriod)
	periods.Delete("/:id", handler.DeletePeriod)

	logs := api.Group("/logs")
	logs.Get("", handler.GetLogs)
	logs.Get("/:date", handler.GetLog)
	logs.Put("/:date", handler.UpsertLog)
	logs.Delete("/:date", handler.DeleteLog)

	api.Get("/predictions", handler.GetPredictions)
	api.Get("/cycle-window", handler.GetCycleWindow)
	api.Get("/stats", handler.GetStats)
	api.Get("/features", handler.GetFeatures)
	api.Post("/recommendations", handler.GetRecommendations)
	api.Get("/tips", handler.GetTips)
	api.Get("/tips/:id", handler.GetTip)
	api.Get("/faq", handler.GetFAQ)

	learning := api.Group("/learning")
	learning.Get("", handler.GetLearning)
	learning.Post("/update", handler.UpdateLearning)

	api.Get("/synthetic/training-set", handler.AdminOnly, handler.GetSyntheticTrainingSet)
}

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	return apiError(c, fiber.StatusNotFound, "not found")
}
