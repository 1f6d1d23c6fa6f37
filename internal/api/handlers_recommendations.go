package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclecore/internal/models"
	"github.com/terraincognita07/cyclecore/internal/services"
)

const maxRecommendationLimit = 20

// GetRecommendations ranks tips for the request. Phase defaults to the
// phase predicted for the requested day (today unless given). The feature
// vector is built from that day's log unless the client sends one.
func (handler *Handler) GetRecommendations(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	input := recommendationInput{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}
	if input.Limit < 0 || input.Limit > maxRecommendationLimit {
		return apiError(c, fiber.StatusBadRequest, "limit must be between 0 and 20")
	}
	day := handler.today()
	if strings.TrimSpace(input.Date) != "" {
		parsed, err := handler.parseDay(input.Date)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid date")
		}
		day = parsed
	}

	var clientFeatures *models.FeatureVector
	if input.Features != nil {
		vector, err := services.ParseFeatureVector(input.Features)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "features must hold 39 values")
		}
		clientFeatures = &vector
	}

	data, err := handler.loadCycleData(userID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load cycle data")
	}

	phase := input.Phase
	if phase == "" && data.prefs.HasAnchor() {
		dayInCycle := services.DayInCycle(*data.prefs.LastPeriodStart, day, data.prefs.AvgCycleDays)
		phase = services.ClassifyPhase(dayInCycle, data.prefs.AvgCycleDays, data.prefs.AvgPeriodDays)
	}
	symptoms := input.Symptoms
	mood := input.Mood
	if dayLog := data.logForDay(services.DayKey(day)); dayLog != nil {
		if len(symptoms) == 0 {
			symptoms = services.SymptomIDs(dayLog.Symptoms)
		}
		if mood == "" {
			mood = dayLog.Mood
		}
	}

	fallback := true
	if input.IncludeGeneralFallback != nil {
		fallback = *input.IncludeGeneralFallback
	}
	limit := input.Limit
	if limit == 0 {
		limit = handler.rankLimit
	}

	features := handler.featuresFor(data, day)
	if clientFeatures != nil {
		features = *clientFeatures
	}
	language := currentLanguage(c)
	ranked := handler.rankerFor(language).Rank(c.UserContext(), symptoms, services.RankOptions{
		Phase:                  phase,
		Mood:                   mood,
		IncludeGeneralFallback: fallback,
		Limit:                  limit,
		Features:               &features,
	})

	version, lastUpdated := handler.knowledge.Version(language)
	return c.JSON(fiber.Map{
		"date":            services.DayKey(day),
		"phase":           phase,
		"language":        language,
		"catalogVersion":  version,
		"catalogUpdated":  lastUpdated,
		"recommendations": ranked,
	})
}

// GetTips lists the catalog, narrowed to ?tags= when given.
func (handler *Handler) GetTips(c *fiber.Ctx) error {
	language := currentLanguage(c)
	tips := handler.knowledge.Tips(language)
	if tags := queryTags(c); len(tags) > 0 {
		tips = handler.knowledge.TipsByTags(language, tags)
	}
	return c.JSON(fiber.Map{
		"language": language,
		"tips":     tips,
	})
}

func (handler *Handler) GetTip(c *fiber.Ctx) error {
	language := currentLanguage(c)
	tip, ok := handler.knowledge.TipByID(language, c.Params("id"))
	if !ok {
		return apiError(c, fiber.StatusNotFound, "tip not found")
	}
	return c.JSON(tip)
}

func (handler *Handler) GetFAQ(c *fiber.Ctx) error {
	language := currentLanguage(c)
	faq := handler.knowledge.FAQByTags(language, queryTags(c))
	if faq == nil {
		faq = []models.FAQRecord{}
	}
	return c.JSON(fiber.Map{
		"language": language,
		"faq":      faq,
	})
}

func queryTags(c *fiber.Ctx) []string {
	tags := make([]string, 0)
	for _, raw := range strings.Split(c.Query("tags"), ",") {
		if tag := strings.TrimSpace(raw); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
