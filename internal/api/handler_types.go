package api

import (
	"time"

	"github.com/terraincognita07/cyclecore/internal/db"
	"github.com/terraincognita07/cyclecore/internal/knowledge"
	"github.com/terraincognita07/cyclecore/internal/logger"
	"github.com/terraincognita07/cyclecore/internal/models"
	"github.com/terraincognita07/cyclecore/internal/services"
)

type Handler struct {
	signingKey []byte
	location   *time.Location
	now        func() time.Time
	log        *logger.Logger

	repositories       *db.Repositories
	dayService         *services.DayService
	periodService      *services.PeriodService
	preferencesService *services.PreferencesService
	statsService       *services.StatsService

	knowledge *knowledge.Manager
	rankers   map[string]*services.Ranker
	rankLimit int

	lifecycle *services.LifecycleManager
	generator *services.Generator

	authLimiter *attemptLimiter
}

// HandlerOptions carries everything NewHandler cannot build from the
// database. Lifecycle may be nil when learning is disabled; Scorer may be nil
// when no external model is available.
type HandlerOptions struct {
	SigningKey    []byte
	Location      *time.Location
	Knowledge     *knowledge.Manager
	Lifecycle     *services.LifecycleManager
	Generator     *services.Generator
	Scorer        services.Scorer
	ScorerTimeout time.Duration
	RankLimit     int
	Logger        *logger.Logger
	Now           func() time.Time
}

type periodInput struct {
	Start string  `json:"start"`
	End   *string `json:"end"`
}

type periodEndInput struct {
	End string `json:"end"`
}

type preferencesPayload struct {
	AvgCycleDays    int     `json:"avgCycleDays"`
	AvgPeriodDays   int     `json:"avgPeriodDays"`
	LastPeriodStart *string `json:"lastPeriodStart"`
}

type recommendationInput struct {
	Symptoms               []models.Symptom `json:"symptoms"`
	Phase                  models.Phase     `json:"phase"`
	Mood                   models.Mood      `json:"mood"`
	Date                   string           `json:"date"`
	IncludeGeneralFallback *bool            `json:"includeGeneralFallback"`
	Limit                  int              `json:"limit"`
	Features               []float64        `json:"features"`
}

type cycleWindowResponse struct {
	LastPeriodStart      string       `json:"lastPeriodStart"`
	NextPeriodStart      string       `json:"nextPeriodStart"`
	NextPeriodEnd        string       `json:"nextPeriodEnd"`
	OvulationDate        string       `json:"ovulationDate"`
	FertilityWindowStart string       `json:"fertilityWindowStart"`
	FertilityWindowEnd   string       `json:"fertilityWindowEnd"`
	DayInCycle           int          `json:"dayInCycle"`
	Phase                models.Phase `json:"phase"`
}
