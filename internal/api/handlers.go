package api

import (
	"errors"
	"time"

	"github.com/terraincognita07/cyclecore/internal/db"
	"github.com/terraincognita07/cyclecore/internal/logger"
	"github.com/terraincognita07/cyclecore/internal/services"
	"gorm.io/gorm"
)

func NewHandler(database *gorm.DB, options HandlerOptions) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if len(options.SigningKey) == 0 {
		return nil, errors.New("signing key is required")
	}
	if options.Knowledge == nil {
		return nil, errors.New("knowledge manager is required")
	}

	location := options.Location
	if location == nil {
		location = time.UTC
	}
	now := options.Now
	if now == nil {
		now = time.Now
	}
	log := options.Logger
	if log == nil {
		log = logger.NewNop()
	}
	rankLimit := options.RankLimit
	if rankLimit <= 0 {
		rankLimit = services.DefaultTipLimit
	}

	repositories := db.NewRepositories(database)
	handler := &Handler{
		signingKey:         options.SigningKey,
		location:           location,
		now:                now,
		log:                log.With("component", "api"),
		repositories:       repositories,
		dayService:         services.NewDayService(repositories.DailyLogs),
		periodService:      services.NewPeriodService(repositories.Periods, repositories.Preferences),
		preferencesService: services.NewPreferencesService(repositories.Preferences),
		statsService:       services.NewStatsService(repositories.Periods, repositories.DailyLogs),
		knowledge:          options.Knowledge,
		rankers:            make(map[string]*services.Ranker),
		rankLimit:          rankLimit,
		lifecycle:          options.Lifecycle,
		generator:          options.Generator,
		authLimiter:        newAttemptLimiter(authFailureLimit, authFailureWindow),
	}
	if handler.generator == nil {
		handler.generator = services.NewGenerator(1, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	}

	for _, language := range options.Knowledge.SupportedLanguages() {
		handler.rankers[language] = services.NewRanker(options.Knowledge.Tips(language), options.Scorer, options.ScorerTimeout)
	}
	return handler, nil
}

func (handler *Handler) today() time.Time {
	return services.DateAtLocation(handler.now(), handler.location)
}

func (handler *Handler) rankerFor(language string) *services.Ranker {
	if ranker, ok := handler.rankers[language]; ok {
		return ranker
	}
	return handler.rankers[handler.knowledge.DefaultLanguage()]
}
