package api

import (
	"github.com/terraincognita07/cyclecore/internal/models"
	"github.com/terraincognita07/cyclecore/internal/services"
)

type cycleData struct {
	prefs   models.CyclePreferences
	periods []models.PeriodSpan
	logs    []models.DailyLog
}

func (handler *Handler) loadCycleData(userID uint) (cycleData, error) {
	prefs, err := handler.preferencesService.Load(userID)
	if err != nil {
		return cycleData{}, err
	}
	periods, err := handler.periodService.List(userID)
	if err != nil {
		return cycleData{}, err
	}
	logs, err := handler.dayService.FetchAllLogsForUser(userID)
	if err != nil {
		return cycleData{}, err
	}
	return cycleData{prefs: prefs, periods: periods, logs: logs}, nil
}

func (data cycleData) logForDay(dayKey string) *models.DailyLog {
	for index := range data.logs {
		if services.DayKey(data.logs[index].Date) == dayKey {
			return &data.logs[index]
		}
	}
	return nil
}
