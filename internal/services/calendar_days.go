package services

import (
	"time"

	"github.com/terraincognita07/cyclecore/internal/models"
)

type PredictionInput struct {
	LastPeriodStart *time.Time
	AvgCycleDays    int
	AvgPeriodDays   int
	Periods         []models.PeriodSpan
	LoggedDates     []time.Time
}

func PredictionInputFromPreferences(prefs models.CyclePreferences, periods []models.PeriodSpan, logs []models.DailyLog) PredictionInput {
	loggedDates := make([]time.Time, 0, len(logs))
	for _, entry := range logs {
		loggedDates = append(loggedDates, entry.Date)
	}
	return PredictionInput{
		LastPeriodStart: prefs.LastPeriodStart,
		AvgCycleDays:    prefs.AvgCycleDays,
		AvgPeriodDays:   prefs.AvgPeriodDays,
		Periods:         periods,
		LoggedDates:     loggedDates,
	}
}

// PredictCycle returns one prediction per calendar day in [start, end].
// Without an anchor date nothing can be forecast and the result is empty.
func PredictCycle(input PredictionInput, start time.Time, end time.Time, now time.Time) []models.DayPrediction {
	prefs := models.CyclePreferences{
		AvgCycleDays:    input.AvgCycleDays,
		AvgPeriodDays:   input.AvgPeriodDays,
		LastPeriodStart: input.LastPeriodStart,
	}.Normalized()

	window, ok := BuildCycleWindow(prefs)
	if !ok {
		return []models.DayPrediction{}
	}

	start = dateOnly(start)
	end = dateOnly(end)
	if end.Before(start) {
		return []models.DayPrediction{}
	}

	loggedByDate := make(map[string]bool, len(input.LoggedDates))
	for _, logged := range input.LoggedDates {
		loggedByDate[DayKey(logged)] = true
	}
	todayKey := DayKey(now)

	days := make([]models.DayPrediction, 0, DaysBetween(start, end)+1)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format(DayLayout)
		cycleDay := DayInCycle(window.LastPeriodStart, day, prefs.AvgCycleDays)

		days = append(days, models.DayPrediction{
			Date:                 day,
			DateString:           key,
			Phase:                ClassifyPhaseFixedDays(cycleDay),
			IsMenstrual:          isRecordedPeriodDay(day, input.Periods, prefs.AvgPeriodDays),
			IsPredictedMenstrual: betweenInclusive(day, window.NextPeriodStart, window.NextPeriodEnd),
			IsFertile:            betweenInclusive(day, window.FertilityWindowStart, window.FertilityWindowEnd),
			IsOvulation:          key == DayKey(window.OvulationDate),
			IsToday:              key == todayKey,
			HasLog:               loggedByDate[key],
		})
	}
	return days
}

// isRecordedPeriodDay treats an open span as lasting avgPeriodDays.
func isRecordedPeriodDay(day time.Time, periods []models.PeriodSpan, avgPeriodDays int) bool {
	for _, span := range periods {
		if span.Start.IsZero() {
			continue
		}
		end := addDays(span.Start, avgPeriodDays-1)
		if span.End != nil {
			end = *span.End
		}
		if betweenInclusive(day, span.Start, end) {
			return true
		}
	}
	return false
}
