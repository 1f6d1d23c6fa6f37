package services

import (
	"time"

	"github.com/terraincognita07/cyclecore/internal/models"
)

func day(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

func timePtr(value time.Time) *time.Time {
	return &value
}

func closedSpan(id string, start time.Time, end time.Time) models.PeriodSpan {
	return models.PeriodSpan{ID: id, Start: start, End: timePtr(end)}
}
