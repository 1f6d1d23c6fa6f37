package services

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/terraincognita07/cyclecore/internal/models"
)

const (
	lutealPhaseDays   = 14
	fertileDaysBefore = 5
	fertileDaysAfter  = 1
)

var ErrPeriodEndBeforeStart = errors.New("period end is before start")

// CycleWindow is the forecast for the cycle anchored at LastPeriodStart.
type CycleWindow struct {
	LastPeriodStart      time.Time
	NextPeriodStart      time.Time
	NextPeriodEnd        time.Time
	OvulationDate        time.Time
	FertilityWindowStart time.Time
	FertilityWindowEnd   time.Time
}

func BuildCycleWindow(prefs models.CyclePreferences) (CycleWindow, bool) {
	if !prefs.HasAnchor() {
		return CycleWindow{}, false
	}
	prefs = prefs.Normalized()

	anchor := dateOnly(*prefs.LastPeriodStart)
	ovulation := addDays(anchor, prefs.AvgCycleDays-lutealPhaseDays)
	nextStart := addDays(anchor, prefs.AvgCycleDays)
	return CycleWindow{
		LastPeriodStart:      anchor,
		NextPeriodStart:      nextStart,
		NextPeriodEnd:        addDays(nextStart, prefs.AvgPeriodDays-1),
		OvulationDate:        ovulation,
		FertilityWindowStart: addDays(ovulation, -fertileDaysBefore),
		FertilityWindowEnd:   addDays(ovulation, fertileDaysAfter),
	}, true
}

// ClosePeriodSpan sets End and PeriodLengthDays on an open span. The cycle
// length stays unset until the next span starts.
func ClosePeriodSpan(span models.PeriodSpan, end time.Time) (models.PeriodSpan, error) {
	end = dateOnly(end)
	if DaysBetween(span.Start, end) < 0 {
		return span, ErrPeriodEndBeforeStart
	}
	periodLength := DaysBetween(span.Start, end) + 1
	span.End = &end
	span.PeriodLengthDays = &periodLength
	return span, nil
}

// RecomputeCycleLengths sorts spans by start and sets each closed span's
// cycle length to the gap before the following span. The newest span has no
// successor and keeps no cycle length.
func RecomputeCycleLengths(periods []models.PeriodSpan) []models.PeriodSpan {
	sorted := make([]models.PeriodSpan, 0, len(periods))
	sorted = append(sorted, periods...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	for index := range sorted {
		sorted[index].CycleLengthDays = nil
		if sorted[index].End != nil {
			periodLength := DaysBetween(sorted[index].Start, *sorted[index].End) + 1
			sorted[index].PeriodLengthDays = &periodLength
		}
		if index+1 >= len(sorted) || sorted[index].End == nil {
			continue
		}
		cycleLength := DaysBetween(sorted[index].Start, sorted[index+1].Start)
		if cycleLength > 0 {
			sorted[index].CycleLengthDays = &cycleLength
		}
	}
	return sorted
}

func meanInts(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	var total int
	for _, value := range values {
		total += value
	}
	return float64(total) / float64(len(values))
}

// populationStdDev divides by n, not n-1.
func populationStdDev(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := meanInts(values)
	var squares float64
	for _, value := range values {
		diff := float64(value) - mean
		squares += diff * diff
	}
	return math.Sqrt(squares / float64(len(values)))
}

func roundTo(value float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(value*scale) / scale
}
