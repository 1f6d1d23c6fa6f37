package services

import (
	"time"

	"github.com/terraincognita07/cyclecore/internal/models"
)

// ClassifyPhase maps a 1-based cycle day to a phase. The ovulation window is
// the two days around the cycle midpoint; cycleLength/2 is real-valued, so
// odd cycle lengths shift the boundaries by half a day.
func ClassifyPhase(dayInCycle int, cycleLength int, periodLength int) models.Phase {
	if cycleLength <= 0 {
		cycleLength = models.DefaultCycleLength
	}
	if periodLength <= 0 {
		periodLength = models.DefaultPeriodLength
	}

	day := float64(dayInCycle)
	midpoint := float64(cycleLength) / 2
	switch {
	case dayInCycle <= periodLength:
		return models.PhaseMenstrual
	case day <= midpoint-1:
		return models.PhaseFollicular
	case day <= midpoint+1:
		return models.PhaseOvulation
	default:
		return models.PhaseLuteal
	}
}

// ClassifyPhaseFixedDays is the day-count table the calendar uses for the
// 28-day default: days 1-5 menstrual, 6-13 follicular, 14-16 ovulation,
// the rest luteal. It ignores the actual cycle and period lengths. The two
// classifiers disagree near the boundaries and are not interchangeable.
func ClassifyPhaseFixedDays(dayInCycle int) models.Phase {
	switch {
	case dayInCycle <= 5:
		return models.PhaseMenstrual
	case dayInCycle <= 13:
		return models.PhaseFollicular
	case dayInCycle <= 16:
		return models.PhaseOvulation
	default:
		return models.PhaseLuteal
	}
}

// DayInCycle returns the 1-based position of date within the cycle anchored
// at anchor, wrapped modulo cycleLength. Dates before the anchor wrap into
// the preceding cycle.
func DayInCycle(anchor, date time.Time, cycleLength int) int {
	if cycleLength <= 0 {
		cycleLength = models.DefaultCycleLength
	}
	offset := DaysBetween(anchor, date) % cycleLength
	if offset < 0 {
		offset += cycleLength
	}
	return offset + 1
}
