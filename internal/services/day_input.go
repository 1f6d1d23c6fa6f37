package services

import (
	"errors"
	"strings"

	"github.com/terraincognita07/cyclecore/internal/models"
)

const MaxDayNotesLength = 2000

var (
	ErrInvalidDayFlow = errors.New("invalid day flow")
	ErrInvalidDayMood = errors.New("invalid day mood")
)

type DayEntryInput struct {
	Mood     models.Mood           `json:"mood"`
	Symptoms []models.SymptomEntry `json:"symptoms"`
	Habits   []models.Habit        `json:"habits"`
	Flow     models.Flow           `json:"flow"`
	Note     string                `json:"note"`
}

// NormalizeDayEntryInput rejects unknown moods and flows. Symptom entries and
// habits are normalized rather than rejected.
func NormalizeDayEntryInput(input DayEntryInput) (DayEntryInput, error) {
	if !IsValidDayFlow(input.Flow) {
		return input, ErrInvalidDayFlow
	}
	if input.Mood != "" && !input.Mood.IsKnown() {
		return input, ErrInvalidDayMood
	}
	input.Symptoms = NormalizeSymptomEntries(input.Symptoms)
	input.Habits = NormalizeHabits(input.Habits)
	input.Note = TrimDayNotes(strings.TrimSpace(input.Note))
	return input, nil
}

func IsValidDayFlow(flow models.Flow) bool {
	if flow == models.FlowNone {
		return true
	}
	_, ok := flow.Index()
	return ok
}

func TrimDayNotes(value string) string {
	if len(value) <= MaxDayNotesLength {
		return value
	}
	return value[:MaxDayNotesLength]
}
