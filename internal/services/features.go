package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/cyclecore/internal/models"
)

// Feature vector layout. Every block size comes from the fixed enum arrays
// in models, so adding a symptom or mood moves the offsets and fails the
// length check below at compile time.
const (
	FeatureDayInCycle     = 0
	FeaturePhaseOffset    = FeatureDayInCycle + 1
	FeatureSymptomOffset  = FeaturePhaseOffset + len(models.AllPhases)
	FeatureAvgSeverity    = FeatureSymptomOffset + len(models.AllSymptoms)
	FeatureMoodOffset     = FeatureAvgSeverity + 1
	FeatureFlowOffset     = FeatureMoodOffset + len(models.AllMoods)
	FeatureAvgCycleDays   = FeatureFlowOffset + len(models.AllFlows)
	FeatureAvgPeriodDays  = FeatureAvgCycleDays + 1
	featureLayoutEnd      = FeatureAvgPeriodDays + 1
	FeatureMenstrualPhase = FeaturePhaseOffset
)

var (
	_ [featureLayoutEnd - models.FeatureLength]struct{}
	_ [models.FeatureLength - featureLayoutEnd]struct{}
)

const (
	cycleDaysScale  = 35.0
	periodDaysScale = 7.0
)

var ErrFeatureLength = errors.New("feature vector has wrong length")

type FeatureInput struct {
	Log     *models.DailyLog
	Prefs   models.CyclePreferences
	Periods []models.PeriodSpan
	AsOf    time.Time
}

// BuildFeatures encodes one day. Missing data encodes as zero: no log zeroes
// every log slot, no anchor zeroes the day and phase slots. The cycle-stat
// slots always use the defaulted preferences.
func BuildFeatures(input FeatureInput) models.FeatureVector {
	var vector models.FeatureVector
	prefs := input.Prefs.Normalized()

	if prefs.HasAnchor() {
		dayInCycle := DayInCycle(*prefs.LastPeriodStart, input.AsOf, prefs.AvgCycleDays)
		vector[FeatureDayInCycle] = float64(dayInCycle) / float64(prefs.AvgCycleDays)
		phase := ClassifyPhase(dayInCycle, prefs.AvgCycleDays, prefs.AvgPeriodDays)
		if index, ok := phase.Index(); ok {
			vector[FeaturePhaseOffset+index] = 1
		}
	}

	if input.Log != nil {
		encodeLogFeatures(&vector, *input.Log)
	}

	vector[FeatureAvgCycleDays] = float64(prefs.AvgCycleDays) / cycleDaysScale
	vector[FeatureAvgPeriodDays] = float64(prefs.AvgPeriodDays) / periodDaysScale
	return vector
}

func encodeLogFeatures(vector *models.FeatureVector, entry models.DailyLog) {
	symptoms := NormalizeSymptomEntries(entry.Symptoms)
	for _, symptom := range symptoms {
		index, _ := symptom.ID.Index()
		vector[FeatureSymptomOffset+index] = 1
	}
	if len(symptoms) > 0 {
		vector[FeatureAvgSeverity] = float64(SumSymptomSeverity(symptoms)) / float64(len(symptoms)) / float64(models.MaxSymptomSeverity)
	}

	if index, ok := entry.Mood.Index(); ok {
		vector[FeatureMoodOffset+index] = 1
	}
	if index, ok := entry.Flow.Index(); ok {
		vector[FeatureFlowOffset+index] = 1
	}
}

// ParseFeatureVector validates a vector supplied from outside the process.
func ParseFeatureVector(values []float64) (models.FeatureVector, error) {
	var vector models.FeatureVector
	if len(values) != models.FeatureLength {
		return vector, fmt.Errorf("%w: got %d, want %d", ErrFeatureLength, len(values), models.FeatureLength)
	}
	copy(vector[:], values)
	return vector, nil
}
