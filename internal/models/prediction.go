package models

import "time"

type DayPrediction struct {
	Date                 time.Time `json:"-"`
	DateString           string    `json:"date"`
	Phase                Phase     `json:"phase"`
	IsMenstrual          bool      `json:"isMenstrual"`
	IsPredictedMenstrual bool      `json:"isPredictedMenstrual"`
	IsFertile            bool      `json:"isFertile"`
	IsOvulation          bool      `json:"isOvulation"`
	IsToday              bool      `json:"isToday"`
	HasLog               bool      `json:"hasLog"`
}

type CycleStats struct {
	AvgCycleLength     int     `json:"avgCycleLength"`
	AvgPeriodLength    int     `json:"avgPeriodLength"`
	TotalCycles        int     `json:"totalCycles"`
	LastCycleLength    *int    `json:"lastCycleLength,omitempty"`
	CycleVariability   float64 `json:"cycleVariability"`
	PredictionAccuracy int     `json:"predictionAccuracy"`
}

type MoodPoint struct {
	Date      string `json:"date"`
	Mood      Mood   `json:"mood"`
	MoodScore int    `json:"moodScore"`
}
