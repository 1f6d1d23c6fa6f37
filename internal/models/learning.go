package models

import "time"

const InitialModelVersion = "1.0.0"

type SignalAccuracy struct {
	PeriodPrediction    float64 `json:"periodPrediction"`
	OvulationPrediction float64 `json:"ovulationPrediction"`
	SymptomPrediction   float64 `json:"symptomPrediction"`
	Overall             float64 `json:"overall"`
}

func InitialSignalAccuracy() SignalAccuracy {
	return SignalAccuracy{
		PeriodPrediction:    0.5,
		OvulationPrediction: 0.5,
		SymptomPrediction:   0.5,
		Overall:             0.5,
	}
}

type SyntheticUser struct {
	Periods []PeriodSpan     `json:"periods"`
	Logs    []DailyLog       `json:"logs"`
	Prefs   CyclePreferences `json:"prefs"`
}

// LearningState is persisted as a single opaque record per user. The
// synthetic population is shared by every user and stored once in
// SyntheticPopulationRecord, so per-user records leave SyntheticData empty.
type LearningState struct {
	UserLogs      []DailyLog       `json:"userLogs"`
	UserPeriods   []PeriodSpan     `json:"userPeriods"`
	UserPrefs     CyclePreferences `json:"userPrefs"`
	SyntheticData []SyntheticUser  `json:"syntheticData,omitempty"`
	ModelVersion  string           `json:"modelVersion"`
	LastTraining  time.Time        `json:"lastTraining"`
	Accuracy      SignalAccuracy   `json:"accuracy"`
}

// Clone copies the top-level slices. Updates work on a clone until commit.
func (state LearningState) Clone() LearningState {
	clone := state
	clone.UserLogs = append([]DailyLog(nil), state.UserLogs...)
	clone.UserPeriods = append([]PeriodSpan(nil), state.UserPeriods...)
	clone.SyntheticData = append([]SyntheticUser(nil), state.SyntheticData...)
	return clone
}

type LearningStateRecord struct {
	UserID    uint   `gorm:"primaryKey;autoIncrement:false"`
	Payload   string `gorm:"not null"`
	UpdatedAt time.Time
}

type SyntheticPopulationRecord struct {
	Key       string `gorm:"column:population_key;primaryKey"`
	Payload   string `gorm:"not null"`
	CreatedAt time.Time
}
