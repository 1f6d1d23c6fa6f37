package models

import (
	"encoding/json"
	"math"
	"time"
)

type SymptomEntry struct {
	ID       Symptom `json:"id"`
	Severity int     `json:"severity"`
}

type DailyLog struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;uniqueIndex:uidx_logs_user_date" json:"-"`
	Date      time.Time      `gorm:"type:date;not null;uniqueIndex:uidx_logs_user_date" json:"date"`
	Mood      Mood           `gorm:"not null;default:''" json:"mood,omitempty"`
	Symptoms  []SymptomEntry `gorm:"serializer:json" json:"symptoms"`
	Habits    []Habit        `gorm:"serializer:json" json:"habits,omitempty"`
	Flow      Flow           `gorm:"not null;default:''" json:"flow,omitempty"`
	Note      string         `json:"note,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (entry DailyLog) HasSymptom(symptom Symptom) bool {
	for _, item := range entry.Symptoms {
		if item.ID == symptom && item.Severity > 0 {
			return true
		}
	}
	return false
}

// UnmarshalJSON accepts both {"id": "...", "severity": n} and a bare symptom
// id string. A missing or non-numeric severity decodes as 1.
func (entry *SymptomEntry) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		entry.ID = Symptom(bare)
		entry.Severity = 1
		return nil
	}

	var raw struct {
		ID       Symptom `json:"id"`
		Severity any     `json:"severity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	entry.ID = raw.ID
	entry.Severity = 1
	if value, ok := raw.Severity.(float64); ok && !math.IsNaN(value) {
		entry.Severity = int(math.Round(value))
	}
	return nil
}
