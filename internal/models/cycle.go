package models

import "time"

const (
	DefaultCycleLength  = 28
	DefaultPeriodLength = 5
)

// CyclePreferences is the user's cycle baseline. LastPeriodStart anchors
// every prediction; without it nothing can be forecast.
type CyclePreferences struct {
	UserID          uint       `gorm:"primaryKey;autoIncrement:false" json:"-"`
	AvgCycleDays    int        `gorm:"not null;default:28" json:"avgCycleDays"`
	AvgPeriodDays   int        `gorm:"not null;default:5" json:"avgPeriodDays"`
	LastPeriodStart *time.Time `gorm:"type:date" json:"lastPeriodStart,omitempty"`
	UpdatedAt       time.Time  `json:"-"`
}

func DefaultCyclePreferences() CyclePreferences {
	return CyclePreferences{
		AvgCycleDays:  DefaultCycleLength,
		AvgPeriodDays: DefaultPeriodLength,
	}
}

// Normalized returns a copy with defaults filled in for non-positive lengths.
func (prefs CyclePreferences) Normalized() CyclePreferences {
	if prefs.AvgCycleDays <= 0 {
		prefs.AvgCycleDays = DefaultCycleLength
	}
	if prefs.AvgPeriodDays <= 0 {
		prefs.AvgPeriodDays = DefaultPeriodLength
	}
	return prefs
}

func (prefs CyclePreferences) HasAnchor() bool {
	return prefs.LastPeriodStart != nil && !prefs.LastPeriodStart.IsZero()
}

// PeriodSpan is one recorded period. End is nil while the period is ongoing;
// both lengths are filled in once it is closed.
type PeriodSpan struct {
	ID               string     `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"not null;index" json:"-"`
	Start            time.Time  `gorm:"type:date;not null" json:"start"`
	End              *time.Time `gorm:"type:date" json:"end,omitempty"`
	CycleLengthDays  *int       `json:"cycleLengthDays,omitempty"`
	PeriodLengthDays *int       `json:"periodLengthDays,omitempty"`
	CreatedAt        time.Time  `json:"-"`
	UpdatedAt        time.Time  `json:"-"`
}

func (span PeriodSpan) IsOpen() bool {
	return span.End == nil
}

func (span PeriodSpan) IsCompleted() bool {
	return span.End != nil && span.CycleLengthDays != nil
}
