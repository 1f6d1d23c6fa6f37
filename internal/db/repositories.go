package db

import (
	"time"

	"gorm.io/gorm"
)

type Repositories struct {
	Preferences   *PreferencesRepository
	Periods       *PeriodRepository
	DailyLogs     *DailyLogRepository
	LearningState *LearningStateRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Preferences:   NewPreferencesRepository(database),
		Periods:       NewPeriodRepository(database),
		DailyLogs:     NewDailyLogRepository(database),
		LearningState: NewLearningStateRepository(database),
	}
}

// storageDay pins a calendar date to UTC midnight so equal days compare equal
// in SQLite regardless of the caller's location.
func storageDay(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func storageDayPtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	day := storageDay(*value)
	return &day
}
