package services

import (
	"errors"
	"time"

	"github.com/terraincognita07/cyclecore/internal/models"
)

const (
	MinCycleLength       = 15
	MaxCycleLength       = 90
	MinPeriodLength      = 1
	MaxPeriodLength      = 14
	minFollicularGapDays = 8
)

var (
	ErrInvalidCycleLength      = errors.New("invalid cycle length")
	ErrInvalidPeriodLength     = errors.New("invalid period length")
	ErrPeriodLongerThanCycle   = errors.New("period length too long for cycle length")
	ErrLastPeriodInFuture      = errors.New("last period start is in the future")
	ErrPreferencesLoadFailed   = errors.New("load preferences failed")
	ErrPreferencesUpdateFailed = errors.New("update preferences failed")
)

type PreferencesStore interface {
	Get(userID uint) (models.CyclePreferences, bool, error)
	Save(prefs *models.CyclePreferences) error
}

type PreferencesInput struct {
	AvgCycleDays    int        `json:"avgCycleDays"`
	AvgPeriodDays   int        `json:"avgPeriodDays"`
	LastPeriodStart *time.Time `json:"-"`
}

func IsValidCycleLength(value int) bool {
	return value >= MinCycleLength && value <= MaxCycleLength
}

func IsValidPeriodLength(value int) bool {
	return value >= MinPeriodLength && value <= MaxPeriodLength
}

// ValidatePreferences checks the bounds a user may set by hand. The cycle
// must leave at least eight non-bleeding days.
func ValidatePreferences(input PreferencesInput, today time.Time) error {
	if !IsValidCycleLength(input.AvgCycleDays) {
		return ErrInvalidCycleLength
	}
	if !IsValidPeriodLength(input.AvgPeriodDays) {
		return ErrInvalidPeriodLength
	}
	if input.AvgCycleDays-input.AvgPeriodDays < minFollicularGapDays {
		return ErrPeriodLongerThanCycle
	}
	if input.LastPeriodStart != nil && DaysBetween(today, *input.LastPeriodStart) > 0 {
		return ErrLastPeriodInFuture
	}
	return nil
}

// SanitizeCycleAndPeriod clamps derived averages into the settable range.
func SanitizeCycleAndPeriod(cycleLength int, periodLength int) (int, int) {
	safeCycleLength := min(max(cycleLength, MinCycleLength), MaxCycleLength)
	safePeriodLength := min(max(periodLength, MinPeriodLength), MaxPeriodLength)
	if safeCycleLength-safePeriodLength < minFollicularGapDays {
		safePeriodLength = max(safeCycleLength-minFollicularGapDays, MinPeriodLength)
	}
	return safeCycleLength, safePeriodLength
}

type PreferencesService struct {
	store PreferencesStore
}

func NewPreferencesService(store PreferencesStore) *PreferencesService {
	return &PreferencesService{store: store}
}

func (service *PreferencesService) Load(userID uint) (models.CyclePreferences, error) {
	prefs, _, err := service.store.Get(userID)
	if err != nil {
		return models.CyclePreferences{}, ErrPreferencesLoadFailed
	}
	prefs.UserID = userID
	return prefs.Normalized(), nil
}

func (service *PreferencesService) Update(userID uint, input PreferencesInput, today time.Time) (models.CyclePreferences, error) {
	if err := ValidatePreferences(input, today); err != nil {
		return models.CyclePreferences{}, err
	}
	prefs := models.CyclePreferences{
		UserID:        userID,
		AvgCycleDays:  input.AvgCycleDays,
		AvgPeriodDays: input.AvgPeriodDays,
	}
	if input.LastPeriodStart != nil {
		anchor := dateOnly(*input.LastPeriodStart)
		prefs.LastPeriodStart = &anchor
	}
	if err := service.store.Save(&prefs); err != nil {
		return models.CyclePreferences{}, ErrPreferencesUpdateFailed
	}
	return prefs, nil
}
