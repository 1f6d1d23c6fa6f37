package services

import (
	"errors"
	"time"

	"github.com/terraincognita07/cyclecore/internal/models"
)

var (
	ErrDayEntryLoadFailed   = errors.New("load day entry failed")
	ErrDayEntryUpdateFailed = errors.New("update day entry failed")
	ErrDeleteDayFailed      = errors.New("delete day failed")
	ErrDayEntryNotFound     = errors.New("day entry not found")
)

type DayLogRepository interface {
	ListByUser(userID uint) ([]models.DailyLog, error)
	ListByUserRange(userID uint, from time.Time, to time.Time) ([]models.DailyLog, error)
	FindByDate(userID uint, day time.Time) (models.DailyLog, bool, error)
	Upsert(entry *models.DailyLog) error
	DeleteByDate(userID uint, day time.Time) error
}

type DayService struct {
	logs DayLogRepository
}

func NewDayService(logs DayLogRepository) *DayService {
	return &DayService{logs: logs}
}

func (service *DayService) FetchLogsForUser(userID uint, from time.Time, to time.Time) ([]models.DailyLog, error) {
	if to.Before(from) {
		return []models.DailyLog{}, nil
	}
	return service.logs.ListByUserRange(userID, from, to)
}

func (service *DayService) FetchAllLogsForUser(userID uint) ([]models.DailyLog, error) {
	return service.logs.ListByUser(userID)
}

// FetchLogByDate returns an empty log for day when nothing was recorded.
func (service *DayService) FetchLogByDate(userID uint, day time.Time) (models.DailyLog, bool, error) {
	entry, found, err := service.logs.FindByDate(userID, day)
	if err != nil {
		return models.DailyLog{}, false, ErrDayEntryLoadFailed
	}
	if !found {
		return models.DailyLog{
			UserID:   userID,
			Date:     dateOnly(day),
			Symptoms: []models.SymptomEntry{},
		}, false, nil
	}
	return entry, true, nil
}

func (service *DayService) UpsertDayEntry(userID uint, day time.Time, input DayEntryInput) (models.DailyLog, error) {
	normalized, err := NormalizeDayEntryInput(input)
	if err != nil {
		return models.DailyLog{}, err
	}

	entry := models.DailyLog{
		UserID:   userID,
		Date:     dateOnly(day),
		Mood:     normalized.Mood,
		Symptoms: normalized.Symptoms,
		Habits:   normalized.Habits,
		Flow:     normalized.Flow,
		Note:     normalized.Note,
	}
	if err := service.logs.Upsert(&entry); err != nil {
		return models.DailyLog{}, ErrDayEntryUpdateFailed
	}
	return entry, nil
}

func (service *DayService) DeleteDayEntry(userID uint, day time.Time) error {
	_, found, err := service.logs.FindByDate(userID, day)
	if err != nil {
		return ErrDayEntryLoadFailed
	}
	if !found {
		return ErrDayEntryNotFound
	}
	if err := service.logs.DeleteByDate(userID, day); err != nil {
		return ErrDeleteDayFailed
	}
	return nil
}
