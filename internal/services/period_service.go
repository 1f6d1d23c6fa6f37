package services

import (
	"errors"
	"time"

	"github.com/terraincognita07/cyclecore/internal/models"
)

var (
	ErrPeriodNotFound     = errors.New("period not found")
	ErrPeriodOverlap      = errors.New("period overlaps another period")
	ErrPeriodInFuture     = errors.New("period date is in the future")
	ErrPeriodLoadFailed   = errors.New("load periods failed")
	ErrPeriodUpdateFailed = errors.New("update periods failed")
)

type PeriodStore interface {
	ListByUser(userID uint) ([]models.PeriodSpan, error)
	FindByID(userID uint, id string) (models.PeriodSpan, bool, error)
	Create(span *models.PeriodSpan) error
	SaveAll(periods []models.PeriodSpan) error
	Delete(userID uint, id string) error
}

// PeriodService records period spans and keeps derived data in sync: cycle
// lengths of every span and the user's anchor and averages.
type PeriodService struct {
	periods PeriodStore
	prefs   PreferencesStore
}

func NewPeriodService(periods PeriodStore, prefs PreferencesStore) *PeriodService {
	return &PeriodService{periods: periods, prefs: prefs}
}

func (service *PeriodService) List(userID uint) ([]models.PeriodSpan, error) {
	periods, err := service.periods.ListByUser(userID)
	if err != nil {
		return nil, ErrPeriodLoadFailed
	}
	return periods, nil
}

// StartPeriod records a period beginning on start, closed immediately when
// end is set. A still-open earlier span is closed after the user's average
// period length, never later than the day before start.
func (service *PeriodService) StartPeriod(userID uint, start time.Time, end *time.Time, today time.Time) (models.PeriodSpan, error) {
	start = dateOnly(start)
	if DaysBetween(today, start) > 0 {
		return models.PeriodSpan{}, ErrPeriodInFuture
	}

	periods, err := service.periods.ListByUser(userID)
	if err != nil {
		return models.PeriodSpan{}, ErrPeriodLoadFailed
	}
	prefs, _, err := service.prefs.Get(userID)
	if err != nil {
		return models.PeriodSpan{}, ErrPeriodLoadFailed
	}
	prefs = prefs.Normalized()

	for index, existing := range periods {
		if sameDay(existing.Start, start) {
			return models.PeriodSpan{}, ErrPeriodOverlap
		}
		if existing.End != nil && betweenInclusive(start, existing.Start, *existing.End) {
			return models.PeriodSpan{}, ErrPeriodOverlap
		}
		if existing.IsOpen() && existing.Start.Before(start) {
			closeAt := addDays(existing.Start, prefs.AvgPeriodDays-1)
			if !closeAt.Before(start) {
				closeAt = addDays(start, -1)
			}
			closed, err := ClosePeriodSpan(existing, closeAt)
			if err != nil {
				return models.PeriodSpan{}, err
			}
			periods[index] = closed
		}
	}

	span := models.PeriodSpan{UserID: userID, Start: start}
	if end != nil {
		if DaysBetween(today, *end) > 0 {
			return models.PeriodSpan{}, ErrPeriodInFuture
		}
		span, err = ClosePeriodSpan(span, *end)
		if err != nil {
			return models.PeriodSpan{}, err
		}
		if next, ok := nextSpanAfter(periods, start); ok && DaysBetween(next.Start, *span.End) >= 0 {
			return models.PeriodSpan{}, ErrPeriodOverlap
		}
	} else if next, ok := nextSpanAfter(periods, start); ok {
		// Only the newest span may stay open.
		closeAt := addDays(start, prefs.AvgPeriodDays-1)
		if !closeAt.Before(next.Start) {
			closeAt = addDays(next.Start, -1)
		}
		span, err = ClosePeriodSpan(span, closeAt)
		if err != nil {
			return models.PeriodSpan{}, err
		}
	}

	if err := service.periods.Create(&span); err != nil {
		return models.PeriodSpan{}, ErrPeriodUpdateFailed
	}
	periods = append(periods, span)

	reconciled, err := service.reconcile(userID, periods, prefs)
	if err != nil {
		return models.PeriodSpan{}, err
	}
	return findSpan(reconciled, span.ID), nil
}

// EndPeriod closes (or corrects the end of) the span with id.
func (service *PeriodService) EndPeriod(userID uint, id string, end time.Time, today time.Time) (models.PeriodSpan, error) {
	if DaysBetween(today, end) > 0 {
		return models.PeriodSpan{}, ErrPeriodInFuture
	}
	span, found, err := service.periods.FindByID(userID, id)
	if err != nil {
		return models.PeriodSpan{}, ErrPeriodLoadFailed
	}
	if !found {
		return models.PeriodSpan{}, ErrPeriodNotFound
	}
	closed, err := ClosePeriodSpan(span, end)
	if err != nil {
		return models.PeriodSpan{}, err
	}

	periods, err := service.periods.ListByUser(userID)
	if err != nil {
		return models.PeriodSpan{}, ErrPeriodLoadFailed
	}
	if next, ok := nextSpanAfter(periods, closed.Start); ok && DaysBetween(next.Start, *closed.End) >= 0 {
		return models.PeriodSpan{}, ErrPeriodOverlap
	}
	for index := range periods {
		if periods[index].ID == closed.ID {
			periods[index] = closed
		}
	}

	prefs, _, err := service.prefs.Get(userID)
	if err != nil {
		return models.PeriodSpan{}, ErrPeriodLoadFailed
	}
	reconciled, err := service.reconcile(userID, periods, prefs.Normalized())
	if err != nil {
		return models.PeriodSpan{}, err
	}
	return findSpan(reconciled, closed.ID), nil
}

func (service *PeriodService) DeletePeriod(userID uint, id string) error {
	if _, found, err := service.periods.FindByID(userID, id); err != nil {
		return ErrPeriodLoadFailed
	} else if !found {
		return ErrPeriodNotFound
	}
	if err := service.periods.Delete(userID, id); err != nil {
		return ErrPeriodUpdateFailed
	}

	periods, err := service.periods.ListByUser(userID)
	if err != nil {
		return ErrPeriodLoadFailed
	}
	prefs, _, err := service.prefs.Get(userID)
	if err != nil {
		return ErrPeriodLoadFailed
	}
	_, err = service.reconcile(userID, periods, prefs.Normalized())
	return err
}

// reconcile recomputes cycle lengths, persists every span and moves the
// preferences anchor to the newest start. Averages follow the history once
// two cycles are complete.
func (service *PeriodService) reconcile(userID uint, periods []models.PeriodSpan, prefs models.CyclePreferences) ([]models.PeriodSpan, error) {
	reconciled := RecomputeCycleLengths(periods)
	if err := service.periods.SaveAll(reconciled); err != nil {
		return nil, ErrPeriodUpdateFailed
	}
	if len(reconciled) == 0 {
		return reconciled, nil
	}

	prefs.UserID = userID
	anchor := reconciled[len(reconciled)-1].Start
	prefs.LastPeriodStart = &anchor
	if stats := BuildCycleStats(reconciled); stats.TotalCycles >= 2 {
		prefs.AvgCycleDays, prefs.AvgPeriodDays = SanitizeCycleAndPeriod(stats.AvgCycleLength, stats.AvgPeriodLength)
	}
	if err := service.prefs.Save(&prefs); err != nil {
		return nil, ErrPeriodUpdateFailed
	}
	return reconciled, nil
}

func nextSpanAfter(periods []models.PeriodSpan, start time.Time) (models.PeriodSpan, bool) {
	var next models.PeriodSpan
	found := false
	for _, span := range periods {
		if DaysBetween(start, span.Start) <= 0 {
			continue
		}
		if !found || span.Start.Before(next.Start) {
			next = span
			found = true
		}
	}
	return next, found
}

func findSpan(periods []models.PeriodSpan, id string) models.PeriodSpan {
	for _, span := range periods {
		if span.ID == id {
			return span
		}
	}
	return models.PeriodSpan{}
}
