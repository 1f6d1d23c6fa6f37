package db

import (
	"errors"

	"github.com/google/uuid"
	"github.com/terraincognita07/cyclecore/internal/models"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

type PeriodRepository struct {
	database *gorm.DB
}

func NewPeriodRepository(database *gorm.DB) *PeriodRepository {
	return &PeriodRepository{database: database}
}

func (repo *PeriodRepository) ListByUser(userID uint) ([]models.PeriodSpan, error) {
	periods := make([]models.PeriodSpan, 0)
	if err := repo.database.Where("user_id = ?", userID).Order(`"start" ASC, id ASC`).Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

func (repo *PeriodRepository) FindByID(userID uint, id string) (models.PeriodSpan, bool, error) {
	span := models.PeriodSpan{}
	result := repo.database.Where("user_id = ? AND id = ?", userID, id).Limit(1).Find(&span)
	if result.Error != nil {
		return models.PeriodSpan{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.PeriodSpan{}, false, nil
	}
	return span, true, nil
}

func (repo *PeriodRepository) Create(span *models.PeriodSpan) error {
	if span.ID == "" {
		span.ID = uuid.NewString()
	}
	normalizePeriodDates(span)
	return repo.database.Create(span).Error
}

// SaveAll writes every span of a user in one transaction, typically after
// cycle lengths were recomputed.
func (repo *PeriodRepository) SaveAll(periods []models.PeriodSpan) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		for index := range periods {
			normalizePeriodDates(&periods[index])
			if err := tx.Save(&periods[index]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (repo *PeriodRepository) Delete(userID uint, id string) error {
	result := repo.database.Where("user_id = ? AND id = ?", userID, id).Delete(&models.PeriodSpan{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizePeriodDates(span *models.PeriodSpan) {
	span.Start = storageDay(span.Start)
	span.End = storageDayPtr(span.End)
}
