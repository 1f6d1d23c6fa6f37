package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/cyclecore/internal/models"
	"gorm.io/gorm"
)

type DailyLogRepository struct {
	database *gorm.DB
}

func NewDailyLogRepository(database *gorm.DB) *DailyLogRepository {
	return &DailyLogRepository{database: database}
}

// daysBetween scopes a query to userID's logs from..to, both inclusive.
func daysBetween(userID uint, from time.Time, to time.Time) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("user_id = ? AND date >= ? AND date < ?", userID, storageDay(from), storageDay(to).AddDate(0, 0, 1))
	}
}

func (repo *DailyLogRepository) ListByUser(userID uint) ([]models.DailyLog, error) {
	logs := make([]models.DailyLog, 0)
	if err := repo.database.Where("user_id = ?", userID).Order("date ASC, id ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (repo *DailyLogRepository) ListByUserRange(userID uint, from time.Time, to time.Time) ([]models.DailyLog, error) {
	logs := make([]models.DailyLog, 0)
	if err := repo.database.Scopes(daysBetween(userID, from, to)).Order("date ASC, id ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (repo *DailyLogRepository) FindByDate(userID uint, day time.Time) (models.DailyLog, bool, error) {
	entry := models.DailyLog{}
	result := repo.database.Scopes(daysBetween(userID, day, day)).Limit(1).Find(&entry)
	if result.Error != nil {
		return models.DailyLog{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.DailyLog{}, false, nil
	}
	return entry, true, nil
}

// Upsert stores entry as the single log of its user and day, keeping the id
// and creation time of an existing row.
func (repo *DailyLogRepository) Upsert(entry *models.DailyLog) error {
	entry.Date = storageDay(entry.Date)
	return repo.database.Transaction(func(tx *gorm.DB) error {
		existing := models.DailyLog{}
		result := tx.Scopes(daysBetween(entry.UserID, entry.Date, entry.Date)).Limit(1).Find(&existing)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			if entry.ID == "" {
				entry.ID = uuid.NewString()
			}
			return tx.Create(entry).Error
		}
		entry.ID = existing.ID
		entry.CreatedAt = existing.CreatedAt
		return tx.Save(entry).Error
	})
}

func (repo *DailyLogRepository) DeleteByDate(userID uint, day time.Time) error {
	result := repo.database.Scopes(daysBetween(userID, day, day)).Delete(&models.DailyLog{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
