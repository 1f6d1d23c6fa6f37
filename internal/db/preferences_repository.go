package db

import (
	"github.com/terraincognita07/cyclecore/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PreferencesRepository struct {
	database *gorm.DB
}

func NewPreferencesRepository(database *gorm.DB) *PreferencesRepository {
	return &PreferencesRepository{database: database}
}

// Get returns the stored preferences. Users without a row get defaults and
// found=false.
func (repo *PreferencesRepository) Get(userID uint) (models.CyclePreferences, bool, error) {
	prefs := models.CyclePreferences{}
	result := repo.database.Where("user_id = ?", userID).Limit(1).Find(&prefs)
	if result.Error != nil {
		return models.CyclePreferences{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		defaults := models.DefaultCyclePreferences()
		defaults.UserID = userID
		return defaults, false, nil
	}
	return prefs, true, nil
}

func (repo *PreferencesRepository) Save(prefs *models.CyclePreferences) error {
	prefs.LastPeriodStart = storageDayPtr(prefs.LastPeriodStart)
	return repo.database.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(prefs).Error
}
