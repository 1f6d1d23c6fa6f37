package db

import (
	"encoding/json"
	"fmt"

	"github.com/terraincognita07/cyclecore/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LearningStateRepository keeps one opaque JSON record per user and the
// shared synthetic populations keyed by generator settings.
type LearningStateRepository struct {
	database *gorm.DB
}

func NewLearningStateRepository(database *gorm.DB) *LearningStateRepository {
	return &LearningStateRepository{database: database}
}

func (repo *LearningStateRepository) Load(userID uint) (models.LearningState, bool, error) {
	record := models.LearningStateRecord{}
	result := repo.database.Where("user_id = ?", userID).Limit(1).Find(&record)
	if result.Error != nil {
		return models.LearningState{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.LearningState{}, false, nil
	}

	state := models.LearningState{}
	if err := json.Unmarshal([]byte(record.Payload), &state); err != nil {
		return models.LearningState{}, false, fmt.Errorf("decode learning state for user %d: %w", userID, err)
	}
	return state, true, nil
}

func (repo *LearningStateRepository) Save(userID uint, state models.LearningState) error {
	state.SyntheticData = nil
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode learning state for user %d: %w", userID, err)
	}
	record := models.LearningStateRecord{UserID: userID, Payload: string(payload)}
	return repo.database.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&record).Error
}

func (repo *LearningStateRepository) ListUserIDs() ([]uint, error) {
	userIDs := make([]uint, 0)
	if err := repo.database.Model(&models.LearningStateRecord{}).Order("user_id ASC").Pluck("user_id", &userIDs).Error; err != nil {
		return nil, err
	}
	return userIDs, nil
}

func (repo *LearningStateRepository) LoadPopulation(key string) ([]models.SyntheticUser, bool, error) {
	record := models.SyntheticPopulationRecord{}
	result := repo.database.Where("population_key = ?", key).Limit(1).Find(&record)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, false, nil
	}

	users := make([]models.SyntheticUser, 0)
	if err := json.Unmarshal([]byte(record.Payload), &users); err != nil {
		return nil, false, fmt.Errorf("decode synthetic population %q: %w", key, err)
	}
	return users, true, nil
}

// SavePopulation keeps the first population stored under key.
func (repo *LearningStateRepository) SavePopulation(key string, users []models.SyntheticUser) error {
	payload, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode synthetic population %q: %w", key, err)
	}
	record := models.SyntheticPopulationRecord{Key: key, Payload: string(payload)}
	return repo.database.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "population_key"}},
			DoNothing: true,
		}).
		Create(&record).Error
}
