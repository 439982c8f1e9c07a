package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/doulando/ventre/app/models"
)

type userSettingsRepository struct {
	db *gorm.DB
}

// NewUserSettingsRepository creates a new user settings repository instance
func NewUserSettingsRepository(db *gorm.DB) UserSettingsRepository {
	return &userSettingsRepository{db: db}
}

// GetOrCreate returns the stored preferences or persists the defaults
func (r *userSettingsRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error) {
	return models.GetOrCreateUserSettings(r.db.WithContext(ctx), userID)
}

func (r *userSettingsRepository) Save(ctx context.Context, settings *models.UserSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
