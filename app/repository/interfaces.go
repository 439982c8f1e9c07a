package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/doulando/ventre/app/models"
)

// ProfileRepository defines the interface for account profile lookups
type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// PatientRepository defines patient and care team lookups
type PatientRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Patient, error)
	PatientAccess(ctx context.Context, patientID, userID uuid.UUID) (models.PatientAccess, error)
	ListTeamMemberIDs(ctx context.Context, patientID uuid.UUID) ([]uuid.UUID, error)
}

// NotificationRepository defines the in-app inbox operations
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, offset, limit int) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
}

// UserSettingsRepository defines the interface for per-user preferences
type UserSettingsRepository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error)
	Save(ctx context.Context, settings *models.UserSettings) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	Profile      ProfileRepository
	Patient      PatientRepository
	Notification NotificationRepository
	UserSettings UserSettingsRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Profile:      NewProfileRepository(db),
		Patient:      NewPatientRepository(db),
		Notification: NewNotificationRepository(db),
		UserSettings: NewUserSettingsRepository(db),
	}
}
