package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserSettings stores per-user notification preferences
type UserSettings struct {
	ID                     uint      `gorm:"primaryKey" json:"-"`
	UserID                 uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	NotifyBillingReminders bool      `gorm:"default:true" json:"notify_billing_reminders"`
	NotifyBillingEmail     bool      `gorm:"default:true" json:"notify_billing_email"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// DefaultUserSettings returns the preferences a user starts with.
func DefaultUserSettings(userID uuid.UUID) UserSettings {
	return UserSettings{UserID: userID, NotifyBillingReminders: true, NotifyBillingEmail: true}
}

// GetOrCreateUserSettings returns existing settings or creates defaults
func GetOrCreateUserSettings(db *gorm.DB, userID uuid.UUID) (*UserSettings, error) {
	var us UserSettings
	if err := db.Where("user_id = ?", userID).First(&us).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			us = DefaultUserSettings(userID)
			if err := db.Create(&us).Error; err != nil {
				return nil, err
			}
			return &us, nil
		}
		return nil, err
	}
	return &us, nil
}

// WantsReminder reports whether a billing reminder may be delivered to this user.
func (us *UserSettings) WantsReminder() bool {
	return us == nil || us.NotifyBillingReminders
}

// WantsEmail reports whether reminders should also go out by e-mail.
func (us *UserSettings) WantsEmail() bool {
	return us == nil || (us.NotifyBillingReminders && us.NotifyBillingEmail)
}
