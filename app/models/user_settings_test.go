package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDefaultUserSettingsOptIn(t *testing.T) {
	us := DefaultUserSettings(uuid.New())

	assert.True(t, us.WantsReminder())
	assert.True(t, us.WantsEmail())
}

func TestUserSettingsOptOut(t *testing.T) {
	us := DefaultUserSettings(uuid.New())
	us.NotifyBillingReminders = false

	assert.False(t, us.WantsReminder())
	assert.False(t, us.WantsEmail(), "email follows the reminder switch")

	us.NotifyBillingReminders = true
	us.NotifyBillingEmail = false
	assert.True(t, us.WantsReminder())
	assert.False(t, us.WantsEmail())
}

func TestNilUserSettingsFallsBackToDefaults(t *testing.T) {
	var us *UserSettings

	assert.True(t, us.WantsReminder())
	assert.True(t, us.WantsEmail())
}
