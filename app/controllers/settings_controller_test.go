package controllers

import (
	"context"
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doulando/ventre/app/models"
)

type memorySettings struct {
	rows    map[uuid.UUID]models.UserSettings
	saveErr error
}

func (m *memorySettings) GetOrCreate(_ context.Context, userID uuid.UUID) (*models.UserSettings, error) {
	if m.rows == nil {
		m.rows = map[uuid.UUID]models.UserSettings{}
	}
	us, ok := m.rows[userID]
	if !ok {
		us = models.DefaultUserSettings(userID)
		m.rows[userID] = us
	}
	return &us, nil
}

func (m *memorySettings) Save(_ context.Context, settings *models.UserSettings) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.rows[settings.UserID] = *settings
	return nil
}

func newSettingsApp(repo *memorySettings, userID uuid.UUID) *fiber.App {
	app := fiber.New()
	sc := NewSettingsController(repo)
	api := app.Group("/api/v1", asUser(userID))
	api.Get("/settings/notifications", sc.HandleGetNotifications)
	api.Put("/settings/notifications", sc.HandleUpdateNotifications)
	return app
}

func TestSettingsController_GetDefaults(t *testing.T) {
	me := uuid.New()
	resp, body := doJSON(t, newSettingsApp(&memorySettings{}, me), fiber.MethodGet, "/api/v1/settings/notifications", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["notify_billing_reminders"])
	assert.Equal(t, true, body["notify_billing_email"])
	assert.Equal(t, me.String(), body["user_id"])
}

func TestSettingsController_PartialUpdate(t *testing.T) {
	me := uuid.New()
	repo := &memorySettings{}
	app := newSettingsApp(repo, me)

	resp, body := doJSON(t, app, fiber.MethodPut, "/api/v1/settings/notifications", map[string]interface{}{
		"notify_billing_email": false,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["notify_billing_reminders"])
	assert.Equal(t, false, body["notify_billing_email"])

	stored := repo.rows[me]
	assert.True(t, stored.NotifyBillingReminders)
	assert.False(t, stored.NotifyBillingEmail)
	assert.False(t, stored.WantsEmail())
}

func TestSettingsController_UpdateErrors(t *testing.T) {
	me := uuid.New()

	resp, body := doJSON(t, newSettingsApp(&memorySettings{}, me), fiber.MethodPut, "/api/v1/settings/notifications", map[string]interface{}{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation_error", body["error"])

	resp, _ = doJSON(t, newSettingsApp(&memorySettings{}, me), fiber.MethodPut, "/api/v1/settings/notifications", "{")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, newSettingsApp(&memorySettings{saveErr: errors.New("db down")}, me), fiber.MethodPut, "/api/v1/settings/notifications", map[string]interface{}{
		"notify_billing_reminders": false,
	})
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	resp, _ = doJSON(t, newSettingsApp(&memorySettings{}, uuid.Nil), fiber.MethodGet, "/api/v1/settings/notifications", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
