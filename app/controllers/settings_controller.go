package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/doulando/ventre/app/repository"
)

type SettingsController struct {
	repo repository.UserSettingsRepository
}

func NewSettingsController(repo repository.UserSettingsRepository) *SettingsController {
	return &SettingsController{repo: repo}
}

type updateNotificationSettingsRequest struct {
	NotifyBillingReminders *bool `json:"notify_billing_reminders"`
	NotifyBillingEmail     *bool `json:"notify_billing_email"`
}

// HandleGetNotifications handles GET /api/v1/settings/notifications
func (sc *SettingsController) HandleGetNotifications(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	settings, err := sc.repo.GetOrCreate(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(settings)
}

// HandleUpdateNotifications handles PUT /api/v1/settings/notifications.
// Omitted fields keep their stored value.
func (sc *SettingsController) HandleUpdateNotifications(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req updateNotificationSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid JSON body")
	}
	if req.NotifyBillingReminders == nil && req.NotifyBillingEmail == nil {
		return validationFailed(c, map[string]string{"body": "at least one setting is required"})
	}

	ctx := c.UserContext()
	settings, err := sc.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	if req.NotifyBillingReminders != nil {
		settings.NotifyBillingReminders = *req.NotifyBillingReminders
	}
	if req.NotifyBillingEmail != nil {
		settings.NotifyBillingEmail = *req.NotifyBillingEmail
	}
	if err := sc.repo.Save(ctx, settings); err != nil {
		return respondError(c, err)
	}
	return c.JSON(settings)
}
