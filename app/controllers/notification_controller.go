package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/doulando/ventre/app/models"
	"github.com/doulando/ventre/app/repository"
)

type NotificationController struct {
	repo repository.NotificationRepository
}

func NewNotificationController(repo repository.NotificationRepository) *NotificationController {
	return &NotificationController{repo: repo}
}

// HandleList handles GET /api/v1/notifications
func (nc *NotificationController) HandleList(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	limit, offset := pagination(c)
	unreadOnly := c.QueryBool("unread", false)

	ctx := c.UserContext()
	items, total, err := nc.repo.ListByUser(ctx, userID, unreadOnly, offset, limit)
	if err != nil {
		return respondError(c, err)
	}
	unread, err := nc.repo.CountUnread(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	if items == nil {
		items = []models.Notification{}
	}
	return c.JSON(fiber.Map{
		"items":  items,
		"total":  total,
		"unread": unread,
		"limit":  limit,
		"offset": offset,
	})
}

// HandleMarkRead handles POST /api/v1/notifications/:id/read
func (nc *NotificationController) HandleMarkRead(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	if err := nc.repo.MarkRead(c.UserContext(), id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Notification not found")
		}
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
