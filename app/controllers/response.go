package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/doulando/ventre/internal/pkg/billing"
	icuser "github.com/doulando/ventre/internal/pkg/usercontext"
)

type listResponse struct {
	Items  interface{} `json:"items"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

func validationFailed(c *fiber.Ctx, fields map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "validation_error",
		"message": "Invalid request",
		"fields":  fields,
	})
}

// respondError maps service errors onto the JSON error contract. Anything
// unexpected is logged and reported as a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	var verr *billing.ValidationError
	switch {
	case errors.As(err, &verr):
		return validationFailed(c, verr.Fields)
	case errors.Is(err, billing.ErrValidation):
		return jsonError(c, fiber.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, billing.ErrForbidden):
		return jsonError(c, fiber.StatusForbidden, "forbidden", "You do not have access to this resource")
	case errors.Is(err, billing.ErrNotFound):
		return jsonError(c, fiber.StatusNotFound, "not_found", "Resource not found")
	case errors.Is(err, billing.ErrConflict):
		return jsonError(c, fiber.StatusConflict, "conflict", err.Error())
	default:
		log.Errorf("[API] %s %s failed: %v", c.Method(), c.Path(), err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Internal server error")
	}
}

// currentUser returns the authenticated caller or writes a 401.
func currentUser(c *fiber.Ctx) (uuid.UUID, bool) {
	uc := icuser.GetUserContext(c)
	if !uc.IsLoggedIn || uc.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return uc.UserID, true
}

func unauthorized(c *fiber.Ctx) error {
	return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

func invalidParam(c *fiber.Ctx, name string) error {
	return validationFailed(c, map[string]string{name: "must be a valid UUID"})
}

// pagination reads ?limit and ?offset with the same clamp as billing lists.
func pagination(c *fiber.Ctx) (limit, offset int) {
	page := billing.BillingFilter{Limit: c.QueryInt("limit", billing.DefaultListLimit), Offset: c.QueryInt("offset", 0)}
	page.Normalize()
	return page.Limit, page.Offset
}
