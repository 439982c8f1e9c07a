package usercontext

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UserContext represents the authenticated caller of a request
type UserContext struct {
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsLoggedIn bool      `json:"is_logged_in"`
}

// SetUserContext stores the caller on the fiber context
func SetUserContext(c *fiber.Ctx, uc UserContext) {
	c.Locals(KeyUserContext, uc)
	c.Locals(KeyFromProtected, uc.IsLoggedIn)
	c.Locals(KeyUserID, uc.UserID)
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if uc, ok := c.Locals(KeyUserContext).(UserContext); ok {
		return uc
	}
	return UserContext{IsLoggedIn: false}
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// GetUserID returns the current user's ID, or uuid.Nil if not logged in
func GetUserID(c *fiber.Ctx) uuid.UUID {
	return GetUserContext(c).UserID
}
