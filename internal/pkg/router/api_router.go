package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/doulando/ventre/app/controllers"
	"github.com/doulando/ventre/internal/pkg/middleware"
	icuser "github.com/doulando/ventre/internal/pkg/usercontext"
)

type ApiRouter struct {
	deps *Dependencies
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        h.deps.LimiterMax,
		Expiration: time.Minute,
		Storage:    h.deps.LimiterStorage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "too_many_requests",
				"message": "Rate limit exceeded",
			})
		},
	}))

	v1 := api.Group("/v1", middleware.JWTAuth(h.deps.JWTSecret), middleware.RequireAPISessionAuth)
	v1.Get("/me", func(c *fiber.Ctx) error {
		return c.JSON(icuser.GetUserContext(c))
	})

	billingController := controllers.NewBillingController(h.deps.Billing, h.deps.Location)
	v1.Post("/billings", billingController.HandleCreate)
	v1.Get("/billings", billingController.HandleList)
	v1.Get("/billings/summary", billingController.HandleSummary)
	v1.Get("/billings/export", billingController.HandleExport)
	v1.Get("/billings/:id", billingController.HandleGet)
	v1.Post("/billings/:id/cancel", billingController.HandleCancel)
	v1.Post("/installments/:id/payments", billingController.HandleRecordPayment)
	v1.Get("/installments/:id/payments", billingController.HandleListPayments)

	notificationController := controllers.NewNotificationController(h.deps.Notifications)
	v1.Get("/notifications", notificationController.HandleList)
	v1.Post("/notifications/:id/read", notificationController.HandleMarkRead)

	settingsController := controllers.NewSettingsController(h.deps.Settings)
	v1.Get("/settings/notifications", settingsController.HandleGetNotifications)
	v1.Put("/settings/notifications", settingsController.HandleUpdateNotifications)
}

func NewApiRouter(deps *Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}
