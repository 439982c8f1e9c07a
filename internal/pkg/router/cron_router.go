package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/doulando/ventre/app/controllers"
	"github.com/doulando/ventre/internal/pkg/middleware"
)

// CronRouter exposes the endpoints driven by the external scheduler. It is
// installed before ApiRouter so the scheduler is not rate limited.
type CronRouter struct {
	deps *Dependencies
}

func (h CronRouter) InstallRouter(app *fiber.App) {
	var queue controllers.QueueStats
	if h.deps.Queue != nil {
		queue = h.deps.Queue
	}
	cc := controllers.NewCronController(h.deps.Billing, h.deps.Reminders, queue, h.deps.Location)

	cron := app.Group("/api/cron", middleware.CronSecret(h.deps.CronSecret))
	cron.Post("/overdue-sweep", cc.HandleOverdueSweep)
	cron.Post("/deliver-notifications", cc.HandleDeliverNotifications)
	cron.Get("/queue-stats", cc.HandleQueueStats)
}

func NewCronRouter(deps *Dependencies) *CronRouter {
	return &CronRouter{deps: deps}
}
