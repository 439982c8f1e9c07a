package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	"github.com/doulando/ventre/internal/pkg/cache"
	"github.com/doulando/ventre/internal/pkg/database"
)

// HttpRouter serves the operational endpoints outside /api.
type HttpRouter struct {
	deps *Dependencies
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	app.Get("/health", handleHealth)

	// fiber metrics, only when a password is configured
	if h.deps.MetricsPass != "" {
		app.Get("/metrics", basicauth.New(basicauth.Config{
			Users: map[string]string{
				h.deps.MetricsUser: h.deps.MetricsPass,
			},
		}), monitor.New(monitor.Config{Title: "Ventre Metrics"}))
	} else {
		log.Warn("[Router] METRICS_PASSWORD not set, /metrics disabled")
	}
}

func NewHttpRouter(deps *Dependencies) *HttpRouter {
	return &HttpRouter{deps: deps}
}

// handleHealth reports database and Redis reachability.
func handleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.Map{"database": "ok", "cache": "ok"}
	healthy := true

	if db := database.GetDB(); db == nil {
		status["database"] = "unavailable"
		healthy = false
	} else if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		status["database"] = "unreachable"
		healthy = false
	}

	if err := cache.GetClient().Ping(ctx).Err(); err != nil {
		// the queue degrades but the API keeps serving
		status["cache"] = "unreachable"
	}

	if !healthy {
		status["status"] = "down"
		return c.Status(fiber.StatusServiceUnavailable).JSON(status)
	}
	status["status"] = "ok"
	return c.JSON(status)
}
