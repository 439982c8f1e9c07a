package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/doulando/ventre/internal/pkg/billing"
	"github.com/doulando/ventre/internal/pkg/jobqueue"
	"github.com/doulando/ventre/internal/pkg/reminders"
)

type OverdueSweeper interface {
	ReconcileOverdue(ctx context.Context, today time.Time) (*billing.SweepReport, error)
}

type ReminderDelivery interface {
	DeliverDue(ctx context.Context, now time.Time, limit int) (*reminders.DeliveryReport, error)
}

type QueueStats interface {
	GetJobStats(ctx context.Context) (map[jobqueue.JobStatus]int64, error)
	GetQueueSize(ctx context.Context) (int64, error)
	GetProcessingSize(ctx context.Context) (int64, error)
}

// CronController serves the endpoints hit by the external scheduler.
type CronController struct {
	sweeper  OverdueSweeper
	delivery ReminderDelivery
	queue    QueueStats
	loc      *time.Location
	now      func() time.Time
}

func NewCronController(sweeper OverdueSweeper, delivery ReminderDelivery, queue QueueStats, loc *time.Location) *CronController {
	if loc == nil {
		loc = time.UTC
	}
	return &CronController{sweeper: sweeper, delivery: delivery, queue: queue, loc: loc, now: time.Now}
}

// HandleOverdueSweep handles POST /api/cron/overdue-sweep. An optional
// ?date=YYYY-MM-DD replays the sweep for a past day.
func (cc *CronController) HandleOverdueSweep(c *fiber.Ctx) error {
	today := billing.DateOf(cc.now(), cc.loc)
	if raw := c.Query("date"); raw != "" {
		d, err := billing.ParseDueDate(raw)
		if err != nil {
			return validationFailed(c, map[string]string{"date": "must be a date in YYYY-MM-DD format"})
		}
		if d.After(today) {
			return validationFailed(c, map[string]string{"date": "must not be in the future"})
		}
		today = d
	}

	report, err := cc.sweeper.ReconcileOverdue(c.UserContext(), today)
	if err != nil {
		return respondError(c, err)
	}
	log.Infof("[Cron] overdue sweep %s: %d installments, %d billings updated, %d failed",
		report.Date, report.InstallmentsMarked, report.BillingsUpdated, report.BillingsFailed)
	return c.JSON(report)
}

// HandleDeliverNotifications handles POST /api/cron/deliver-notifications
func (cc *CronController) HandleDeliverNotifications(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", reminders.DefaultDeliveryBatch)
	report, err := cc.delivery.DeliverDue(c.UserContext(), cc.now(), limit)
	if err != nil {
		return respondError(c, err)
	}
	log.Infof("[Cron] reminder delivery: %d processed, %d sent, %d failed, %d cancelled",
		report.Processed, report.Sent, report.Failed, report.Cancelled)
	return c.JSON(report)
}

// HandleQueueStats handles GET /api/cron/queue-stats
func (cc *CronController) HandleQueueStats(c *fiber.Ctx) error {
	if cc.queue == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "unavailable", "Job queue not configured")
	}
	ctx := c.UserContext()
	stats, err := cc.queue.GetJobStats(ctx)
	if err != nil {
		return respondError(c, err)
	}
	pending, err := cc.queue.GetQueueSize(ctx)
	if err != nil {
		return respondError(c, err)
	}
	processing, err := cc.queue.GetProcessingSize(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"pending":    pending,
		"processing": processing,
		"totals":     stats,
	})
}
