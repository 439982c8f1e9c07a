package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/doulando/ventre/internal/pkg/billing"
	"github.com/doulando/ventre/internal/pkg/env"
	"github.com/doulando/ventre/internal/pkg/jobqueue"
	"github.com/doulando/ventre/internal/pkg/reminders"
)

// RegisterScheduledTasks runs the overdue sweep and reminder delivery
// in-process. Deployments with an external cron leave SCHEDULER_ENABLED unset.
func RegisterScheduledTasks(m *jobqueue.Manager, deps *Dependencies) {
	if !env.GetBool("SCHEDULER_ENABLED", false) {
		return
	}

	sweepEvery := time.Duration(env.GetInt("SWEEP_INTERVAL_MINUTES", 60)) * time.Minute
	deliverEvery := time.Duration(env.GetInt("DELIVERY_INTERVAL_MINUTES", 5)) * time.Minute

	m.RegisterPeriodic("overdue sweep", sweepEvery, func(ctx context.Context) error {
		_, err := deps.Billing.ReconcileOverdue(ctx, billing.DateOf(time.Now(), deps.Location))
		return err
	})
	m.RegisterPeriodic("reminder delivery", deliverEvery, func(ctx context.Context) error {
		_, err := deps.Reminders.DeliverDue(ctx, time.Now(), reminders.DefaultDeliveryBatch)
		return err
	})
	log.Infof("[Router] in-process scheduler enabled (sweep every %s, delivery every %s)", sweepEvery, deliverEvery)
}
