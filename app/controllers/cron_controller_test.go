package controllers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/doulando/ventre/internal/pkg/billing"
	"github.com/doulando/ventre/internal/pkg/jobqueue"
	"github.com/doulando/ventre/internal/pkg/reminders"
)

type stubSweeper struct {
	got time.Time
	err error
}

func (s *stubSweeper) ReconcileOverdue(_ context.Context, today time.Time) (*billing.SweepReport, error) {
	s.got = today
	if s.err != nil {
		return nil, s.err
	}
	return &billing.SweepReport{Date: today.Format(billing.DateLayout), InstallmentsMarked: 2, BillingsUpdated: 1}, nil
}

type stubDelivery struct {
	now   time.Time
	limit int
}

func (s *stubDelivery) DeliverDue(_ context.Context, now time.Time, limit int) (*reminders.DeliveryReport, error) {
	s.now, s.limit = now, limit
	return &reminders.DeliveryReport{Processed: 3, Sent: 2, Cancelled: 1}, nil
}

type stubQueueStats struct{}

func (stubQueueStats) GetJobStats(context.Context) (map[jobqueue.JobStatus]int64, error) {
	return map[jobqueue.JobStatus]int64{jobqueue.JobStatusCompleted: 9}, nil
}
func (stubQueueStats) GetQueueSize(context.Context) (int64, error)      { return 4, nil }
func (stubQueueStats) GetProcessingSize(context.Context) (int64, error) { return 1, nil }

func newCronApp(cc *CronController) *fiber.App {
	app := fiber.New()
	app.Post("/api/cron/overdue-sweep", cc.HandleOverdueSweep)
	app.Post("/api/cron/deliver-notifications", cc.HandleDeliverNotifications)
	app.Get("/api/cron/queue-stats", cc.HandleQueueStats)
	return app
}

func TestCronController_SweepUsesBusinessDate(t *testing.T) {
	sweeper := &stubSweeper{}
	cc := NewCronController(sweeper, &stubDelivery{}, nil, time.FixedZone("BRT", -3*3600))
	// 01:30 UTC on Feb 1st is still Jan 31st in Brazil.
	cc.now = func() time.Time { return time.Date(2024, 2, 1, 1, 30, 0, 0, time.UTC) }

	resp, body := doJSON(t, newCronApp(cc), fiber.MethodPost, "/api/cron/overdue-sweep", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), sweeper.got)
	assert.Equal(t, "2024-01-31", body["date"])
	assert.Equal(t, float64(2), body["installments_marked"])
}

func TestCronController_SweepDateOverride(t *testing.T) {
	sweeper := &stubSweeper{}
	cc := NewCronController(sweeper, &stubDelivery{}, nil, time.UTC)
	cc.now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }
	app := newCronApp(cc)

	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/cron/overdue-sweep?date=2024-03-01", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), sweeper.got)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/cron/overdue-sweep?date=2024-03-11", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["fields"], "date")

	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/cron/overdue-sweep?date=yesterday", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCronController_SweepFailure(t *testing.T) {
	cc := NewCronController(&stubSweeper{err: errors.New("db down")}, &stubDelivery{}, nil, time.UTC)

	resp, body := doJSON(t, newCronApp(cc), fiber.MethodPost, "/api/cron/overdue-sweep", nil)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "internal_server_error", body["error"])
}

func TestCronController_Deliver(t *testing.T) {
	delivery := &stubDelivery{}
	cc := NewCronController(&stubSweeper{}, delivery, nil, time.UTC)
	fixed := time.Date(2024, 1, 24, 15, 0, 0, 0, time.UTC)
	cc.now = func() time.Time { return fixed }
	app := newCronApp(cc)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/cron/deliver-notifications", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, fixed, delivery.now)
	assert.Equal(t, reminders.DefaultDeliveryBatch, delivery.limit)
	assert.Equal(t, float64(2), body["sent"])

	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/cron/deliver-notifications?limit=25", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 25, delivery.limit)
}

func TestCronController_QueueStats(t *testing.T) {
	resp, body := doJSON(t, newCronApp(NewCronController(&stubSweeper{}, &stubDelivery{}, stubQueueStats{}, nil)), fiber.MethodGet, "/api/cron/queue-stats", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(4), body["pending"])
	assert.Equal(t, float64(1), body["processing"])
	assert.Equal(t, map[string]interface{}{"completed": float64(9)}, body["totals"])

	resp, _ = doJSON(t, newCronApp(NewCronController(&stubSweeper{}, &stubDelivery{}, nil, nil)), fiber.MethodGet, "/api/cron/queue-stats", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
