package jobqueue

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
)

var ErrNoEventNotifier = errors.New("no billing event notifier configured")

// processBillingEventJob turns a queued billing event into inbox notifications.
func (q *Queue) processBillingEventJob(ctx context.Context, job *Job) error {
	payload, err := BillingEventJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse billing event payload: %w", err)
	}
	ev, err := payload.Event()
	if err != nil {
		// Malformed payloads never succeed; burn the remaining retries.
		job.RetryCount = job.MaxRetries
		return fmt.Errorf("invalid billing event payload: %w", err)
	}

	notifier := q.eventNotifier()
	if notifier == nil {
		return ErrNoEventNotifier
	}

	log.Debugf("[JobQueue] Billing event %s for billing %s", ev.Type, ev.BillingID)
	return notifier.NotifyBillingEvent(ctx, ev)
}
