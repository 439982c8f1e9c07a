package jobqueue

import (
	"context"

	"github.com/doulando/ventre/internal/pkg/billing"
)

// EventPublisher enqueues billing events for the queue workers.
type EventPublisher struct {
	queue *Queue
}

func NewEventPublisher(q *Queue) *EventPublisher {
	return &EventPublisher{queue: q}
}

// Publish implements billing.EventPublisher.
func (p *EventPublisher) Publish(ctx context.Context, event billing.Event) error {
	_, err := p.queue.EnqueueJob(ctx, JobTypeBillingEvent, NewBillingEventJobPayload(event).ToMap())
	return err
}
