package reminders

import (
	"context"
	"errors"
	"fmt"

	"github.com/doulando/ventre/app/models"
	"github.com/doulando/ventre/internal/pkg/billing"
)

// EventNotifier turns billing events into inbox entries for everyone
// following the patient except the user who caused the event.
type EventNotifier struct {
	directory Directory
	store     NotificationStore
}

func NewEventNotifier(directory Directory, store NotificationStore) *EventNotifier {
	return &EventNotifier{directory: directory, store: store}
}

func (n *EventNotifier) NotifyBillingEvent(ctx context.Context, ev billing.Event) error {
	recipients, err := resolveFromDirectory(ctx, n.directory, ev.PatientID)
	if err != nil {
		return err
	}

	title, content := composeEvent(ev)
	ref := ev.BillingID
	var errs []error
	for _, userID := range recipients {
		if userID == ev.ActorID {
			continue
		}
		err := n.store.Create(ctx, &models.Notification{
			UserID:      userID,
			Type:        string(ev.Type),
			Title:       title,
			Content:     content,
			ReferenceID: &ref,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("notify %s: %w", userID, err))
		}
	}
	return errors.Join(errs...)
}
