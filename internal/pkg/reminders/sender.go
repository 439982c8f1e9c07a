package reminders

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/google/uuid"

	"github.com/doulando/ventre/app/models"
)

// Message is one reminder addressed to one user.
type Message struct {
	UserID        uuid.UUID
	Type          models.ReminderType
	BillingID     uuid.UUID
	InstallmentID uuid.UUID
	Title         string
	Body          string
	Settings      *models.UserSettings
}

// Sender delivers a reminder over one channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// PartialDeliveryError reports failed channels when at least one other
// channel delivered the message.
type PartialDeliveryError struct {
	Err error
}

func (e *PartialDeliveryError) Error() string { return e.Err.Error() }

func (e *PartialDeliveryError) Unwrap() error { return e.Err }

// MultiSender fans a message out to every channel. It fails only when no
// channel delivered; otherwise channel errors come back as a
// *PartialDeliveryError.
type MultiSender []Sender

func (m MultiSender) Send(ctx context.Context, msg Message) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	if len(errs) < len(m) {
		return &PartialDeliveryError{Err: errors.Join(errs...)}
	}
	return errors.Join(errs...)
}

// NotificationStore persists in-app notifications.
type NotificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// InAppSender writes the reminder into the user's inbox.
type InAppSender struct {
	store NotificationStore
}

func NewInAppSender(store NotificationStore) *InAppSender {
	return &InAppSender{store: store}
}

func (s *InAppSender) Send(ctx context.Context, msg Message) error {
	ref := msg.BillingID
	return s.store.Create(ctx, &models.Notification{
		UserID:      msg.UserID,
		Type:        models.NOTIFICATION_BILLING_REMINDER,
		Title:       msg.Title,
		Content:     msg.Body,
		ReferenceID: &ref,
	})
}

// ProfileLookup resolves a user's e-mail address.
type ProfileLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// MailFunc matches mail.SendMail.
type MailFunc func(to, subject, body string) error

// MailSender e-mails the reminder to users who kept e-mail reminders on.
type MailSender struct {
	profiles ProfileLookup
	send     MailFunc
}

func NewMailSender(profiles ProfileLookup, send MailFunc) *MailSender {
	return &MailSender{profiles: profiles, send: send}
}

func (s *MailSender) Send(ctx context.Context, msg Message) error {
	if !msg.Settings.WantsEmail() {
		return nil
	}
	profile, err := s.profiles.GetByID(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("load profile %s: %w", msg.UserID, err)
	}
	if profile.Email == "" {
		return nil
	}
	body := fmt.Sprintf("<p>Olá, %s.</p><p>%s</p>", html.EscapeString(profile.Name), html.EscapeString(msg.Body))
	if err := s.send(profile.Email, msg.Title, body); err != nil {
		return fmt.Errorf("mail to %s: %w", profile.Email, err)
	}
	return nil
}
