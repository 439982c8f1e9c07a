package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/doulando/ventre/app/models"
)

const (
	DefaultDeliveryBatch = 100
	MaxDeliveryBatch     = 500

	// claimLease bounds how long a crashed run keeps its rows hidden.
	claimLease = 10 * time.Minute
)

// Directory resolves who cares about a patient's billings.
type Directory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Patient, error)
	ListTeamMemberIDs(ctx context.Context, patientID uuid.UUID) ([]uuid.UUID, error)
}

// Preferences returns a user's notification settings.
type Preferences interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error)
}

// DeliveryReport summarises one delivery run.
type DeliveryReport struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
	Skipped   int `json:"skipped"`
}

// Service schedules, retracts and delivers installment reminders.
type Service struct {
	repo      Repository
	directory Directory
	prefs     Preferences
	sender    Sender
	now       func() time.Time
	loc       *time.Location
}

func NewService(repo Repository, directory Directory, prefs Preferences, sender Sender, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:      repo,
		directory: directory,
		prefs:     prefs,
		sender:    sender,
		now:       time.Now,
		loc:       loc,
	}
}

// Recipients returns the care team plus the patient's own account.
func (s *Service) Recipients(ctx context.Context, patientID uuid.UUID) ([]uuid.UUID, error) {
	return resolveFromDirectory(ctx, s.directory, patientID)
}

func resolveFromDirectory(ctx context.Context, directory Directory, patientID uuid.UUID) ([]uuid.UUID, error) {
	patient, err := directory.GetByID(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("load patient %s: %w", patientID, err)
	}
	team, err := directory.ListTeamMemberIDs(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("load care team of %s: %w", patientID, err)
	}
	return ResolveRecipients(team, patient.UserID), nil
}

// ScheduleForBilling stores the reminder rows for every installment of b.
func (s *Service) ScheduleForBilling(ctx context.Context, b *models.Billing) error {
	recipients, err := s.Recipients(ctx, b.PatientID)
	if err != nil {
		return err
	}
	rows := BuildSchedule(b.Installments, recipients, s.now(), s.loc)
	if len(rows) == 0 {
		return nil
	}
	if err := s.repo.CreateBatch(ctx, rows); err != nil {
		return fmt.Errorf("store %d reminders: %w", len(rows), err)
	}
	log.Debugf("[Reminders] scheduled %d reminders for billing %s", len(rows), b.ID)
	return nil
}

// CancelForInstallment retracts the installment's pending reminders. Sent and
// failed rows are left alone.
func (s *Service) CancelForInstallment(ctx context.Context, installmentID uuid.UUID) error {
	n, err := s.repo.CancelPending(ctx, installmentID)
	if err != nil {
		return fmt.Errorf("cancel reminders of installment %s: %w", installmentID, err)
	}
	log.Debugf("[Reminders] cancelled %d pending reminders of installment %s", n, installmentID)
	return nil
}

type installmentLookup struct {
	inst    *models.Installment
	billing *models.Billing
	err     error
}

// DeliverDue claims pending reminders whose slot is at or before now and
// processes them. Overlapping runs never claim the same row, and every row
// leaves pending at most once.
func (s *Service) DeliverDue(ctx context.Context, now time.Time, limit int) (*DeliveryReport, error) {
	if limit <= 0 {
		limit = DefaultDeliveryBatch
	}
	if limit > MaxDeliveryBatch {
		limit = MaxDeliveryBatch
	}

	rows, err := s.repo.ClaimDue(ctx, now, claimLease, limit)
	if err != nil {
		return nil, fmt.Errorf("claim due reminders: %w", err)
	}

	report := &DeliveryReport{}
	cache := map[uuid.UUID]installmentLookup{}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Processed++

		lookup, ok := cache[row.InstallmentID]
		if !ok {
			inst, b, err := s.repo.GetInstallment(ctx, row.InstallmentID)
			lookup = installmentLookup{inst: inst, billing: b, err: err}
			cache[row.InstallmentID] = lookup
		}

		switch {
		case errors.Is(lookup.err, gorm.ErrRecordNotFound):
			s.finish(ctx, report, row, models.NotificationCancelled, nil, "installment not found")
			continue
		case lookup.err != nil:
			log.Errorf("[Reminders] loading installment %s failed: %v", row.InstallmentID, lookup.err)
			report.Skipped++
			continue
		case lookup.inst.IsSettled() || lookup.billing.Status == models.BillingStatusCancelado:
			s.finish(ctx, report, row, models.NotificationCancelled, nil, "installment no longer open")
			continue
		}

		settings, err := s.prefs.GetOrCreate(ctx, row.UserID)
		if err != nil {
			log.Errorf("[Reminders] loading settings of %s failed: %v", row.UserID, err)
			report.Skipped++
			continue
		}
		if !settings.WantsReminder() {
			s.finish(ctx, report, row, models.NotificationCancelled, nil, "recipient opted out")
			continue
		}

		title, body := composeReminder(row.Type, lookup.inst, lookup.billing)
		msg := Message{
			UserID:        row.UserID,
			Type:          row.Type,
			BillingID:     lookup.billing.ID,
			InstallmentID: lookup.inst.ID,
			Title:         title,
			Body:          body,
			Settings:      settings,
		}
		err = s.sender.Send(ctx, msg)
		var partial *PartialDeliveryError
		if errors.As(err, &partial) {
			log.Warnf("[Reminders] %s delivered with channel errors: %v", row.ID, partial)
			sentAt := now
			s.finish(ctx, report, row, models.NotificationSent, &sentAt, partial.Error())
			continue
		}
		if err != nil {
			log.Warnf("[Reminders] delivering %s to %s failed: %v", row.ID, row.UserID, err)
			s.finish(ctx, report, row, models.NotificationFailed, nil, err.Error())
			continue
		}
		sentAt := now
		s.finish(ctx, report, row, models.NotificationSent, &sentAt, "")
	}

	if report.Processed > 0 {
		log.Infof("[Reminders] delivery run: %d processed, %d sent, %d failed, %d cancelled, %d skipped",
			report.Processed, report.Sent, report.Failed, report.Cancelled, report.Skipped)
	}
	return report, nil
}

func (s *Service) finish(ctx context.Context, report *DeliveryReport, row models.ScheduledNotification, to models.NotificationStatus, sentAt *time.Time, reason string) {
	moved, err := s.repo.Transition(ctx, row.ID, to, sentAt, reason)
	if err != nil {
		log.Errorf("[Reminders] marking %s as %s failed: %v", row.ID, to, err)
		report.Skipped++
		return
	}
	if !moved {
		report.Skipped++
		return
	}
	switch to {
	case models.NotificationSent:
		report.Sent++
	case models.NotificationFailed:
		report.Failed++
	case models.NotificationCancelled:
		report.Cancelled++
	}
}
