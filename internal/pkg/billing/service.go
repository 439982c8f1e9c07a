package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/doulando/ventre/app/models"
)

// AccessChecker resolves what a user may do with a patient's records.
// It returns ErrNotFound-wrapping errors when the patient does not exist.
type AccessChecker interface {
	PatientAccess(ctx context.Context, patientID, userID uuid.UUID) (models.PatientAccess, error)
}

// ReminderScheduler creates and retracts the reminder rows of installments.
type ReminderScheduler interface {
	ScheduleForBilling(ctx context.Context, billing *models.Billing) error
	CancelForInstallment(ctx context.Context, installmentID uuid.UUID) error
}

// EventPublisher hands billing events to a background consumer.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the timezone used to decide what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// Service orchestrates billing creation, payments and the overdue sweep.
type Service struct {
	repo      Repository
	access    AccessChecker
	reminders ReminderScheduler
	events    EventPublisher
	now       func() time.Time
	loc       *time.Location
}

// NewService creates a billing service. reminders and events may be nil.
func NewService(repo Repository, access AccessChecker, reminders ReminderScheduler, events EventPublisher, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		access:    access,
		reminders: reminders,
		events:    events,
		now:       time.Now,
		loc:       time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, access AccessChecker, reminders ReminderScheduler, events EventPublisher, opts ...Option) *Service {
	return NewService(NewRepository(db), access, reminders, events, opts...)
}

func (s *Service) today() time.Time {
	return DateOf(s.now(), s.loc)
}

// CreateBilling splits the total into installments, stores everything and
// schedules the reminders.
func (s *Service) CreateBilling(ctx context.Context, actorID uuid.UUID, in CreateBillingInput) (*models.Billing, error) {
	in.Description = strings.TrimSpace(in.Description)
	in.Notes = strings.TrimSpace(in.Notes)
	if in.InstallmentCount == 0 {
		in.InstallmentCount = 1
	}
	if in.InstallmentInterval == 0 {
		in.InstallmentInterval = 1
	}
	if err := validateCreate(in); err != nil {
		return nil, err
	}
	if err := s.requireTeam(ctx, in.PatientID, actorID); err != nil {
		return nil, err
	}

	amounts := SplitInstallments(in.TotalAmount, in.InstallmentCount)
	dueDates := GenerateDueDates(in.FirstDueDate, in.InstallmentCount, in.InstallmentInterval)

	billing := &models.Billing{
		ID:             uuid.New(),
		PatientID:      in.PatientID,
		ProfessionalID: actorID,
		Description:    in.Description,
		TotalAmount:    in.TotalAmount,
		PaymentMethod:  in.PaymentMethod,
		Status:         models.BillingStatusPendente,
		Notes:          in.Notes,
	}
	if len(in.PaymentLinks) > 0 {
		raw, err := json.Marshal(in.PaymentLinks)
		if err != nil {
			return nil, fmt.Errorf("encode payment links: %w", err)
		}
		billing.PaymentLinks = datatypes.JSON(raw)
	}

	billing.Installments = make([]models.Installment, len(amounts))
	for i, amount := range amounts {
		due, err := ParseDueDate(dueDates[i])
		if err != nil {
			return nil, err
		}
		inst := models.Installment{
			ID:                uuid.New(),
			BillingID:         billing.ID,
			InstallmentNumber: i + 1,
			Amount:            amount,
			DueDate:           due,
			Status:            models.BillingStatusPendente,
		}
		if i < len(in.PaymentLinks) {
			link := in.PaymentLinks[i]
			inst.PaymentLink = &link
		}
		billing.Installments[i] = inst
	}

	if err := s.repo.CreateBilling(ctx, billing); err != nil {
		return nil, fmt.Errorf("create billing: %w", err)
	}

	if s.reminders != nil {
		if err := s.reminders.ScheduleForBilling(ctx, billing); err != nil {
			log.Errorf("[Billing] scheduling reminders for billing %s failed: %v", billing.ID, err)
		}
	}

	s.emit(Event{
		Type:        EventBillingCreated,
		BillingID:   billing.ID,
		PatientID:   billing.PatientID,
		ActorID:     actorID,
		Amount:      billing.TotalAmount,
		Description: billing.Description,
	})
	return billing, nil
}

// RecordPayment appends a payment and recomputes installment and billing
// totals. The billing row is locked before the installment, so payments on
// sibling installments serialise and never write a stale billing total.
func (s *Service) RecordPayment(ctx context.Context, actorID, installmentID uuid.UUID, in RecordPaymentInput) (*models.Payment, error) {
	in.Notes = strings.TrimSpace(in.Notes)
	if err := validatePayment(in, s.today()); err != nil {
		return nil, err
	}

	var (
		payment *models.Payment
		billing *models.Billing
		settled bool
	)
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		target, err := tx.GetInstallment(ctx, installmentID)
		if err != nil {
			return err
		}
		billing, err = tx.LockBilling(ctx, target.BillingID)
		if err != nil {
			return err
		}
		inst, err := tx.LockInstallment(ctx, installmentID)
		if err != nil {
			return err
		}
		if err := s.requireBillingWrite(ctx, billing, actorID); err != nil {
			return err
		}
		if billing.Status == models.BillingStatusCancelado || inst.Status == models.BillingStatusCancelado {
			return fmt.Errorf("%w: billing %s is cancelled", ErrConflict, billing.ID)
		}

		payment = &models.Payment{
			ID:            uuid.New(),
			InstallmentID: inst.ID,
			PaidAt:        DateOf(in.PaidAt, time.UTC),
			PaidAmount:    in.PaidAmount,
			PaymentMethod: in.PaymentMethod,
			Notes:         in.Notes,
			RecordedBy:    actorID,
		}
		if err := tx.CreatePayment(ctx, payment); err != nil {
			return err
		}

		paid, err := tx.SumPayments(ctx, inst.ID)
		if err != nil {
			return err
		}
		status := inst.Status
		if paid >= inst.Amount && inst.Status != models.BillingStatusPago {
			status = models.BillingStatusPago
			settled = true
		}
		if err := tx.UpdateInstallmentPayment(ctx, inst.ID, paid, status, in.PaymentMethod); err != nil {
			return err
		}

		return s.recomputeBilling(ctx, tx, billing)
	})
	if err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	if settled && s.reminders != nil {
		if err := s.reminders.CancelForInstallment(ctx, installmentID); err != nil {
			log.Errorf("[Billing] cancelling reminders for installment %s failed: %v", installmentID, err)
		}
	}

	instID := installmentID
	s.emit(Event{
		Type:          EventPaymentRecorded,
		BillingID:     billing.ID,
		PatientID:     billing.PatientID,
		ActorID:       actorID,
		InstallmentID: &instID,
		Amount:        payment.PaidAmount,
		Description:   billing.Description,
	})
	return payment, nil
}

// recomputeBilling refreshes paid_amount and status from the installments.
func (s *Service) recomputeBilling(ctx context.Context, repo Repository, billing *models.Billing) error {
	installments, err := repo.ListInstallments(ctx, billing.ID)
	if err != nil {
		return err
	}
	var paid int64
	for _, inst := range installments {
		paid += inst.PaidAmount
	}
	status := DeriveBillingStatus(installmentStatuses(installments))
	if err := repo.UpdateBillingTotals(ctx, billing.ID, paid, status); err != nil {
		return err
	}
	billing.PaidAmount = paid
	billing.Status = status
	billing.Installments = installments
	return nil
}

// ReconcileOverdue marks pendente installments due before today as atrasado
// and recomputes the status of every billing that changed. Billings that were
// explicitly cancelled keep their status.
func (s *Service) ReconcileOverdue(ctx context.Context, today time.Time) (*SweepReport, error) {
	day := DateOf(today, s.loc)
	billingIDs, marked, err := s.repo.MarkOverdue(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("mark overdue installments: %w", err)
	}

	report := &SweepReport{Date: day.Format(DateLayout), InstallmentsMarked: marked}
	for _, id := range billingIDs {
		var skipped, updated bool
		err := s.repo.Transaction(ctx, func(tx Repository) error {
			billing, err := tx.LockBilling(ctx, id)
			if err != nil {
				return err
			}
			if billing.Status == models.BillingStatusCancelado {
				skipped = true
				return nil
			}
			installments, err := tx.ListInstallments(ctx, id)
			if err != nil {
				return err
			}
			status := DeriveBillingStatus(installmentStatuses(installments))
			if status == billing.Status {
				return nil
			}
			updated = true
			return tx.UpdateBillingStatus(ctx, id, status)
		})
		switch {
		case err != nil:
			log.Errorf("[Billing] sweep: recomputing billing %s failed: %v", id, err)
			report.BillingsFailed++
		case skipped:
			report.BillingsSkipped++
		case updated:
			report.BillingsUpdated++
		}
	}

	log.Infof("[Billing] overdue sweep %s: %d installments marked, %d billings updated", report.Date, report.InstallmentsMarked, report.BillingsUpdated)
	return report, nil
}

// CancelBilling moves the billing to cancelado. Installments keep their status.
func (s *Service) CancelBilling(ctx context.Context, actorID, billingID uuid.UUID) (*models.Billing, error) {
	billing, err := s.repo.GetBilling(ctx, billingID)
	if err != nil {
		return nil, fmt.Errorf("cancel billing: %w", err)
	}
	if err := s.requireBillingWrite(ctx, billing, actorID); err != nil {
		return nil, err
	}
	if billing.Status == models.BillingStatusCancelado {
		return billing, nil
	}

	if err := s.repo.UpdateBillingStatus(ctx, billing.ID, models.BillingStatusCancelado); err != nil {
		return nil, fmt.Errorf("cancel billing: %w", err)
	}
	billing.Status = models.BillingStatusCancelado

	s.emit(Event{
		Type:        EventBillingCancelled,
		BillingID:   billing.ID,
		PatientID:   billing.PatientID,
		ActorID:     actorID,
		Amount:      billing.TotalAmount,
		Description: billing.Description,
	})
	return billing, nil
}

// GetBilling returns a billing with its installments ordered by number.
func (s *Service) GetBilling(ctx context.Context, actorID, billingID uuid.UUID) (*models.Billing, error) {
	billing, err := s.repo.GetBilling(ctx, billingID)
	if err != nil {
		return nil, fmt.Errorf("get billing: %w", err)
	}
	if err := s.requireBillingRead(ctx, billing, actorID); err != nil {
		return nil, err
	}
	return billing, nil
}

// ListBillings pages through the billings visible to the actor, newest first.
func (s *Service) ListBillings(ctx context.Context, actorID uuid.UUID, filter BillingFilter) ([]models.Billing, int64, error) {
	filter.Normalize()
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, newValidationError(map[string]string{"status": "must be one of pendente, pago, atrasado, cancelado"})
	}
	list, total, err := s.repo.ListBillings(ctx, actorID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list billings: %w", err)
	}
	return list, total, nil
}

// ListPayments returns the payments of one installment, newest first.
func (s *Service) ListPayments(ctx context.Context, actorID, installmentID uuid.UUID) ([]models.Payment, error) {
	inst, err := s.repo.GetInstallment(ctx, installmentID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	billing, err := s.repo.GetBilling(ctx, inst.BillingID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	if err := s.requireBillingRead(ctx, billing, actorID); err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPayments(ctx, installmentID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// Summary aggregates the actor's own billings by status.
func (s *Service) Summary(ctx context.Context, actorID uuid.UUID) (*Summary, error) {
	rows, err := s.repo.SummaryByProfessional(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("billing summary: %w", err)
	}

	sum := &Summary{ProfessionalID: actorID, Counts: map[models.BillingStatus]int64{}}
	for _, row := range rows {
		sum.Counts[row.Status] = row.Count
		outstanding := row.TotalAmount - row.PaidAmount
		if outstanding < 0 {
			outstanding = 0
		}
		switch row.Status {
		case models.BillingStatusPendente:
			sum.PendingAmount += outstanding
		case models.BillingStatusAtrasado:
			sum.OverdueAmount += outstanding
		}
		if row.Status != models.BillingStatusCancelado {
			sum.ReceivedAmount += row.PaidAmount
		}
	}
	return sum, nil
}

func (s *Service) emit(event Event) {
	if s.events == nil {
		return
	}
	runAsync("publish "+string(event.Type), func(ctx context.Context) error {
		return s.events.Publish(ctx, event)
	})
}

func (s *Service) requireTeam(ctx context.Context, patientID, actorID uuid.UUID) error {
	access, err := s.access.PatientAccess(ctx, patientID, actorID)
	if err != nil {
		return fmt.Errorf("patient %s: %w", patientID, mapStoreError(err))
	}
	if access != models.AccessTeam {
		return fmt.Errorf("%w: not on the care team of patient %s", ErrForbidden, patientID)
	}
	return nil
}

func (s *Service) requireBillingWrite(ctx context.Context, billing *models.Billing, actorID uuid.UUID) error {
	if billing.ProfessionalID == actorID {
		return nil
	}
	return s.requireTeam(ctx, billing.PatientID, actorID)
}

func (s *Service) requireBillingRead(ctx context.Context, billing *models.Billing, actorID uuid.UUID) error {
	if billing.ProfessionalID == actorID {
		return nil
	}
	access, err := s.access.PatientAccess(ctx, billing.PatientID, actorID)
	if err != nil {
		if errors.Is(mapStoreError(err), ErrNotFound) {
			return fmt.Errorf("%w: billing %s", ErrNotFound, billing.ID)
		}
		return err
	}
	if access == models.AccessNone {
		return fmt.Errorf("%w: billing %s", ErrForbidden, billing.ID)
	}
	return nil
}

func validateCreate(in CreateBillingInput) error {
	fields := map[string]string{}
	if in.PatientID == uuid.Nil {
		fields["patient_id"] = "is required"
	}
	if n := utf8.RuneCountInString(in.Description); n < 3 || n > 200 {
		fields["description"] = "must be between 3 and 200 characters"
	}
	if in.TotalAmount <= 0 {
		fields["total_amount"] = "must be a positive amount in centavos"
	}
	if !in.PaymentMethod.Valid() {
		fields["payment_method"] = "must be one of credito, debito, pix, boleto, dinheiro, outro"
	}
	if in.InstallmentCount < 1 || in.InstallmentCount > MaxInstallments {
		fields["installment_count"] = fmt.Sprintf("must be between 1 and %d", MaxInstallments)
	} else if in.TotalAmount > 0 && in.TotalAmount < int64(in.InstallmentCount) {
		fields["total_amount"] = "must be at least one centavo per installment"
	}
	if in.InstallmentInterval < 1 || in.InstallmentInterval > MaxInstallmentInterval {
		fields["installment_interval"] = fmt.Sprintf("must be between 1 and %d months", MaxInstallmentInterval)
	}
	if in.FirstDueDate.IsZero() {
		fields["first_due_date"] = "is required"
	}
	if len(in.PaymentLinks) > MaxPaymentLinks {
		fields["payment_links"] = fmt.Sprintf("must contain at most %d links", MaxPaymentLinks)
	} else {
		for _, link := range in.PaymentLinks {
			u, err := url.ParseRequestURI(link)
			if err != nil || u.Host == "" {
				fields["payment_links"] = "must contain valid URLs"
				break
			}
		}
	}
	if utf8.RuneCountInString(in.Notes) > MaxNotesLength {
		fields["notes"] = fmt.Sprintf("must be at most %d characters", MaxNotesLength)
	}
	return newValidationError(fields)
}

func validatePayment(in RecordPaymentInput, today time.Time) error {
	fields := map[string]string{}
	if in.PaidAmount <= 0 {
		fields["paid_amount"] = "must be a positive amount in centavos"
	}
	if !in.PaymentMethod.Valid() {
		fields["payment_method"] = "must be one of credito, debito, pix, boleto, dinheiro, outro"
	}
	if in.PaidAt.IsZero() {
		fields["paid_at"] = "is required"
	} else if DateOf(in.PaidAt, time.UTC).After(today) {
		fields["paid_at"] = "must not be in the future"
	}
	if utf8.RuneCountInString(in.Notes) > MaxNotesLength {
		fields["notes"] = fmt.Sprintf("must be at most %d characters", MaxNotesLength)
	}
	return newValidationError(fields)
}
