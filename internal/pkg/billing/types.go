package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/doulando/ventre/app/models"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100

	MaxInstallments        = 10
	MaxInstallmentInterval = 4
	MaxPaymentLinks        = 10
	MaxNotesLength         = 500
)

// CreateBillingInput is the validated payload for a new billing.
type CreateBillingInput struct {
	PatientID           uuid.UUID
	Description         string
	TotalAmount         int64
	PaymentMethod       models.PaymentMethod
	InstallmentCount    int
	InstallmentInterval int
	FirstDueDate        time.Time
	PaymentLinks        []string
	Notes               string
}

// RecordPaymentInput describes money received against one installment.
type RecordPaymentInput struct {
	PaidAt        time.Time
	PaidAmount    int64
	PaymentMethod models.PaymentMethod
	Notes         string
}

// BillingFilter narrows ListBillings. Zero values mean "any".
type BillingFilter struct {
	PatientID *uuid.UUID
	Status    models.BillingStatus
	Limit     int
	Offset    int
}

// Normalize applies the default page size and clamps limit and offset.
func (f *BillingFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// StatusTotal is one row of the per-status aggregate.
type StatusTotal struct {
	Status      models.BillingStatus
	Count       int64
	TotalAmount int64
	PaidAmount  int64
}

// Summary is a professional's financial overview.
type Summary struct {
	ProfessionalID uuid.UUID                      `json:"professional_id"`
	PendingAmount  int64                          `json:"pending_amount"`
	OverdueAmount  int64                          `json:"overdue_amount"`
	ReceivedAmount int64                          `json:"received_amount"`
	Counts         map[models.BillingStatus]int64 `json:"counts"`
}

// SweepReport is returned by ReconcileOverdue.
type SweepReport struct {
	Date               string `json:"date"`
	InstallmentsMarked int64  `json:"installments_marked"`
	BillingsUpdated    int    `json:"billings_updated"`
	BillingsSkipped    int    `json:"billings_skipped"`
	BillingsFailed     int    `json:"billings_failed"`
}

type EventType string

const (
	EventBillingCreated   EventType = "billing_created"
	EventPaymentRecorded  EventType = "payment_recorded"
	EventBillingCancelled EventType = "billing_cancelled"
)

// Event is emitted after a billing write commits.
type Event struct {
	Type          EventType
	BillingID     uuid.UUID
	PatientID     uuid.UUID
	ActorID       uuid.UUID
	InstallmentID *uuid.UUID
	Amount        int64
	Description   string
}
