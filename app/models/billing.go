package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BillingStatus is shared by billings and installments.
type BillingStatus string

const (
	BillingStatusPendente  BillingStatus = "pendente"
	BillingStatusPago      BillingStatus = "pago"
	BillingStatusAtrasado  BillingStatus = "atrasado"
	BillingStatusCancelado BillingStatus = "cancelado"
)

func (s BillingStatus) Valid() bool {
	switch s {
	case BillingStatusPendente, BillingStatusPago, BillingStatusAtrasado, BillingStatusCancelado:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCredito  PaymentMethod = "credito"
	PaymentMethodDebito   PaymentMethod = "debito"
	PaymentMethodPix      PaymentMethod = "pix"
	PaymentMethodBoleto   PaymentMethod = "boleto"
	PaymentMethodDinheiro PaymentMethod = "dinheiro"
	PaymentMethodOutro    PaymentMethod = "outro"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCredito, PaymentMethodDebito, PaymentMethodPix,
		PaymentMethodBoleto, PaymentMethodDinheiro, PaymentMethodOutro:
		return true
	}
	return false
}

// Billing is a charge issued by a professional to a patient, split into installments.
// Amounts are integer centavos.
type Billing struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"patient_id"`
	ProfessionalID uuid.UUID      `gorm:"type:uuid;not null;index" json:"professional_id"`
	Description    string         `gorm:"type:varchar(200);not null" json:"description"`
	TotalAmount    int64          `gorm:"not null" json:"total_amount"`
	PaidAmount     int64          `gorm:"not null;default:0" json:"paid_amount"`
	PaymentMethod  PaymentMethod  `gorm:"type:varchar(20);not null" json:"payment_method"`
	Status         BillingStatus  `gorm:"type:varchar(20);not null;default:'pendente';index" json:"status"`
	PaymentLinks   datatypes.JSON `json:"payment_links,omitempty"`
	Notes          string         `gorm:"type:text" json:"notes,omitempty"`
	Installments   []Installment  `gorm:"foreignKey:BillingID;constraint:OnDelete:CASCADE" json:"installments,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (b *Billing) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Outstanding is what is still owed on the billing.
func (b *Billing) Outstanding() int64 {
	if b.PaidAmount >= b.TotalAmount {
		return 0
	}
	return b.TotalAmount - b.PaidAmount
}

// Installment is one scheduled part of a billing.
type Installment struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	BillingID         uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_installment_billing_number" json:"billing_id"`
	InstallmentNumber int            `gorm:"not null;uniqueIndex:idx_installment_billing_number" json:"installment_number"`
	Amount            int64          `gorm:"not null" json:"amount"`
	DueDate           time.Time      `gorm:"type:date;not null;index" json:"due_date"`
	PaidAmount        int64          `gorm:"not null;default:0" json:"paid_amount"`
	PaymentLink       *string        `gorm:"type:varchar(500)" json:"payment_link,omitempty"`
	PaymentMethod     *PaymentMethod `gorm:"type:varchar(20)" json:"payment_method,omitempty"`
	Status            BillingStatus  `gorm:"type:varchar(20);not null;default:'pendente';index" json:"status"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i *Installment) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// IsSettled reports whether no further reminders make sense for the installment.
func (i *Installment) IsSettled() bool {
	return i.Status == BillingStatusPago || i.Status == BillingStatusCancelado
}

// Payment is an append-only record of money received against an installment.
type Payment struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	InstallmentID uuid.UUID     `gorm:"type:uuid;not null;index" json:"installment_id"`
	PaidAt        time.Time     `gorm:"type:date;not null" json:"paid_at"`
	PaidAmount    int64         `gorm:"not null" json:"paid_amount"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	Notes         string        `gorm:"type:text" json:"notes,omitempty"`
	RecordedBy    uuid.UUID     `gorm:"type:uuid" json:"recorded_by"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
