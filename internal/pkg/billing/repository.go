package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/doulando/ventre/app/models"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	CreateBilling(ctx context.Context, billing *models.Billing) error
	GetBilling(ctx context.Context, id uuid.UUID) (*models.Billing, error)
	LockBilling(ctx context.Context, id uuid.UUID) (*models.Billing, error)
	ListBillings(ctx context.Context, viewerID uuid.UUID, filter BillingFilter) ([]models.Billing, int64, error)
	UpdateBillingStatus(ctx context.Context, id uuid.UUID, status models.BillingStatus) error
	UpdateBillingTotals(ctx context.Context, id uuid.UUID, paidAmount int64, status models.BillingStatus) error
	SummaryByProfessional(ctx context.Context, professionalID uuid.UUID) ([]StatusTotal, error)

	GetInstallment(ctx context.Context, id uuid.UUID) (*models.Installment, error)
	LockInstallment(ctx context.Context, id uuid.UUID) (*models.Installment, error)
	ListInstallments(ctx context.Context, billingID uuid.UUID) ([]models.Installment, error)
	UpdateInstallmentPayment(ctx context.Context, id uuid.UUID, paidAmount int64, status models.BillingStatus, method models.PaymentMethod) error
	MarkOverdue(ctx context.Context, today time.Time) ([]uuid.UUID, int64, error)

	CreatePayment(ctx context.Context, payment *models.Payment) error
	SumPayments(ctx context.Context, installmentID uuid.UUID) (int64, error)
	ListPayments(ctx context.Context, installmentID uuid.UUID) ([]models.Payment, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Transaction(ctx context.Context, fn func(tx Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

// CreateBilling inserts the billing and its Installments association in one GORM transaction.
func (r *gormRepository) CreateBilling(ctx context.Context, billing *models.Billing) error {
	return mapStoreError(r.db.WithContext(ctx).Create(billing).Error)
}

func (r *gormRepository) GetBilling(ctx context.Context, id uuid.UUID) (*models.Billing, error) {
	var b models.Billing
	err := r.db.WithContext(ctx).
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("installment_number ASC")
		}).
		First(&b, "id = ?", id).Error
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &b, nil
}

// LockBilling reads the billing row with SELECT ... FOR UPDATE, without
// installments. Writers that recompute billing totals take it first so they
// serialise per billing. Only meaningful inside Transaction.
func (r *gormRepository) LockBilling(ctx context.Context, id uuid.UUID) (*models.Billing, error) {
	var b models.Billing
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, "id = ?", id).Error
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &b, nil
}

// visibleTo scopes billings to those the viewer can read one by one: billings
// they issued, billings of patients they created or care for, and billings
// addressed to them as a patient.
func visibleTo(viewerID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		sub := db.Session(&gorm.Session{NewDB: true})
		return db.Where("professional_id = ? OR patient_id IN (?) OR patient_id IN (?)",
			viewerID,
			sub.Model(&models.TeamMember{}).Select("patient_id").Where("professional_id = ?", viewerID),
			sub.Model(&models.Patient{}).Select("id").Where("created_by = ? OR user_id = ?", viewerID, viewerID),
		)
	}
}

// ListBillings returns the billings visibleTo the viewer.
func (r *gormRepository) ListBillings(ctx context.Context, viewerID uuid.UUID, filter BillingFilter) ([]models.Billing, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Billing{}).Scopes(visibleTo(viewerID))
		if filter.PatientID != nil {
			q = q.Where("patient_id = ?", *filter.PatientID)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, mapStoreError(err)
	}

	var list []models.Billing
	err := scoped().
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("installment_number ASC")
		}).
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&list).Error
	if err != nil {
		return nil, 0, mapStoreError(err)
	}
	return list, total, nil
}

func (r *gormRepository) UpdateBillingStatus(ctx context.Context, id uuid.UUID, status models.BillingStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Billing{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return mapStoreError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) UpdateBillingTotals(ctx context.Context, id uuid.UUID, paidAmount int64, status models.BillingStatus) error {
	return mapStoreError(r.db.WithContext(ctx).Model(&models.Billing{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"paid_amount": paidAmount,
			"status":      status,
		}).Error)
}

func (r *gormRepository) SummaryByProfessional(ctx context.Context, professionalID uuid.UUID) ([]StatusTotal, error) {
	var rows []StatusTotal
	err := r.db.WithContext(ctx).Model(&models.Billing{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS total_amount, COALESCE(SUM(paid_amount), 0) AS paid_amount").
		Where("professional_id = ?", professionalID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, mapStoreError(err)
	}
	return rows, nil
}

func (r *gormRepository) GetInstallment(ctx context.Context, id uuid.UUID) (*models.Installment, error) {
	var inst models.Installment
	if err := r.db.WithContext(ctx).First(&inst, "id = ?", id).Error; err != nil {
		return nil, mapStoreError(err)
	}
	return &inst, nil
}

// LockInstallment reads the installment with SELECT ... FOR UPDATE. Only
// meaningful inside Transaction.
func (r *gormRepository) LockInstallment(ctx context.Context, id uuid.UUID) (*models.Installment, error) {
	var inst models.Installment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&inst, "id = ?", id).Error
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &inst, nil
}

func (r *gormRepository) ListInstallments(ctx context.Context, billingID uuid.UUID) ([]models.Installment, error) {
	var list []models.Installment
	err := r.db.WithContext(ctx).
		Where("billing_id = ?", billingID).
		Order("installment_number ASC").
		Find(&list).Error
	if err != nil {
		return nil, mapStoreError(err)
	}
	return list, nil
}

func (r *gormRepository) UpdateInstallmentPayment(ctx context.Context, id uuid.UUID, paidAmount int64, status models.BillingStatus, method models.PaymentMethod) error {
	return mapStoreError(r.db.WithContext(ctx).Model(&models.Installment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"paid_amount":    paidAmount,
			"status":         status,
			"payment_method": method,
		}).Error)
}

// MarkOverdue flips pendente installments due before today to atrasado and
// returns the distinct billings that were touched.
func (r *gormRepository) MarkOverdue(ctx context.Context, today time.Time) ([]uuid.UUID, int64, error) {
	var billingIDs []uuid.UUID
	var marked int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Installment{}).
			Where("status = ? AND due_date < ?", models.BillingStatusPendente, today).
			Distinct("billing_id").
			Pluck("billing_id", &billingIDs).Error; err != nil {
			return err
		}
		if len(billingIDs) == 0 {
			return nil
		}

		res := tx.Model(&models.Installment{}).
			Where("status = ? AND due_date < ? AND billing_id IN ?", models.BillingStatusPendente, today, billingIDs).
			Update("status", models.BillingStatusAtrasado)
		if res.Error != nil {
			return res.Error
		}
		marked = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, 0, mapStoreError(err)
	}
	return billingIDs, marked, nil
}

func (r *gormRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return mapStoreError(r.db.WithContext(ctx).Create(payment).Error)
}

func (r *gormRepository) SumPayments(ctx context.Context, installmentID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Select("COALESCE(SUM(paid_amount), 0)").
		Where("installment_id = ?", installmentID).
		Scan(&sum).Error
	if err != nil {
		return 0, mapStoreError(err)
	}
	return sum, nil
}

func (r *gormRepository) ListPayments(ctx context.Context, installmentID uuid.UUID) ([]models.Payment, error) {
	var list []models.Payment
	err := r.db.WithContext(ctx).
		Where("installment_id = ?", installmentID).
		Order("paid_at DESC, created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, mapStoreError(err)
	}
	return list, nil
}
