package reminders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/doulando/ventre/app/models"
)

const insertBatchSize = 500

// Repository provides DB operations used by the reminder service.
type Repository interface {
	CreateBatch(ctx context.Context, rows []models.ScheduledNotification) error
	CancelPending(ctx context.Context, installmentID uuid.UUID) (int64, error)
	// ClaimDue leases up to limit due pending rows to the caller. Rows leased
	// by another run stay invisible until the lease expires.
	ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]models.ScheduledNotification, error)
	// Transition moves a row out of pending. It reports false when another
	// worker got there first.
	Transition(ctx context.Context, id uuid.UUID, to models.NotificationStatus, sentAt *time.Time, lastErr string) (bool, error)
	GetInstallment(ctx context.Context, installmentID uuid.UUID) (*models.Installment, *models.Billing, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a reminder repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateBatch(ctx context.Context, rows []models.ScheduledNotification) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, insertBatchSize).Error
}

func (r *gormRepository) CancelPending(ctx context.Context, installmentID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.ScheduledNotification{}).
		Where("installment_id = ? AND status = ?", installmentID, models.NotificationPending).
		Update("status", models.NotificationCancelled)
	return res.RowsAffected, res.Error
}

func (r *gormRepository) ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]models.ScheduledNotification, error) {
	var rows []models.ScheduledNotification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND scheduled_for <= ?", models.NotificationPending, now).
			Where("claimed_at IS NULL OR claimed_at <= ?", now.Add(-lease)).
			Order("scheduled_for ASC").
			Limit(limit).
			Find(&rows).Error
		if err != nil || len(rows) == 0 {
			return err
		}

		ids := make([]uuid.UUID, len(rows))
		for i := range rows {
			ids[i] = rows[i].ID
			rows[i].ClaimedAt = &now
		}
		return tx.Model(&models.ScheduledNotification{}).
			Where("id IN ?", ids).
			Update("claimed_at", now).Error
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *gormRepository) Transition(ctx context.Context, id uuid.UUID, to models.NotificationStatus, sentAt *time.Time, lastErr string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.ScheduledNotification{}).
		Where("id = ? AND status = ?", id, models.NotificationPending).
		Updates(map[string]interface{}{
			"status":     to,
			"sent_at":    sentAt,
			"last_error": lastErr,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// GetInstallment returns the installment and its billing, or gorm.ErrRecordNotFound.
func (r *gormRepository) GetInstallment(ctx context.Context, installmentID uuid.UUID) (*models.Installment, *models.Billing, error) {
	var inst models.Installment
	if err := r.db.WithContext(ctx).First(&inst, "id = ?", installmentID).Error; err != nil {
		return nil, nil, err
	}
	var b models.Billing
	if err := r.db.WithContext(ctx).First(&b, "id = ?", inst.BillingID).Error; err != nil {
		return nil, nil, err
	}
	return &inst, &b, nil
}
