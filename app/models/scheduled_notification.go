package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReminderType string

const (
	ReminderDueIn7Days ReminderType = "due_in_7_days"
	ReminderDueIn3Days ReminderType = "due_in_3_days"
	ReminderDueToday   ReminderType = "due_today"
	ReminderOverdue    ReminderType = "overdue"
)

type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "pending"
	NotificationSent      NotificationStatus = "sent"
	NotificationCancelled NotificationStatus = "cancelled"
	NotificationFailed    NotificationStatus = "failed"
)

// ScheduledNotification is one reminder slot for one recipient of one installment.
type ScheduledNotification struct {
	ID            uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	InstallmentID uuid.UUID          `gorm:"type:uuid;not null;index" json:"installment_id"`
	UserID        uuid.UUID          `gorm:"type:uuid;not null" json:"user_id"`
	Type          ReminderType       `gorm:"type:varchar(20);not null" json:"notification_type"`
	ScheduledFor  time.Time          `gorm:"not null;index:idx_scheduled_due,priority:2" json:"scheduled_for"`
	Status        NotificationStatus `gorm:"type:varchar(20);not null;default:'pending';index:idx_scheduled_due,priority:1" json:"status"`
	ClaimedAt     *time.Time         `json:"-"`
	SentAt        *time.Time         `json:"sent_at,omitempty"`
	LastError     string             `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt     time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

func (n *ScheduledNotification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
