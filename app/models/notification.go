package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NOTIFICATION_BILLING_CREATED   = "billing_created"
	NOTIFICATION_PAYMENT_RECORDED  = "payment_recorded"
	NOTIFICATION_BILLING_CANCELLED = "billing_cancelled"
	NOTIFICATION_BILLING_REMINDER  = "billing_reminder"
)

// Notification is an in-app inbox entry.
type Notification struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	Type        string     `gorm:"type:varchar(50)" json:"type" validate:"oneof=billing_created payment_recorded billing_cancelled billing_reminder"`
	Title       string     `gorm:"type:varchar(200)" json:"title"`
	Content     string     `gorm:"type:text" json:"content"`
	IsRead      bool       `gorm:"default:false" json:"is_read"`
	ReferenceID *uuid.UUID `gorm:"type:uuid" json:"reference_id,omitempty"` // billing the entry points to
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// MarkAsRead flags the notification as read
func (n *Notification) MarkAsRead(db *gorm.DB) error {
	n.IsRead = true
	return db.Model(n).Update("is_read", true).Error
}

// CreateNotification stores a new unread notification
func CreateNotification(db *gorm.DB, userID uuid.UUID, notificationType, title, content string, referenceID *uuid.UUID) error {
	notification := Notification{
		UserID:      userID,
		Type:        notificationType,
		Title:       title,
		Content:     content,
		ReferenceID: referenceID,
		IsRead:      false,
	}

	return db.Create(&notification).Error
}
