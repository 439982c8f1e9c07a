package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Patient is a pregnant person followed by a care team. UserID is set once
// the patient has an account of their own.
type Patient struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string     `gorm:"type:varchar(150)" json:"name"`
	Email     string     `gorm:"type:varchar(200)" json:"email,omitempty"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	CreatedBy uuid.UUID  `gorm:"type:uuid;index" json:"created_by"`
	DueDate   *time.Time `gorm:"type:date" json:"due_date,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TeamMember links a professional to a patient's care team.
type TeamMember struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID      uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_team_patient_professional" json:"patient_id"`
	ProfessionalID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_team_patient_professional;index" json:"professional_id"`
	Role           string    `gorm:"type:varchar(30)" json:"role"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (tm *TeamMember) BeforeCreate(tx *gorm.DB) error {
	if tm.ID == uuid.Nil {
		tm.ID = uuid.New()
	}
	return nil
}

// PatientAccess is what a user may do with a patient's records.
type PatientAccess int

const (
	AccessNone PatientAccess = iota
	// AccessSelf is the patient reading their own records.
	AccessSelf
	// AccessTeam is a professional on the patient's care team.
	AccessTeam
)
