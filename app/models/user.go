package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	ROLE_OBSTETRA   = "obstetra"
	ROLE_ENFERMEIRA = "enfermeira"
	ROLE_DOULA      = "doula"
	ROLE_GESTANTE   = "gestante"
)

// Profile mirrors the identity provider account. Its ID is the auth subject.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(150)" json:"name" validate:"required,min=2,max=150"`
	Email     string    `gorm:"type:varchar(200);uniqueIndex" json:"email" validate:"required,email,max=200"`
	Role      string    `gorm:"type:varchar(30)" json:"role" validate:"oneof=obstetra enfermeira doula gestante"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Profile) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// IsProfessional reports whether the profile belongs to a care team role.
func (p *Profile) IsProfessional() bool {
	switch p.Role {
	case ROLE_OBSTETRA, ROLE_ENFERMEIRA, ROLE_DOULA:
		return true
	}
	return false
}
