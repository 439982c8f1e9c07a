package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/doulando/ventre/app/models"
)

type patientRepository struct {
	db *gorm.DB
}

// NewPatientRepository creates a new patient repository instance
func NewPatientRepository(db *gorm.DB) PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Patient, error) {
	var p models.Patient
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// PatientAccess returns gorm.ErrRecordNotFound when the patient does not exist.
func (r *patientRepository) PatientAccess(ctx context.Context, patientID, userID uuid.UUID) (models.PatientAccess, error) {
	patient, err := r.GetByID(ctx, patientID)
	if err != nil {
		return models.AccessNone, err
	}

	var members int64
	err = r.db.WithContext(ctx).Model(&models.TeamMember{}).
		Where("patient_id = ? AND professional_id = ?", patientID, userID).
		Count(&members).Error
	if err != nil {
		return models.AccessNone, err
	}
	if members > 0 || patient.CreatedBy == userID {
		return models.AccessTeam, nil
	}
	if patient.UserID != nil && *patient.UserID == userID {
		return models.AccessSelf, nil
	}
	return models.AccessNone, nil
}

// ListTeamMemberIDs returns the professionals currently on the patient's care team
func (r *patientRepository) ListTeamMemberIDs(ctx context.Context, patientID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.TeamMember{}).
		Where("patient_id = ?", patientID).
		Order("created_at ASC").
		Pluck("professional_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
