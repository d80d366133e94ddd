package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/osler-labs/clinsim-go-api/internal/models"
)

// PatientRepository defines read operations on the ground-truth bundle.
type PatientRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.Patient, error)
	GetWithSymptoms(ctx context.Context, id uuid.UUID) (models.Patient, error)
	GetPrompt(ctx context.Context, patientID uuid.UUID) (models.Prompt, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Patient, error)
	Count(ctx context.Context) (int64, error)
}

type patientRepository struct {
	db *gorm.DB
}

// NewPatientRepository instantiates a GORM-backed repository.
func NewPatientRepository(db *gorm.DB) PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Patient, error) {
	var patient models.Patient
	if err := r.db.WithContext(ctx).First(&patient, "id = ?", id).Error; err != nil {
		return models.Patient{}, err
	}
	return patient, nil
}

func (r *patientRepository) GetWithSymptoms(ctx context.Context, id uuid.UUID) (models.Patient, error) {
	var patient models.Patient
	if err := r.db.WithContext(ctx).
		Preload("Symptoms").
		First(&patient, "id = ?", id).Error; err != nil {
		return models.Patient{}, err
	}
	return patient, nil
}

func (r *patientRepository) GetPrompt(ctx context.Context, patientID uuid.UUID) (models.Prompt, error) {
	var prompt models.Prompt
	if err := r.db.WithContext(ctx).
		First(&prompt, "patient_id = ?", patientID).Error; err != nil {
		return models.Prompt{}, err
	}
	return prompt, nil
}

func (r *patientRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Patient, error) {
	var patients []models.Patient
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&patients).Error; err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *patientRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Patient{}).Count(&count).Error
	return count, err
}
