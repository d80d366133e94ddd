package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Symptom is a single ground-truth symptom that can be attached to patients.
type Symptom struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Severity    string    `gorm:"size:64" json:"severity"`
	Description string    `gorm:"type:text" json:"description"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Patients []Patient `gorm:"many2many:patient_symptoms" json:"-"`
}

// BeforeCreate assigns a fresh identifier when none was provided.
func (s *Symptom) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
