package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Patient is a simulated patient scenario. Prompt is the legacy combined
// scenario text; Answer is the correct diagnosis used as ground truth.
type Patient struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name   string    `gorm:"size:255;not null" json:"name"`
	Prompt string    `gorm:"type:text;not null" json:"prompt"`
	Answer string    `gorm:"type:text;not null" json:"answer"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Symptoms []Symptom `gorm:"many2many:patient_symptoms" json:"symptoms"`
}

// BeforeCreate assigns a fresh identifier when none was provided.
func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Prompt carries the structured ground-truth reference data for a patient,
// split out from the legacy combined Patient.Prompt text.
type Prompt struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"patient_id"`

	MandatoryQuestions   string `gorm:"type:text;not null" json:"mandatory_questions"`
	MedicalHistory       string `gorm:"type:text;not null" json:"medical_history"`
	PredefinedTreatments string `gorm:"type:text;not null" json:"predefined_treatments"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Patient Patient `gorm:"foreignKey:PatientID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// BeforeCreate assigns a fresh identifier when none was provided.
func (p *Prompt) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
