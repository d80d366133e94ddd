package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Assignment statuses form a one-way lifecycle: assigned -> inprogress ->
// completed -> marked. Only a reattempt acceptance moves an assignment back
// to assigned.
const (
	AssignmentStatusAssigned   = "assigned"
	AssignmentStatusInProgress = "inprogress"
	AssignmentStatusCompleted  = "completed"
	AssignmentStatusMarked     = "marked"
)

// Reattempt request statuses overlay the assignment lifecycle.
const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusDeclined = "declined"
)

// Assignment pairs one student with one patient scenario and carries the full
// grading state for that pairing.
type Assignment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID uuid.UUID  `gorm:"type:uuid;not null;index:idx_assignment_pair,unique" json:"patient_id"`
	StudentID uuid.UUID  `gorm:"type:uuid;not null;index:idx_assignment_pair,unique" json:"student_id"`
	CreatorID *uuid.UUID `gorm:"type:uuid" json:"creator_id"`

	Status  string     `gorm:"size:32;not null;default:assigned" json:"status"`
	DueDate *time.Time `json:"due_date"`

	// ConversationLog holds the raw turn-tagged transcript as a JSON array of
	// {isAI, text} entries, null until the student talks to the patient.
	ConversationLog datatypes.JSON `json:"conversation_log"`
	Findings        *string        `gorm:"type:text" json:"findings"`
	VisitNote       *string        `gorm:"type:text" json:"visit_note"`

	// Sub-scores are null until the assignment is marked. Score is always the
	// sum of the four sub-scores once status reaches marked.
	Score                  *float64 `json:"score"`
	MandatoryQuestionScore *float64 `json:"mandatory_question_score"`
	SymptomsScore          *float64 `json:"symptoms_score"`
	TreatmentScore         *float64 `json:"treatment_score"`
	DiagnosisScore         *float64 `json:"diagnosis_score"`
	Feedback               *string  `gorm:"type:text" json:"feedback"`

	IsMarkable    bool    `gorm:"not null;default:true" json:"is_markable"`
	IsNoteAllow   bool    `gorm:"not null;default:true" json:"is_note_allow"`
	RequestStatus *string `gorm:"size:16" json:"request_status"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Student Student `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Patient Patient `gorm:"foreignKey:PatientID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"patient"`
}

// BeforeCreate assigns a fresh identifier when none was provided.
func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// HasConversation reports whether a transcript has been stored yet.
func (a Assignment) HasConversation() bool {
	return len(a.ConversationLog) > 0
}

// IsMarked reports whether the scoring pipeline has completed for the assignment.
func (a Assignment) IsMarked() bool {
	return a.Status == AssignmentStatusMarked
}
