package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/osler-labs/clinsim-go-api/internal/models"
)

// ConversationTurn is a single turn of the student/patient conversation.
// Insertion order is chronological order.
type ConversationTurn struct {
	IsAI bool   `json:"isAI"`
	Text string `json:"text"`
}

// AssignPatientsRequest bulk-assigns patients to one student.
type AssignPatientsRequest struct {
	StudentID  uuid.UUID   `json:"studentId" validate:"required"`
	PatientIDs []uuid.UUID `json:"patientIds" validate:"required,min=1,dive,required"`
	DueDate    *time.Time  `json:"dueDate"`
}

// StoreConversationRequest replaces the stored transcript for an assignment.
type StoreConversationRequest struct {
	StudentID uuid.UUID          `json:"studentId" validate:"required"`
	PatientID uuid.UUID          `json:"patientId" validate:"required"`
	Messages  []ConversationTurn `json:"messages" validate:"required"`
}

// SubmitAssignmentRequest records the student's findings and completes the attempt.
type SubmitAssignmentRequest struct {
	StudentID uuid.UUID `json:"studentId" validate:"required"`
	PatientID uuid.UUID `json:"patientId" validate:"required"`
	Findings  string    `json:"findings"`
	VisitNote string    `json:"visitNote"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID                     uuid.UUID  `json:"id"`
	StudentID              uuid.UUID  `json:"student_id"`
	PatientID              uuid.UUID  `json:"patient_id"`
	Status                 string     `json:"status"`
	DueDate                *time.Time `json:"due_date"`
	Score                  *float64   `json:"score"`
	MandatoryQuestionScore *float64   `json:"mandatory_question_score"`
	SymptomsScore          *float64   `json:"symptoms_score"`
	TreatmentScore         *float64   `json:"treatment_score"`
	DiagnosisScore         *float64   `json:"diagnosis_score"`
	Feedback               *string    `json:"feedback"`
	IsMarkable             bool       `json:"is_markable"`
	RequestStatus          *string    `json:"request_status"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:                     model.ID,
		StudentID:              model.StudentID,
		PatientID:              model.PatientID,
		Status:                 model.Status,
		DueDate:                model.DueDate,
		Score:                  model.Score,
		MandatoryQuestionScore: model.MandatoryQuestionScore,
		SymptomsScore:          model.SymptomsScore,
		TreatmentScore:         model.TreatmentScore,
		DiagnosisScore:         model.DiagnosisScore,
		Feedback:               model.Feedback,
		IsMarkable:             model.IsMarkable,
		RequestStatus:          model.RequestStatus,
		CreatedAt:              model.CreatedAt,
		UpdatedAt:              model.UpdatedAt,
	}
}

// SymptomResponse is the serialized ground-truth symptom.
type SymptomResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Severity    string    `json:"severity"`
	Description string    `json:"description"`
}

// StudentPatientResponse is one assigned patient plus assignment detail, as
// returned by the per-student assignment listing.
type StudentPatientResponse struct {
	ID                     uuid.UUID         `json:"id"`
	Name                   string            `json:"name"`
	Prompt                 string            `json:"prompt"`
	Answer                 string            `json:"answer"`
	Symptoms               []SymptomResponse `json:"symptoms"`
	Status                 string            `json:"status"`
	DueDate                *time.Time        `json:"due_date"`
	Score                  *float64          `json:"score"`
	Feedback               *string           `json:"feedback"`
	MandatoryQuestionScore *float64          `json:"mandatory_question_score"`
	SymptomsScore          *float64          `json:"symptoms_score"`
	TreatmentScore         *float64          `json:"treatment_score"`
	DiagnosisScore         *float64          `json:"diagnosis_score"`
}

// StudentAssignmentsResponse groups a student's assigned patients.
type StudentAssignmentsResponse struct {
	ID               uuid.UUID                `json:"id"`
	Name             string                   `json:"name"`
	AssignedPatients []StudentPatientResponse `json:"assignedPatients"`
}

// NewStudentPatientResponse flattens an assignment with its preloaded patient.
func NewStudentPatientResponse(assignment models.Assignment) StudentPatientResponse {
	symptoms := make([]SymptomResponse, 0, len(assignment.Patient.Symptoms))
	for _, symptom := range assignment.Patient.Symptoms {
		symptoms = append(symptoms, SymptomResponse{
			ID:          symptom.ID,
			Name:        symptom.Name,
			Severity:    symptom.Severity,
			Description: symptom.Description,
		})
	}

	return StudentPatientResponse{
		ID:                     assignment.Patient.ID,
		Name:                   assignment.Patient.Name,
		Prompt:                 assignment.Patient.Prompt,
		Answer:                 assignment.Patient.Answer,
		Symptoms:               symptoms,
		Status:                 assignment.Status,
		DueDate:                assignment.DueDate,
		Score:                  assignment.Score,
		Feedback:               assignment.Feedback,
		MandatoryQuestionScore: assignment.MandatoryQuestionScore,
		SymptomsScore:          assignment.SymptomsScore,
		TreatmentScore:         assignment.TreatmentScore,
		DiagnosisScore:         assignment.DiagnosisScore,
	}
}
