package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/osler-labs/clinsim-go-api/internal/models"
)

// Reattempt resolution actions.
const (
	ReattemptActionAccept  = "accept"
	ReattemptActionDecline = "decline"
)

// ReattemptRequest asks for a fresh attempt at a marked assignment.
type ReattemptRequest struct {
	StudentID uuid.UUID `json:"studentId" validate:"required"`
	PatientID uuid.UUID `json:"patientId" validate:"required"`
}

// ReattemptResolveRequest records the instructor's accept/decline decision.
type ReattemptResolveRequest struct {
	AssignmentID uuid.UUID `json:"assignmentId" validate:"required"`
	Action       string    `json:"action" validate:"required,oneof=accept decline"`
}

// NamedRef is a compact id+name pair for embedding related entities.
type NamedRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ReattemptEntry is one pending or resolved reattempt request with its
// student and patient context.
type ReattemptEntry struct {
	AssignmentID  uuid.UUID  `json:"assignmentId"`
	Status        string     `json:"status"`
	DueDate       *time.Time `json:"dueDate"`
	Score         *float64   `json:"score"`
	Feedback      *string    `json:"feedback"`
	Findings      *string    `json:"findings"`
	RequestStatus *string    `json:"requestStatus"`
	Student       NamedRef   `json:"student"`
	Patient       NamedRef   `json:"patient"`
}

// NewReattemptEntry converts an assignment with preloaded associations.
func NewReattemptEntry(assignment models.Assignment) ReattemptEntry {
	return ReattemptEntry{
		AssignmentID:  assignment.ID,
		Status:        assignment.Status,
		DueDate:       assignment.DueDate,
		Score:         assignment.Score,
		Feedback:      assignment.Feedback,
		Findings:      assignment.Findings,
		RequestStatus: assignment.RequestStatus,
		Student:       NamedRef{ID: assignment.Student.ID, Name: assignment.Student.Name},
		Patient:       NamedRef{ID: assignment.Patient.ID, Name: assignment.Patient.Name},
	}
}

// NewReattemptEntrySlice converts a slice of assignments into entries.
func NewReattemptEntrySlice(assignments []models.Assignment) []ReattemptEntry {
	entries := make([]ReattemptEntry, 0, len(assignments))
	for _, assignment := range assignments {
		entries = append(entries, NewReattemptEntry(assignment))
	}
	return entries
}
