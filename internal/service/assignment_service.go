package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/osler-labs/clinsim-go-api/internal/dto"
	"github.com/osler-labs/clinsim-go-api/internal/models"
	"github.com/osler-labs/clinsim-go-api/internal/repository"
)

// ErrStudentNotFound indicates the referenced student does not exist.
var ErrStudentNotFound = errors.New("student not found")

// ErrPatientsNotFound indicates one or more requested patients do not exist.
var ErrPatientsNotFound = errors.New("one or more patients not found")

// ErrFindingsRequired indicates a markable assignment was submitted without findings.
var ErrFindingsRequired = errors.New("findings are required")

// AssignmentService manages the assignment lifecycle up to the point where
// scoring takes over.
type AssignmentService interface {
	AssignPatients(ctx context.Context, payload dto.AssignPatientsRequest, creatorID *uuid.UUID) error
	GetStudentAssignments(ctx context.Context, studentID uuid.UUID) (dto.StudentAssignmentsResponse, error)
	StoreConversation(ctx context.Context, payload dto.StoreConversationRequest) error
	Submit(ctx context.Context, payload dto.SubmitAssignmentRequest) error
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	patients    repository.PatientRepository
	students    repository.StudentRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(assignmentRepo repository.AssignmentRepository, patientRepo repository.PatientRepository, studentRepo repository.StudentRepository, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignmentRepo,
		patients:    patientRepo,
		students:    studentRepo,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) AssignPatients(ctx context.Context, payload dto.AssignPatientsRequest, creatorID *uuid.UUID) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	if _, err := s.students.GetByID(ctx, payload.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	patients, err := s.patients.ListByIDs(ctx, payload.PatientIDs)
	if err != nil {
		return err
	}
	if len(patients) != len(payload.PatientIDs) {
		return ErrPatientsNotFound
	}

	assignments := make([]models.Assignment, 0, len(payload.PatientIDs))
	for _, patientID := range payload.PatientIDs {
		assignments = append(assignments, models.Assignment{
			StudentID: payload.StudentID,
			PatientID: patientID,
			CreatorID: creatorID,
			Status:    models.AssignmentStatusAssigned,
			DueDate:   payload.DueDate,
		})
	}

	if err := s.assignments.BulkCreate(ctx, assignments); err != nil {
		return err
	}

	s.logger.Info().
		Str("student_id", payload.StudentID.String()).
		Int("patients", len(payload.PatientIDs)).
		Msg("patients assigned")

	return nil
}

func (s *assignmentService) GetStudentAssignments(ctx context.Context, studentID uuid.UUID) (dto.StudentAssignmentsResponse, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentAssignmentsResponse{}, ErrStudentNotFound
		}
		return dto.StudentAssignmentsResponse{}, err
	}

	assignments, err := s.assignments.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentAssignmentsResponse{}, err
	}

	assigned := make([]dto.StudentPatientResponse, 0, len(assignments))
	for _, assignment := range assignments {
		assigned = append(assigned, dto.NewStudentPatientResponse(assignment))
	}

	return dto.StudentAssignmentsResponse{
		ID:               student.ID,
		Name:             student.Name,
		AssignedPatients: assigned,
	}, nil
}

// StoreConversation replaces the transcript and moves the assignment to
// inprogress. The log is stored verbatim as the JSON array the client sent.
func (s *assignmentService) StoreConversation(ctx context.Context, payload dto.StoreConversationRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	assignment, err := s.assignments.GetByStudentAndPatient(ctx, payload.StudentID, payload.PatientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	encoded, err := json.Marshal(payload.Messages)
	if err != nil {
		return err
	}

	if err := s.assignments.StoreConversation(ctx, assignment.ID, datatypes.JSON(encoded)); err != nil {
		return err
	}

	s.logger.Info().
		Str("assignment_id", assignment.ID.String()).
		Int("turns", len(payload.Messages)).
		Msg("conversation log stored")

	return nil
}

// Submit records the student's findings and completes the attempt. A stored
// conversation is always required; findings are required only when the
// assignment is markable.
func (s *assignmentService) Submit(ctx context.Context, payload dto.SubmitAssignmentRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	assignment, err := s.assignments.GetByStudentAndPatient(ctx, payload.StudentID, payload.PatientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	if !assignment.HasConversation() {
		return ErrMissingConversation
	}

	findings := strings.TrimSpace(s.sanitizer.Sanitize(payload.Findings))
	if assignment.IsMarkable && findings == "" {
		return ErrFindingsRequired
	}

	var visitNote *string
	if assignment.IsNoteAllow && payload.VisitNote != "" {
		note := strings.TrimSpace(s.sanitizer.Sanitize(payload.VisitNote))
		visitNote = &note
	}

	if err := s.assignments.StoreSubmission(ctx, assignment.ID, findings, visitNote); err != nil {
		return err
	}

	s.logger.Info().
		Str("assignment_id", assignment.ID.String()).
		Msg("assignment submitted")

	return nil
}
