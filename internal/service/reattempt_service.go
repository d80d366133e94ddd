package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/osler-labs/clinsim-go-api/internal/dto"
	"github.com/osler-labs/clinsim-go-api/internal/models"
	"github.com/osler-labs/clinsim-go-api/internal/repository"
)

// ErrNoReattemptRequests indicates no matching reattempt requests exist.
var ErrNoReattemptRequests = errors.New("no pending reattempt requests found")

// ReattemptService manages the reattempt request overlay on assignments.
type ReattemptService interface {
	Request(ctx context.Context, payload dto.ReattemptRequest) (string, error)
	Resolve(ctx context.Context, payload dto.ReattemptResolveRequest) error
	ListPending(ctx context.Context) ([]dto.ReattemptEntry, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]dto.ReattemptEntry, error)
}

type reattemptService struct {
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewReattemptService constructs a ReattemptService instance.
func NewReattemptService(assignmentRepo repository.AssignmentRepository, validate *validator.Validate, logger zerolog.Logger) ReattemptService {
	return &reattemptService{
		assignments: assignmentRepo,
		validator:   validate,
		logger:      logger.With().Str("component", "reattempt_service").Logger(),
	}
}

func (s *reattemptService) Request(ctx context.Context, payload dto.ReattemptRequest) (string, error) {
	if err := s.validator.Struct(payload); err != nil {
		return "", err
	}

	assignment, err := s.assignments.GetByStudentAndPatient(ctx, payload.StudentID, payload.PatientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrAssignmentNotFound
		}
		return "", err
	}

	if err := s.assignments.SetRequestStatus(ctx, assignment.ID, models.RequestStatusPending); err != nil {
		return "", err
	}

	s.logger.Info().
		Str("assignment_id", assignment.ID.String()).
		Msg("reattempt requested")

	return models.RequestStatusPending, nil
}

// Resolve applies the instructor's decision. Acceptance clears the transcript
// and findings and restarts the lifecycle at assigned; declining leaves the
// assignment untouched apart from the request status.
func (s *reattemptService) Resolve(ctx context.Context, payload dto.ReattemptResolveRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	switch payload.Action {
	case dto.ReattemptActionAccept:
		if err := s.assignments.ClearAttempt(ctx, assignment.ID); err != nil {
			return err
		}
		s.logger.Info().
			Str("assignment_id", assignment.ID.String()).
			Msg("reattempt accepted, assignment cleared")
	case dto.ReattemptActionDecline:
		if err := s.assignments.SetRequestStatus(ctx, assignment.ID, models.RequestStatusDeclined); err != nil {
			return err
		}
		s.logger.Info().
			Str("assignment_id", assignment.ID.String()).
			Msg("reattempt declined")
	}

	return nil
}

func (s *reattemptService) ListPending(ctx context.Context) ([]dto.ReattemptEntry, error) {
	assignments, err := s.assignments.ListPendingReattempts(ctx)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, ErrNoReattemptRequests
	}
	return dto.NewReattemptEntrySlice(assignments), nil
}

func (s *reattemptService) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]dto.ReattemptEntry, error) {
	assignments, err := s.assignments.ListReattemptsByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, ErrNoReattemptRequests
	}
	return dto.NewReattemptEntrySlice(assignments), nil
}
