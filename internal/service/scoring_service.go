package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/osler-labs/clinsim-go-api/internal/dto"
	"github.com/osler-labs/clinsim-go-api/internal/models"
	"github.com/osler-labs/clinsim-go-api/internal/repository"
	"github.com/osler-labs/clinsim-go-api/pkg/ai"
)

// ErrAssignmentNotFound indicates no assignment exists for the pair.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrPatientNotFound indicates the referenced patient does not exist.
var ErrPatientNotFound = errors.New("patient not found")

// ErrPromptNotFound indicates the patient has no structured prompt data.
var ErrPromptNotFound = errors.New("prompt not found")

// ErrNotMarkable indicates the assignment is configured without marking.
var ErrNotMarkable = errors.New("assignment is not markable")

// ErrGenerationFailed indicates the model call itself failed, as opposed to
// the model answering with unusable output.
var ErrGenerationFailed = errors.New("model generation failed")

var scoringOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "clinsim",
	Subsystem: "scoring",
	Name:      "pipeline_outcomes_total",
	Help:      "Number of scoring pipeline runs by outcome",
}, []string{"outcome"})

// ScoringService runs the three-stage assessment pipeline and applies its
// validated outcome to assignments.
type ScoringService interface {
	ScoreAssignment(ctx context.Context, payload dto.ScoreAssignmentRequest) (dto.ScoreAssignmentResponse, error)
	ScoreBatch(ctx context.Context, payload dto.ScoreBatchRequest) ([]dto.ScoreBatchEntry, error)
	Override(ctx context.Context, payload dto.ScoreOverrideRequest) (dto.AssignmentResponse, error)
}

type scoringService struct {
	assignments repository.AssignmentRepository
	patients    repository.PatientRepository
	generator   ai.Generator
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewScoringService constructs a ScoringService instance.
func NewScoringService(assignmentRepo repository.AssignmentRepository, patientRepo repository.PatientRepository, generator ai.Generator, validate *validator.Validate, logger zerolog.Logger) ScoringService {
	return &scoringService{
		assignments: assignmentRepo,
		patients:    patientRepo,
		generator:   generator,
		validator:   validate,
		logger:      logger.With().Str("component", "scoring_service").Logger(),
	}
}

func (s *scoringService) ScoreAssignment(ctx context.Context, payload dto.ScoreAssignmentRequest) (dto.ScoreAssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ScoreAssignmentResponse{}, err
	}

	groundTruth, err := s.loadGroundTruth(ctx, payload.PatientID)
	if err != nil {
		scoringOutcomes.WithLabelValues("precondition_failed").Inc()
		return dto.ScoreAssignmentResponse{}, err
	}

	assignment, err := s.assignments.GetByStudentAndPatient(ctx, payload.StudentID, payload.PatientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			scoringOutcomes.WithLabelValues("precondition_failed").Inc()
			return dto.ScoreAssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.ScoreAssignmentResponse{}, err
	}

	structured, summary, result, err := s.runPipeline(ctx, assignment, groundTruth)
	if err != nil {
		return dto.ScoreAssignmentResponse{}, err
	}

	if err := s.persistScore(ctx, assignment.ID, result); err != nil {
		return dto.ScoreAssignmentResponse{}, err
	}

	s.logger.Info().
		Str("assignment_id", assignment.ID.String()).
		Float64("score", result.Sum()).
		Msg("assignment marked")

	return dto.ScoreAssignmentResponse{
		StructuredData: structured,
		Summary:        summary,
		JSONResult:     result,
	}, nil
}

// ScoreBatch grades several students against the same patient. The ground
// truth is assembled once and reused; a failure for one student is recorded
// in that student's entry and never aborts the rest of the batch.
func (s *scoringService) ScoreBatch(ctx context.Context, payload dto.ScoreBatchRequest) ([]dto.ScoreBatchEntry, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	groundTruth, err := s.loadGroundTruth(ctx, payload.PatientID)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.ScoreBatchEntry, 0, len(payload.StudentIDs))
	for _, studentID := range payload.StudentIDs {
		entries = append(entries, s.scoreBatchEntry(ctx, studentID, payload.PatientID, groundTruth))
	}

	return entries, nil
}

func (s *scoringService) scoreBatchEntry(ctx context.Context, studentID, patientID uuid.UUID, groundTruth GroundTruth) dto.ScoreBatchEntry {
	entry := dto.ScoreBatchEntry{StudentID: studentID}

	assignment, err := s.assignments.GetByStudentAndPatient(ctx, studentID, patientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrAssignmentNotFound
		}
		scoringOutcomes.WithLabelValues("precondition_failed").Inc()
		entry.Error = batchErrorMessage(err)
		return entry
	}

	structured, summary, result, err := s.runPipeline(ctx, assignment, groundTruth)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("student_id", studentID.String()).
			Msg("batch scoring entry failed")
		entry.Error = batchErrorMessage(err)
		return entry
	}

	if err := s.persistScore(ctx, assignment.ID, result); err != nil {
		entry.Error = batchErrorMessage(err)
		return entry
	}

	total := result.Sum()
	entry.StructuredData = &structured
	entry.Summary = summary
	entry.TotalScore = &total
	entry.Feedback = result.Feedback
	return entry
}

// Override bypasses the pipeline with instructor-entered marks. The stored
// total is still recomputed from the four sub-scores; the submitted
// totalScore is accepted for API compatibility but never persisted unverified.
func (s *scoringService) Override(ctx context.Context, payload dto.ScoreOverrideRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	scores := payload.Scores
	total := *scores.MandatoryQuestionScore + *scores.SymptomsScore + *scores.TreatmentScore + *scores.DiagnosisScore
	fields := repository.ScoreFields{
		Score:                  total,
		MandatoryQuestionScore: *scores.MandatoryQuestionScore,
		SymptomsScore:          *scores.SymptomsScore,
		TreatmentScore:         *scores.TreatmentScore,
		DiagnosisScore:         *scores.DiagnosisScore,
		Feedback:               payload.Feedback,
	}

	if err := s.assignments.ApplyScore(ctx, assignment.ID, fields); err != nil {
		scoringOutcomes.WithLabelValues("persistence_failed").Inc()
		return dto.AssignmentResponse{}, err
	}
	scoringOutcomes.WithLabelValues("overridden").Inc()

	updated, err := s.assignments.GetByID(ctx, assignment.ID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().
		Str("assignment_id", assignment.ID.String()).
		Float64("score", total).
		Msg("assignment score overridden")

	return dto.NewAssignmentResponse(updated), nil
}

// runPipeline executes the extraction, summary and scoring stages in strict
// sequence. It never writes; persistence is the caller's final step.
func (s *scoringService) runPipeline(parent context.Context, assignment models.Assignment, groundTruth GroundTruth) (dto.ExtractionResult, string, dto.ScoreResult, error) {
	tracer := otel.Tracer("github.com/osler-labs/clinsim-go-api/internal/service")
	ctx, span := tracer.Start(parent, "scoring.pipeline")
	span.SetAttributes(
		attribute.String("scoring.assignment_id", assignment.ID.String()),
		attribute.String("scoring.student_id", assignment.StudentID.String()),
	)
	defer span.End()

	fail := func(outcome string, err error) (dto.ExtractionResult, string, dto.ScoreResult, error) {
		scoringOutcomes.WithLabelValues(outcome).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return dto.ExtractionResult{}, "", dto.ScoreResult{}, err
	}

	if !assignment.IsMarkable {
		return fail("precondition_failed", ErrNotMarkable)
	}

	transcript, err := NormalizeConversation(assignment.ConversationLog)
	if err != nil {
		return fail("precondition_failed", err)
	}

	findings := ""
	if assignment.Findings != nil {
		findings = *assignment.Findings
	}
	studentData := buildStudentData(transcript, findings)

	rawExtraction, err := s.generator.Generate(ctx, extractionPrompt(studentData, groundTruth.Text))
	if err != nil {
		return fail("generation_failed", fmt.Errorf("%w: %v", ErrGenerationFailed, err))
	}

	var structured dto.ExtractionResult
	if err := ai.DecodeObject("extraction", rawExtraction, extractionSchema, &structured); err != nil {
		return fail("malformed_output", err)
	}

	rawSummary, err := s.generator.Generate(ctx, summaryPrompt(studentData, groundTruth.Text))
	if err != nil {
		return fail("generation_failed", fmt.Errorf("%w: %v", ErrGenerationFailed, err))
	}

	summary := strings.TrimSpace(rawSummary)
	if summary == "" {
		return fail("malformed_output", &ai.MalformedOutputError{Stage: "summary", Reason: "empty response"})
	}

	structuredJSON, err := json.Marshal(structured)
	if err != nil {
		return fail("malformed_output", err)
	}

	rawScore, err := s.generator.Generate(ctx, scoringPrompt(summary, string(structuredJSON)))
	if err != nil {
		return fail("generation_failed", fmt.Errorf("%w: %v", ErrGenerationFailed, err))
	}

	var result dto.ScoreResult
	if err := ai.DecodeObject("scoring", rawScore, scoreSchema, &result); err != nil {
		return fail("malformed_output", err)
	}
	if err := validateScoreResult(result); err != nil {
		return fail("malformed_output", err)
	}

	span.SetAttributes(attribute.Float64("scoring.total", result.Sum()))
	return structured, summary, result, nil
}

func (s *scoringService) persistScore(ctx context.Context, assignmentID uuid.UUID, result dto.ScoreResult) error {
	fields := repository.ScoreFields{
		Score:                  result.Sum(),
		MandatoryQuestionScore: float64(*result.MandatoryQuestionScore),
		SymptomsScore:          float64(*result.SymptomsScore),
		TreatmentScore:         float64(*result.TreatmentScore),
		DiagnosisScore:         float64(*result.DiagnosisScore),
		Feedback:               result.Feedback,
	}

	if err := s.assignments.ApplyScore(ctx, assignmentID, fields); err != nil {
		scoringOutcomes.WithLabelValues("persistence_failed").Inc()
		return err
	}

	scoringOutcomes.WithLabelValues("marked").Inc()
	return nil
}

func (s *scoringService) loadGroundTruth(ctx context.Context, patientID uuid.UUID) (GroundTruth, error) {
	patient, err := s.patients.GetWithSymptoms(ctx, patientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GroundTruth{}, ErrPatientNotFound
		}
		return GroundTruth{}, err
	}

	prompt, err := s.patients.GetPrompt(ctx, patientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GroundTruth{}, ErrPromptNotFound
		}
		return GroundTruth{}, err
	}

	return AssembleGroundTruth(patient, prompt), nil
}

// validateScoreResult enforces the numeric contract on the four sub-scores.
// The schema already requires their presence; this guards the decoded values.
func validateScoreResult(result dto.ScoreResult) error {
	missing := []string{}
	if result.MandatoryQuestionScore == nil {
		missing = append(missing, "mandatory_question_score")
	}
	if result.SymptomsScore == nil {
		missing = append(missing, "symptoms_score")
	}
	if result.TreatmentScore == nil {
		missing = append(missing, "treatments_score")
	}
	if result.DiagnosisScore == nil {
		missing = append(missing, "diagnosis_score")
	}
	if len(missing) > 0 {
		return &ai.MalformedOutputError{
			Stage:  "scoring",
			Reason: "missing score fields: " + strings.Join(missing, ", "),
		}
	}
	return nil
}

func batchErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrAssignmentNotFound):
		return "Assignment not found."
	case errors.Is(err, ErrMissingConversation):
		return "Conversation log is missing."
	case errors.Is(err, ErrNotMarkable):
		return "Assignment is not markable."
	default:
		return err.Error()
	}
}
