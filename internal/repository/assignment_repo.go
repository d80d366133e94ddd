package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/osler-labs/clinsim-go-api/internal/models"
)

// ScoreFields groups the values applied by a scoring write. The whole set is
// written in one update together with the marked status; there is no partial
// score state.
type ScoreFields struct {
	Score                  float64
	MandatoryQuestionScore float64
	SymptomsScore          float64
	TreatmentScore         float64
	DiagnosisScore         float64
	Feedback               string
}

// AssignmentRepository defines persistence operations for assignments.
type AssignmentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.Assignment, error)
	GetByStudentAndPatient(ctx context.Context, studentID, patientID uuid.UUID) (models.Assignment, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Assignment, error)
	BulkCreate(ctx context.Context, assignments []models.Assignment) error

	StoreConversation(ctx context.Context, id uuid.UUID, log datatypes.JSON) error
	StoreSubmission(ctx context.Context, id uuid.UUID, findings string, visitNote *string) error
	ApplyScore(ctx context.Context, id uuid.UUID, fields ScoreFields) error

	SetRequestStatus(ctx context.Context, id uuid.UUID, status string) error
	ClearAttempt(ctx context.Context, id uuid.UUID) error
	ListPendingReattempts(ctx context.Context) ([]models.Assignment, error)
	ListReattemptsByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.Assignment, error)

	CountMarked(ctx context.Context) (int64, error)
	CountWithConversation(ctx context.Context) (int64, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, "id = ?", id).Error; err != nil {
		return models.Assignment{}, err
	}
	return assignment, nil
}

func (r *assignmentRepository) GetByStudentAndPatient(ctx context.Context, studentID, patientID uuid.UUID) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("patient_id = ?", patientID).
		First(&assignment).Error; err != nil {
		return models.Assignment{}, err
	}
	return assignment, nil
}

func (r *assignmentRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("Patient.Symptoms").
		Where("student_id = ?", studentID).
		Order("created_at ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) BulkCreate(ctx context.Context, assignments []models.Assignment) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&assignments).Error
}

func (r *assignmentRepository) StoreConversation(ctx context.Context, id uuid.UUID, log datatypes.JSON) error {
	return r.updateByID(ctx, id, map[string]interface{}{
		"conversation_log": log,
		"status":           models.AssignmentStatusInProgress,
	})
}

func (r *assignmentRepository) StoreSubmission(ctx context.Context, id uuid.UUID, findings string, visitNote *string) error {
	values := map[string]interface{}{
		"findings": findings,
		"status":   models.AssignmentStatusCompleted,
	}
	if visitNote != nil {
		values["visit_note"] = *visitNote
	}
	return r.updateByID(ctx, id, values)
}

// ApplyScore is the single write path that sets score fields. All five score
// columns, the feedback and the marked status land in one UPDATE, so a
// failure leaves the row exactly as it was.
func (r *assignmentRepository) ApplyScore(ctx context.Context, id uuid.UUID, fields ScoreFields) error {
	return r.updateByID(ctx, id, map[string]interface{}{
		"score":                    fields.Score,
		"mandatory_question_score": fields.MandatoryQuestionScore,
		"symptoms_score":           fields.SymptomsScore,
		"treatment_score":          fields.TreatmentScore,
		"diagnosis_score":          fields.DiagnosisScore,
		"feedback":                 fields.Feedback,
		"status":                   models.AssignmentStatusMarked,
	})
}

func (r *assignmentRepository) SetRequestStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.updateByID(ctx, id, map[string]interface{}{"request_status": status})
}

func (r *assignmentRepository) ClearAttempt(ctx context.Context, id uuid.UUID) error {
	return r.updateByID(ctx, id, map[string]interface{}{
		"conversation_log": nil,
		"findings":         nil,
		"request_status":   models.RequestStatusAccepted,
		"status":           models.AssignmentStatusAssigned,
	})
}

func (r *assignmentRepository) ListPendingReattempts(ctx context.Context) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Patient").
		Where("request_status = ?", models.RequestStatusPending).
		Order("updated_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) ListReattemptsByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Patient").
		Where("creator_id = ?", creatorID).
		Where("request_status IS NOT NULL").
		Order("updated_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) CountMarked(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("status = ?", models.AssignmentStatusMarked).
		Count(&count).Error
	return count, err
}

func (r *assignmentRepository) CountWithConversation(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("conversation_log IS NOT NULL").
		Count(&count).Error
	return count, err
}

func (r *assignmentRepository) updateByID(ctx context.Context, id uuid.UUID, values map[string]interface{}) error {
	values["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("id = ?", id).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
