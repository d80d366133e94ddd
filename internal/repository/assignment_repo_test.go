package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/osler-labs/clinsim-go-api/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Symptom{},
		&models.Patient{},
		&models.Prompt{},
		&models.Assignment{},
	))
	return db
}

func seedAssignment(t *testing.T, db *gorm.DB) models.Assignment {
	t.Helper()

	student := models.Student{Name: "Jane Doe", Email: uuid.NewString() + "@example.com"}
	require.NoError(t, db.Create(&student).Error)

	patient := models.Patient{Name: "John Carter", Prompt: "Chest pain scenario", Answer: "Stable angina"}
	require.NoError(t, db.Create(&patient).Error)

	assignment := models.Assignment{
		StudentID:  student.ID,
		PatientID:  patient.ID,
		Status:     models.AssignmentStatusAssigned,
		IsMarkable: true,
	}
	require.NoError(t, db.Create(&assignment).Error)
	return assignment
}

func TestApplyScoreWritesAllFieldsAtOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewAssignmentRepository(db)
	assignment := seedAssignment(t, db)

	err := repo.ApplyScore(context.Background(), assignment.ID, ScoreFields{
		Score:                  87,
		MandatoryQuestionScore: 40,
		SymptomsScore:          35,
		TreatmentScore:         4,
		DiagnosisScore:         8,
		Feedback:               "Good work",
	})
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), assignment.ID)
	require.NoError(t, err)
	require.Equal(t, models.AssignmentStatusMarked, stored.Status)
	require.InDelta(t, 87.0, *stored.Score, 1e-9)
	require.InDelta(t, 40.0, *stored.MandatoryQuestionScore, 1e-9)
	require.InDelta(t, 35.0, *stored.SymptomsScore, 1e-9)
	require.InDelta(t, 4.0, *stored.TreatmentScore, 1e-9)
	require.InDelta(t, 8.0, *stored.DiagnosisScore, 1e-9)
	require.Equal(t, "Good work", *stored.Feedback)
}

func TestApplyScoreUnknownAssignment(t *testing.T) {
	db := newTestDB(t)
	repo := NewAssignmentRepository(db)

	err := repo.ApplyScore(context.Background(), uuid.New(), ScoreFields{Score: 50})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestStoreConversationMovesToInProgress(t *testing.T) {
	db := newTestDB(t)
	repo := NewAssignmentRepository(db)
	assignment := seedAssignment(t, db)

	log := datatypes.JSON(`[{"isAI":true,"text":"Hello"},{"isAI":false,"text":"Hi doctor"}]`)
	require.NoError(t, repo.StoreConversation(context.Background(), assignment.ID, log))

	stored, err := repo.GetByID(context.Background(), assignment.ID)
	require.NoError(t, err)
	require.Equal(t, models.AssignmentStatusInProgress, stored.Status)
	require.True(t, stored.HasConversation())
}

func TestClearAttemptResetsLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewAssignmentRepository(db)
	assignment := seedAssignment(t, db)

	log := datatypes.JSON(`[{"isAI":false,"text":"Hi"}]`)
	require.NoError(t, repo.StoreConversation(context.Background(), assignment.ID, log))
	require.NoError(t, repo.StoreSubmission(context.Background(), assignment.ID, "Angina", nil))
	require.NoError(t, repo.ApplyScore(context.Background(), assignment.ID, ScoreFields{Score: 60, Feedback: "ok"}))
	require.NoError(t, repo.SetRequestStatus(context.Background(), assignment.ID, models.RequestStatusPending))

	require.NoError(t, repo.ClearAttempt(context.Background(), assignment.ID))

	stored, err := repo.GetByID(context.Background(), assignment.ID)
	require.NoError(t, err)
	require.Equal(t, models.AssignmentStatusAssigned, stored.Status)
	require.False(t, stored.HasConversation())
	require.Nil(t, stored.Findings)
	require.Equal(t, models.RequestStatusAccepted, *stored.RequestStatus)
	// Scores stay as a record of the previous attempt.
	require.NotNil(t, stored.Score)
}

func TestBulkCreateSkipsExistingPairs(t *testing.T) {
	db := newTestDB(t)
	repo := NewAssignmentRepository(db)
	assignment := seedAssignment(t, db)

	err := repo.BulkCreate(context.Background(), []models.Assignment{
		{StudentID: assignment.StudentID, PatientID: assignment.PatientID, Status: models.AssignmentStatusAssigned},
	})
	require.NoError(t, err)

	assignments, err := repo.ListByStudent(context.Background(), assignment.StudentID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
}

func TestCountersDistinguishMarkedAndConversations(t *testing.T) {
	db := newTestDB(t)
	repo := NewAssignmentRepository(db)

	first := seedAssignment(t, db)
	second := seedAssignment(t, db)
	seedAssignment(t, db)

	log := datatypes.JSON(`[{"isAI":false,"text":"Hi"}]`)
	require.NoError(t, repo.StoreConversation(context.Background(), first.ID, log))
	require.NoError(t, repo.StoreConversation(context.Background(), second.ID, log))
	require.NoError(t, repo.ApplyScore(context.Background(), first.ID, ScoreFields{Score: 80}))

	marked, err := repo.CountMarked(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, marked)

	conversations, err := repo.CountWithConversation(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, conversations)
}
