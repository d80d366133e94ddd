package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/osler-labs/clinsim-go-api/internal/models"
	"github.com/osler-labs/clinsim-go-api/internal/repository"
	"github.com/osler-labs/clinsim-go-api/pkg/ai"
)

type memoryAssignmentRepo struct {
	assignments map[uuid.UUID]models.Assignment
}

func newMemoryAssignmentRepo() *memoryAssignmentRepo {
	return &memoryAssignmentRepo{assignments: make(map[uuid.UUID]models.Assignment)}
}

func (m *memoryAssignmentRepo) put(assignment models.Assignment) models.Assignment {
	if assignment.ID == uuid.Nil {
		assignment.ID = uuid.New()
	}
	m.assignments[assignment.ID] = assignment
	return assignment
}

func (m *memoryAssignmentRepo) GetByID(_ context.Context, id uuid.UUID) (models.Assignment, error) {
	assignment, ok := m.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (m *memoryAssignmentRepo) GetByStudentAndPatient(_ context.Context, studentID, patientID uuid.UUID) (models.Assignment, error) {
	for _, assignment := range m.assignments {
		if assignment.StudentID == studentID && assignment.PatientID == patientID {
			return assignment, nil
		}
	}
	return models.Assignment{}, gorm.ErrRecordNotFound
}

func (m *memoryAssignmentRepo) ListByStudent(_ context.Context, studentID uuid.UUID) ([]models.Assignment, error) {
	results := make([]models.Assignment, 0)
	for _, assignment := range m.assignments {
		if assignment.StudentID == studentID {
			results = append(results, assignment)
		}
	}
	return results, nil
}

func (m *memoryAssignmentRepo) BulkCreate(_ context.Context, assignments []models.Assignment) error {
	for _, assignment := range assignments {
		exists := false
		for _, stored := range m.assignments {
			if stored.StudentID == assignment.StudentID && stored.PatientID == assignment.PatientID {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		m.put(assignment)
	}
	return nil
}

func (m *memoryAssignmentRepo) StoreConversation(_ context.Context, id uuid.UUID, log datatypes.JSON) error {
	assignment, ok := m.assignments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	assignment.ConversationLog = log
	assignment.Status = models.AssignmentStatusInProgress
	assignment.UpdatedAt = time.Now()
	m.assignments[id] = assignment
	return nil
}

func (m *memoryAssignmentRepo) StoreSubmission(_ context.Context, id uuid.UUID, findings string, visitNote *string) error {
	assignment, ok := m.assignments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	assignment.Findings = &findings
	if visitNote != nil {
		assignment.VisitNote = visitNote
	}
	assignment.Status = models.AssignmentStatusCompleted
	assignment.UpdatedAt = time.Now()
	m.assignments[id] = assignment
	return nil
}

func (m *memoryAssignmentRepo) ApplyScore(_ context.Context, id uuid.UUID, fields repository.ScoreFields) error {
	assignment, ok := m.assignments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	assignment.Score = &fields.Score
	assignment.MandatoryQuestionScore = &fields.MandatoryQuestionScore
	assignment.SymptomsScore = &fields.SymptomsScore
	assignment.TreatmentScore = &fields.TreatmentScore
	assignment.DiagnosisScore = &fields.DiagnosisScore
	assignment.Feedback = &fields.Feedback
	assignment.Status = models.AssignmentStatusMarked
	assignment.UpdatedAt = time.Now()
	m.assignments[id] = assignment
	return nil
}

func (m *memoryAssignmentRepo) SetRequestStatus(_ context.Context, id uuid.UUID, status string) error {
	assignment, ok := m.assignments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	assignment.RequestStatus = &status
	assignment.UpdatedAt = time.Now()
	m.assignments[id] = assignment
	return nil
}

func (m *memoryAssignmentRepo) ClearAttempt(_ context.Context, id uuid.UUID) error {
	assignment, ok := m.assignments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	accepted := models.RequestStatusAccepted
	assignment.ConversationLog = nil
	assignment.Findings = nil
	assignment.RequestStatus = &accepted
	assignment.Status = models.AssignmentStatusAssigned
	assignment.UpdatedAt = time.Now()
	m.assignments[id] = assignment
	return nil
}

func (m *memoryAssignmentRepo) ListPendingReattempts(_ context.Context) ([]models.Assignment, error) {
	results := make([]models.Assignment, 0)
	for _, assignment := range m.assignments {
		if assignment.RequestStatus != nil && *assignment.RequestStatus == models.RequestStatusPending {
			results = append(results, assignment)
		}
	}
	return results, nil
}

func (m *memoryAssignmentRepo) ListReattemptsByCreator(_ context.Context, creatorID uuid.UUID) ([]models.Assignment, error) {
	results := make([]models.Assignment, 0)
	for _, assignment := range m.assignments {
		if assignment.CreatorID != nil && *assignment.CreatorID == creatorID && assignment.RequestStatus != nil {
			results = append(results, assignment)
		}
	}
	return results, nil
}

func (m *memoryAssignmentRepo) CountMarked(_ context.Context) (int64, error) {
	var count int64
	for _, assignment := range m.assignments {
		if assignment.Status == models.AssignmentStatusMarked {
			count++
		}
	}
	return count, nil
}

func (m *memoryAssignmentRepo) CountWithConversation(_ context.Context) (int64, error) {
	var count int64
	for _, assignment := range m.assignments {
		if len(assignment.ConversationLog) > 0 {
			count++
		}
	}
	return count, nil
}

type memoryPatientRepo struct {
	patients map[uuid.UUID]models.Patient
	prompts  map[uuid.UUID]models.Prompt
}

func newMemoryPatientRepo() *memoryPatientRepo {
	return &memoryPatientRepo{
		patients: make(map[uuid.UUID]models.Patient),
		prompts:  make(map[uuid.UUID]models.Prompt),
	}
}

func (m *memoryPatientRepo) put(patient models.Patient, prompt *models.Prompt) models.Patient {
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	m.patients[patient.ID] = patient
	if prompt != nil {
		prompt.PatientID = patient.ID
		m.prompts[patient.ID] = *prompt
	}
	return patient
}

func (m *memoryPatientRepo) GetByID(_ context.Context, id uuid.UUID) (models.Patient, error) {
	patient, ok := m.patients[id]
	if !ok {
		return models.Patient{}, gorm.ErrRecordNotFound
	}
	return patient, nil
}

func (m *memoryPatientRepo) GetWithSymptoms(ctx context.Context, id uuid.UUID) (models.Patient, error) {
	return m.GetByID(ctx, id)
}

func (m *memoryPatientRepo) GetPrompt(_ context.Context, patientID uuid.UUID) (models.Prompt, error) {
	prompt, ok := m.prompts[patientID]
	if !ok {
		return models.Prompt{}, gorm.ErrRecordNotFound
	}
	return prompt, nil
}

func (m *memoryPatientRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]models.Patient, error) {
	results := make([]models.Patient, 0, len(ids))
	for _, id := range ids {
		if patient, ok := m.patients[id]; ok {
			results = append(results, patient)
		}
	}
	return results, nil
}

func (m *memoryPatientRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.patients)), nil
}

type memoryStudentRepo struct {
	students map[uuid.UUID]models.Student
}

func newMemoryStudentRepo() *memoryStudentRepo {
	return &memoryStudentRepo{students: make(map[uuid.UUID]models.Student)}
}

func (m *memoryStudentRepo) put(student models.Student) models.Student {
	if student.ID == uuid.Nil {
		student.ID = uuid.New()
	}
	m.students[student.ID] = student
	return student
}

func (m *memoryStudentRepo) GetByID(_ context.Context, id uuid.UUID) (models.Student, error) {
	student, ok := m.students[id]
	if !ok {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	return student, nil
}

func (m *memoryStudentRepo) CountNonAdmin(_ context.Context) (int64, error) {
	var count int64
	for _, student := range m.students {
		if !student.IsAdmin {
			count++
		}
	}
	return count, nil
}

// stubGenerator replays canned responses in call order. A nil entry in errs
// means that call succeeds.
type stubGenerator struct {
	responses []string
	errs      []error
	calls     int
	prompts   []ai.PromptSpec
}

func (g *stubGenerator) Generate(_ context.Context, spec ai.PromptSpec) (string, error) {
	index := g.calls
	g.calls++
	g.prompts = append(g.prompts, spec)

	if index < len(g.errs) && g.errs[index] != nil {
		return "", g.errs[index]
	}
	if index < len(g.responses) {
		return g.responses[index], nil
	}
	return "", errors.New("no scripted response")
}
