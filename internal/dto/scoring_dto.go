package dto

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// ScoreAssignmentRequest triggers the pipeline for one student/patient pair.
type ScoreAssignmentRequest struct {
	PatientID uuid.UUID `json:"patientId" validate:"required"`
	StudentID uuid.UUID `json:"studentId" validate:"required"`
}

// ScoreBatchRequest triggers the pipeline for several students against one patient.
type ScoreBatchRequest struct {
	PatientID  uuid.UUID   `json:"patientId" validate:"required"`
	StudentIDs []uuid.UUID `json:"studentIds" validate:"required,min=1,dive,required"`
}

// OverrideScores carries the five human-entered score fields. All are
// required; the override path trusts the instructor's arithmetic.
type OverrideScores struct {
	TotalScore             *float64 `json:"totalScore" validate:"required"`
	MandatoryQuestionScore *float64 `json:"mandatoryQuestionScore" validate:"required"`
	SymptomsScore          *float64 `json:"symptomsScore" validate:"required"`
	TreatmentScore         *float64 `json:"treatmentScore" validate:"required"`
	DiagnosisScore         *float64 `json:"diagnosisScore" validate:"required"`
}

// ScoreOverrideRequest bypasses the LLM pipeline with instructor-entered marks.
type ScoreOverrideRequest struct {
	AssignmentID uuid.UUID      `json:"assignmentId" validate:"required"`
	Feedback     string         `json:"feedback" validate:"required"`
	Scores       OverrideScores `json:"scores" validate:"required"`
}

// SymptomEntry is one ground-truth symptom extracted by the model.
type SymptomEntry struct {
	Name        string `json:"name"`
	Severity    string `json:"severity,omitempty"`
	Description string `json:"description,omitempty"`
}

// StudentSymptomEntry is a symptom the student documented, tagged with
// whether it was reported as present (positive) or absent (negative).
type StudentSymptomEntry struct {
	Name       string `json:"name"`
	Indication string `json:"indication,omitempty"`
}

// ExtractionResult is the structured comparison data the extraction stage
// produces. It lives only within one pipeline invocation and is never
// persisted.
type ExtractionResult struct {
	PredefinedMandatoryQuestions    []string              `json:"predefined_mandatory_questions"`
	StudentMandatoryQuestions       []string              `json:"student_mandatory_questions"`
	PredefinedAppropriateTreatments []string              `json:"predefined_appropriate_treatments"`
	StudentAppropriateTreatments    []string              `json:"student_appropriate_treatments"`
	PredefinedDiagnosis             []string              `json:"predefined_diagnosis"`
	StudentDiagnosis                []string              `json:"student_diagnosis"`
	PredefinedSymptoms              []SymptomEntry        `json:"predefined_symptoms"`
	StudentSymptoms                 []StudentSymptomEntry `json:"student_symptoms"`
}

// ScoreValue accepts either a JSON number or a numeric string. The scoring
// model emits both forms depending on its mood.
type ScoreValue float64

// UnmarshalJSON implements json.Unmarshaler with string-to-number coercion.
func (v *ScoreValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	parsed, err := strconv.ParseFloat(string(bytes.TrimSpace(data)), 64)
	if err != nil {
		return fmt.Errorf("score value %q is not a number", data)
	}
	*v = ScoreValue(parsed)
	return nil
}

// ScoreResult is the validated output of the scoring stage. TotalScore is
// the model's self-reported aggregate and is informational only; the
// persisted total is always recomputed from the four sub-scores.
type ScoreResult struct {
	TotalScore             *ScoreValue `json:"total_score"`
	MandatoryQuestionScore *ScoreValue `json:"mandatory_question_score"`
	SymptomsScore          *ScoreValue `json:"symptoms_score"`
	TreatmentScore         *ScoreValue `json:"treatments_score"`
	DiagnosisScore         *ScoreValue `json:"diagnosis_score"`
	Feedback               string      `json:"feedback"`
}

// Sum recomputes the authoritative total from the four sub-scores.
func (r ScoreResult) Sum() float64 {
	total := 0.0
	for _, v := range []*ScoreValue{r.MandatoryQuestionScore, r.SymptomsScore, r.TreatmentScore, r.DiagnosisScore} {
		if v != nil {
			total += float64(*v)
		}
	}
	return total
}

// ScoreAssignmentResponse is returned by the single-student scoring endpoint.
type ScoreAssignmentResponse struct {
	StructuredData ExtractionResult `json:"structuredData"`
	Summary        string           `json:"summary"`
	JSONResult     ScoreResult      `json:"jsonResult"`
}

// ScoreBatchEntry is one per-student outcome of a batch scoring run. Either
// Error is set, or the scoring fields are.
type ScoreBatchEntry struct {
	StudentID      uuid.UUID         `json:"studentId"`
	StructuredData *ExtractionResult `json:"structuredData,omitempty"`
	Summary        string            `json:"summary,omitempty"`
	TotalScore     *float64          `json:"totalScore,omitempty"`
	Feedback       string            `json:"feedback,omitempty"`
	Error          string            `json:"error,omitempty"`
}
