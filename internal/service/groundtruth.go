package service

import (
	"fmt"
	"strings"

	"github.com/osler-labs/clinsim-go-api/internal/models"
)

// GroundTruth is the assembled reference text for one patient scenario. It
// is built once per request and reused across students in a batch.
type GroundTruth struct {
	PatientName string
	Text        string
}

// AssembleGroundTruth merges the patient identity, structured prompt data and
// symptom list into one canonical reference text for the pipeline.
func AssembleGroundTruth(patient models.Patient, prompt models.Prompt) GroundTruth {
	builder := strings.Builder{}
	fmt.Fprintf(&builder, "Patient ID: %s\n", patient.ID)
	fmt.Fprintf(&builder, "Name: %s\n", patient.Name)
	fmt.Fprintf(&builder, "Mandatory Questions: %s\n", prompt.MandatoryQuestions)
	fmt.Fprintf(&builder, "Predefined Treatments: %s\n", prompt.PredefinedTreatments)
	fmt.Fprintf(&builder, "Medical History: %s\n", prompt.MedicalHistory)
	fmt.Fprintf(&builder, "Correct Diagnosis: %s\n", patient.Answer)
	builder.WriteString("Symptoms:\n")
	builder.WriteString(formatSymptoms(patient.Symptoms))

	return GroundTruth{
		PatientName: patient.Name,
		Text:        builder.String(),
	}
}

func formatSymptoms(symptoms []models.Symptom) string {
	lines := make([]string, 0, len(symptoms))
	for _, symptom := range symptoms {
		lines = append(lines, fmt.Sprintf("Name: %s, Severity: %s, Description: %s",
			symptom.Name, symptom.Severity, symptom.Description))
	}
	return strings.Join(lines, "\n")
}
