package service

import "github.com/osler-labs/clinsim-go-api/pkg/ai"

// Output contracts for the JSON-producing stages. Parsing and schema
// validation both go through ai.DecodeObject so a contract violation is
// always a *ai.MalformedOutputError, never an opaque parse failure.

var extractionSchema = ai.MustCompileSchema("extraction.json", `{
	"type": "object",
	"required": [
		"predefined_mandatory_questions",
		"student_mandatory_questions",
		"predefined_appropriate_treatments",
		"student_appropriate_treatments",
		"predefined_diagnosis",
		"student_diagnosis",
		"predefined_symptoms",
		"student_symptoms"
	],
	"properties": {
		"predefined_mandatory_questions": {"type": "array", "items": {"type": "string"}},
		"student_mandatory_questions": {"type": "array", "items": {"type": "string"}},
		"predefined_appropriate_treatments": {"type": "array", "items": {"type": "string"}},
		"student_appropriate_treatments": {"type": "array", "items": {"type": "string"}},
		"predefined_diagnosis": {"type": "array", "items": {"type": "string"}},
		"student_diagnosis": {"type": "array", "items": {"type": "string"}},
		"predefined_symptoms": {"type": "array"},
		"student_symptoms": {"type": "array"}
	}
}`)

var scoreSchema = ai.MustCompileSchema("score.json", `{
	"type": "object",
	"required": [
		"mandatory_question_score",
		"symptoms_score",
		"treatments_score",
		"diagnosis_score"
	],
	"properties": {
		"total_score": {"type": ["number", "string"]},
		"mandatory_question_score": {"type": ["number", "string"]},
		"symptoms_score": {"type": ["number", "string"]},
		"treatments_score": {"type": ["number", "string"]},
		"diagnosis_score": {"type": ["number", "string"]},
		"feedback": {"type": "string"}
	}
}`)
