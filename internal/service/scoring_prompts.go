package service

import (
	"strings"

	"github.com/osler-labs/clinsim-go-api/pkg/ai"
)

const extractionSystemPrompt = "You are an assistant that extracts medical information from conversational and paragraph data."

const extractionOutputShape = `{
    "predefined_mandatory_questions": [],
    "student_mandatory_questions": [],
    "predefined_appropriate_treatments": [],
    "student_appropriate_treatments": [],
    "predefined_diagnosis": [],
    "student_diagnosis": [],
    "predefined_symptoms": [],
    "student_symptoms": []
}`

func extractionPrompt(studentData, predefinedData string) ai.PromptSpec {
	builder := strings.Builder{}
	builder.WriteString("Extract the following information from the provided data in JSON format only.\n\n")
	builder.WriteString("Student Data:\n")
	builder.WriteString(studentData)
	builder.WriteString("\n\nPredefined Data:\n")
	builder.WriteString(predefinedData)
	builder.WriteString("\n\nJSON output format:\n")
	builder.WriteString(extractionOutputShape)
	builder.WriteString("\n\nEach predefined_symptoms entry is an object with name, severity and description. ")
	builder.WriteString("Each student_symptoms entry is an object with name and indication, where indication is \"positive\" when the student reported the symptom as present and \"negative\" when reported as absent.\n")
	builder.WriteString("Only respond with the JSON object, and ensure no extra text is included.")

	return ai.PromptSpec{
		System:   extractionSystemPrompt,
		User:     builder.String(),
		JSONOnly: true,
	}
}

const summarySystemPrompt = "You are an assistant providing a comprehensive summary of a medical training session, including details on student interactions and predefined patient data."

func summaryPrompt(studentData, predefinedData string) ai.PromptSpec {
	builder := strings.Builder{}
	builder.WriteString("Provide a detailed summary of the following data. Include information about the student's questions, findings, and comparisons with the predefined patient data:\n\n")
	builder.WriteString("Student Data:\n")
	builder.WriteString(studentData)
	builder.WriteString("\n\nPredefined Data:\n")
	builder.WriteString(predefinedData)
	builder.WriteString("\n\nSummary:\n")
	builder.WriteString("- What questions the student asked.\n")
	builder.WriteString("- What findings the student identified.\n")
	builder.WriteString("- Comparison with predefined symptoms, treatments, and diagnosis.\n")
	builder.WriteString("- Include key points, differences, and completeness of the student's assessment.\n")
	builder.WriteString("- It should be a statistical summary as it is going to be used for scoring and marking.\n")
	builder.WriteString("- Each scenario and detail question answers should be highlighted in the summary.\n\n")
	builder.WriteString("Only provide a clear, narrative summary without JSON formatting.")

	return ai.PromptSpec{
		System: summarySystemPrompt,
		User:   builder.String(),
	}
}

const scoringSystemPrompt = "You are a tutor evaluating a student's performance based on a medical training summary. " +
	"You will evaluate the student based on specific scoring criteria and provide scores for each section, along with constructive feedback."

func scoringPrompt(summary, structuredData string) ai.PromptSpec {
	builder := strings.Builder{}
	builder.WriteString("Based on the following information, assess the student's performance. Respond with a JSON object only.\n\n")
	builder.WriteString("Scoring Criteria:\n")
	builder.WriteString("1. Proportion of mandatory questions asked: mandatory_question_score, out of 45.\n")
	builder.WriteString("2. Proportion of positive symptoms included in the note: symptoms_score, out of 40.\n")
	builder.WriteString("3. Correct diagnosis: diagnosis_score, out of 10.\n")
	builder.WriteString("4. Appropriate treatments: treatments_score, out of 5.\n\n")
	builder.WriteString("Detailed Summary:\n")
	builder.WriteString(summary)
	builder.WriteString("\n\nStructured Comparison Data:\n")
	builder.WriteString(structuredData)
	builder.WriteString("\n\nJSON output format:\n")
	builder.WriteString(`{
    "total_score": 0,
    "mandatory_question_score": 0,
    "symptoms_score": 0,
    "treatments_score": 0,
    "diagnosis_score": 0,
    "feedback": ""
}`)
	builder.WriteString("\n\nEach score must be numeric. Feedback should address every section. ")
	builder.WriteString("Only respond with the JSON object, and ensure no extra text is included.")

	return ai.PromptSpec{
		System:   scoringSystemPrompt,
		User:     builder.String(),
		JSONOnly: true,
	}
}
