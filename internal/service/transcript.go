package service

import (
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/datatypes"

	"github.com/osler-labs/clinsim-go-api/internal/dto"
)

// ErrMissingConversation indicates scoring or submission was requested before
// the student talked to the patient.
var ErrMissingConversation = errors.New("conversation log is missing")

// NormalizeConversation flattens a raw turn-tagged conversation log into a
// role-labelled text block, one line per turn, chronological order preserved.
// A missing or unparseable log is a hard precondition failure.
func NormalizeConversation(log datatypes.JSON) (string, error) {
	if len(log) == 0 {
		return "", ErrMissingConversation
	}

	var turns []dto.ConversationTurn
	if err := json.Unmarshal(log, &turns); err != nil {
		return "", ErrMissingConversation
	}

	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		prefix := "Student: "
		if turn.IsAI {
			prefix = "AI: "
		}
		lines = append(lines, prefix+turn.Text)
	}

	return strings.Join(lines, "\n"), nil
}

// buildStudentData combines the normalized transcript with the student's
// submitted findings into the text block the pipeline prompts with.
func buildStudentData(transcript, findings string) string {
	builder := strings.Builder{}
	builder.WriteString("Conversation Log:\n")
	builder.WriteString(transcript)
	builder.WriteString("\n\nDiagnosis & Treatments by Student:\n")
	builder.WriteString(findings)
	return builder.String()
}
