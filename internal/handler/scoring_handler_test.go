package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/osler-labs/clinsim-go-api/internal/dto"
	"github.com/osler-labs/clinsim-go-api/internal/handler"
	"github.com/osler-labs/clinsim-go-api/internal/service"
	"github.com/osler-labs/clinsim-go-api/pkg/ai"
)

type mockScoringService struct {
	lastScore    dto.ScoreAssignmentRequest
	response     dto.ScoreAssignmentResponse
	batchEntries []dto.ScoreBatchEntry
	override     dto.AssignmentResponse
	err          error
}

func (m *mockScoringService) ScoreAssignment(_ context.Context, payload dto.ScoreAssignmentRequest) (dto.ScoreAssignmentResponse, error) {
	m.lastScore = payload
	if m.err != nil {
		return dto.ScoreAssignmentResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockScoringService) ScoreBatch(_ context.Context, _ dto.ScoreBatchRequest) ([]dto.ScoreBatchEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.batchEntries, nil
}

func (m *mockScoringService) Override(_ context.Context, _ dto.ScoreOverrideRequest) (dto.AssignmentResponse, error) {
	if m.err != nil {
		return dto.AssignmentResponse{}, m.err
	}
	return m.override, nil
}

func newScoringApp(svc service.ScoringService) *fiber.App {
	app := fiber.New()
	handler.NewScoringHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1/scoring"))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func TestScoringHandler_ScoreSuccess(t *testing.T) {
	total := dto.ScoreValue(40)
	svc := &mockScoringService{response: dto.ScoreAssignmentResponse{
		Summary: "A thorough consultation.",
		JSONResult: dto.ScoreResult{
			MandatoryQuestionScore: &total,
			Feedback:               "Well done",
		},
	}}
	app := newScoringApp(svc)

	payload := dto.ScoreAssignmentRequest{PatientID: uuid.New(), StudentID: uuid.New()}
	resp := postJSON(t, app, "/api/v1/scoring/assignments", payload)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                        `json:"success"`
		Data    dto.ScoreAssignmentResponse `json:"data"`
		Message string                      `json:"message"`
	}
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Equal(t, "assignment marked", response.Message)
	require.Equal(t, "A thorough consultation.", response.Data.Summary)
	require.Equal(t, payload.StudentID, svc.lastScore.StudentID)
}

func TestScoringHandler_ScoreErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{name: "assignment missing", err: service.ErrAssignmentNotFound, statusCode: fiber.StatusNotFound},
		{name: "patient missing", err: service.ErrPatientNotFound, statusCode: fiber.StatusNotFound},
		{name: "prompt missing", err: service.ErrPromptNotFound, statusCode: fiber.StatusNotFound},
		{name: "no conversation", err: service.ErrMissingConversation, statusCode: fiber.StatusBadRequest},
		{name: "not markable", err: service.ErrNotMarkable, statusCode: fiber.StatusBadRequest},
		{name: "no credential", err: ai.ErrNoActiveKey, statusCode: fiber.StatusBadGateway},
		{name: "provider down", err: service.ErrGenerationFailed, statusCode: fiber.StatusBadGateway},
		{name: "malformed output", err: &ai.MalformedOutputError{Stage: "scoring", Reason: "invalid json"}, statusCode: fiber.StatusBadGateway},
		{name: "generic", err: errors.New("boom"), statusCode: fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newScoringApp(&mockScoringService{err: tc.err})

			payload := dto.ScoreAssignmentRequest{PatientID: uuid.New(), StudentID: uuid.New()}
			resp := postJSON(t, app, "/api/v1/scoring/assignments", payload)
			require.Equal(t, tc.statusCode, resp.StatusCode)

			var response struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
			}
			decodeResponse(t, resp, &response)
			require.False(t, response.Success)
			require.NotEmpty(t, response.Message)
		})
	}
}

func TestScoringHandler_MalformedOutputMessageIsDistinct(t *testing.T) {
	app := newScoringApp(&mockScoringService{err: &ai.MalformedOutputError{Stage: "extraction", Reason: "not json"}})

	payload := dto.ScoreAssignmentRequest{PatientID: uuid.New(), StudentID: uuid.New()}
	resp := postJSON(t, app, "/api/v1/scoring/assignments", payload)
	require.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	var response struct {
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, "model returned malformed output", response.Message)
}

func TestScoringHandler_BatchReturnsPerStudentEntries(t *testing.T) {
	total := 87.0
	succeeded := uuid.New()
	failed := uuid.New()
	svc := &mockScoringService{batchEntries: []dto.ScoreBatchEntry{
		{StudentID: succeeded, TotalScore: &total, Feedback: "Good"},
		{StudentID: failed, Error: "Assignment not found."},
	}}
	app := newScoringApp(svc)

	payload := dto.ScoreBatchRequest{PatientID: uuid.New(), StudentIDs: []uuid.UUID{succeeded, failed}}
	resp := postJSON(t, app, "/api/v1/scoring/assignments/batch", payload)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                 `json:"success"`
		Data    []dto.ScoreBatchEntry `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Len(t, response.Data, 2)
	require.Empty(t, response.Data[0].Error)
	require.Equal(t, "Assignment not found.", response.Data[1].Error)
}

func TestScoringHandler_OverrideSuccess(t *testing.T) {
	score := 40.0
	svc := &mockScoringService{override: dto.AssignmentResponse{ID: uuid.New(), Status: "marked", Score: &score}}
	app := newScoringApp(svc)

	ten := 10.0
	payload := dto.ScoreOverrideRequest{
		AssignmentID: uuid.New(),
		Feedback:     "Adjusted",
		Scores: dto.OverrideScores{
			TotalScore:             &ten,
			MandatoryQuestionScore: &ten,
			SymptomsScore:          &ten,
			TreatmentScore:         &ten,
			DiagnosisScore:         &ten,
		},
	}
	resp := postJSON(t, app, "/api/v1/scoring/override", payload)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                   `json:"success"`
		Data    dto.AssignmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, "marked", response.Data.Status)
}

func TestScoringHandler_InvalidBody(t *testing.T) {
	app := newScoringApp(&mockScoringService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scoring/assignments", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
