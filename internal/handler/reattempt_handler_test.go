package handler_test

import (
	"context"
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
)

type mockReattemptService struct {
	pendingCalls int
	creatorCalls int
	lastCreator  uuid.UUID
	entries      []dto.ReattemptEntry
	err          error
}

func (m *mockReattemptService) Request(_ context.Context, _ dto.ReattemptRequest) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "pending", nil
}

func (m *mockReattemptService) Resolve(_ context.Context, _ dto.ReattemptResolveRequest) error {
	return m.err
}

func (m *mockReattemptService) ListPending(_ context.Context) ([]dto.ReattemptEntry, error) {
	m.pendingCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

func (m *mockReattemptService) ListByCreator(_ context.Context, creatorID uuid.UUID) ([]dto.ReattemptEntry, error) {
	m.creatorCalls++
	m.lastCreator = creatorID
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

func newReattemptApp(svc service.ReattemptService, userID uuid.UUID, role string) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/reattempts", func(c *fiber.Ctx) error {
		if userID != uuid.Nil {
			c.Locals("user_id", userID)
		}
		if role != "" {
			c.Locals("user_role", role)
		}
		return c.Next()
	})
	handler.NewReattemptHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func TestReattemptHandler_RequestReturnsStatus(t *testing.T) {
	app := newReattemptApp(&mockReattemptService{}, uuid.Nil, "")

	payload := dto.ReattemptRequest{StudentID: uuid.New(), PatientID: uuid.New()}
	resp := postJSON(t, app, "/api/v1/reattempts/request", payload)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, "pending", response.Message)
}

func TestReattemptHandler_AdminListsAllPending(t *testing.T) {
	svc := &mockReattemptService{entries: []dto.ReattemptEntry{{AssignmentID: uuid.New()}}}
	app := newReattemptApp(svc, uuid.New(), "admin")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reattempts/pending", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, 1, svc.pendingCalls)
	require.Zero(t, svc.creatorCalls)
}

func TestReattemptHandler_InstructorListsOwnRequests(t *testing.T) {
	svc := &mockReattemptService{entries: []dto.ReattemptEntry{{AssignmentID: uuid.New()}}}
	instructor := uuid.New()
	app := newReattemptApp(svc, instructor, "instructor")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reattempts/pending", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Zero(t, svc.pendingCalls)
	require.Equal(t, 1, svc.creatorCalls)
	require.Equal(t, instructor, svc.lastCreator)
}

func TestReattemptHandler_ListUnauthenticated(t *testing.T) {
	app := newReattemptApp(&mockReattemptService{}, uuid.Nil, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reattempts/pending", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestReattemptHandler_ListEmpty(t *testing.T) {
	app := newReattemptApp(&mockReattemptService{err: service.ErrNoReattemptRequests}, uuid.New(), "admin")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reattempts/pending", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestReattemptHandler_ResolveUnknownAssignment(t *testing.T) {
	app := newReattemptApp(&mockReattemptService{err: service.ErrAssignmentNotFound}, uuid.New(), "admin")

	payload := dto.ReattemptResolveRequest{AssignmentID: uuid.New(), Action: dto.ReattemptActionAccept}
	resp := postJSON(t, app, "/api/v1/reattempts/resolve", payload)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
