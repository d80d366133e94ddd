package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/osler-labs/clinsim-go-api/internal/dto"
	"github.com/osler-labs/clinsim-go-api/internal/service"
	"github.com/osler-labs/clinsim-go-api/internal/utils"
)

// AssignmentHandler manages assignment lifecycle endpoints.
type AssignmentHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

// NewAssignmentHandler builds an assignment handler instance.
func NewAssignmentHandler(service service.AssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Post("", h.assign)
	router.Get("/student/:studentId", h.listForStudent)
	router.Put("/conversation", h.storeConversation)
	router.Post("/submit", h.submit)
}

func (h *AssignmentHandler) assign(c *fiber.Ctx) error {
	var payload dto.AssignPatientsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	var creatorID *uuid.UUID
	if id := userIDFromContext(c); id != uuid.Nil {
		creatorID = &id
	}

	if err := h.service.AssignPatients(c.Context(), payload, creatorID); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendMessage(c, "patients assigned")
}

func (h *AssignmentHandler) listForStudent(c *fiber.Ctx) error {
	studentID, err := parseUUIDParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignments, err := h.service.GetStudentAssignments(c.Context(), studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) storeConversation(c *fiber.Ctx) error {
	var payload dto.StoreConversationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.StoreConversation(c.Context(), payload); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendMessage(c, "conversation stored")
}

func (h *AssignmentHandler) submit(c *fiber.Ctx) error {
	var payload dto.SubmitAssignmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.Submit(c.Context(), payload); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendMessage(c, "assignment submitted")
}

func (h *AssignmentHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrPatientsNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "one or more patients not found")
	case errors.Is(err, service.ErrMissingConversation):
		return utils.SendError(c, fiber.StatusBadRequest, "conversation log is missing")
	case errors.Is(err, service.ErrFindingsRequired):
		return utils.SendError(c, fiber.StatusBadRequest, "findings are required")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
