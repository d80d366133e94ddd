package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/osler-labs/clinsim-go-api/internal/dto"
	"github.com/osler-labs/clinsim-go-api/internal/service"
	"github.com/osler-labs/clinsim-go-api/internal/utils"
	"github.com/osler-labs/clinsim-go-api/pkg/ai"
)

// ScoringHandler manages assessment pipeline endpoints.
type ScoringHandler struct {
	service service.ScoringService
	logger  zerolog.Logger
}

// NewScoringHandler builds a scoring handler instance.
func NewScoringHandler(service service.ScoringService, logger zerolog.Logger) *ScoringHandler {
	return &ScoringHandler{
		service: service,
		logger:  logger.With().Str("component", "scoring_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ScoringHandler) Register(router fiber.Router) {
	router.Post("/assignments", h.score)
	router.Post("/assignments/batch", h.scoreBatch)
	router.Post("/override", h.override)
}

func (h *ScoringHandler) score(c *fiber.Ctx) error {
	var payload dto.ScoreAssignmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.ScoreAssignment(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment marked", result)
}

func (h *ScoringHandler) scoreBatch(c *fiber.Ctx) error {
	var payload dto.ScoreBatchRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	entries, err := h.service.ScoreBatch(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "batch scoring completed", entries)
}

func (h *ScoringHandler) override(c *fiber.Ctx) error {
	var payload dto.ScoreOverrideRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.service.Override(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "scores overridden", assignment)
}

func (h *ScoringHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	var malformed *ai.MalformedOutputError
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrPatientNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "patient not found")
	case errors.Is(err, service.ErrPromptNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "patient prompt data not found")
	case errors.Is(err, service.ErrMissingConversation):
		return utils.SendError(c, fiber.StatusBadRequest, "conversation log is missing")
	case errors.Is(err, service.ErrNotMarkable):
		return utils.SendError(c, fiber.StatusBadRequest, "assignment is not markable")
	case errors.Is(err, ai.ErrNoActiveKey):
		return utils.SendError(c, fiber.StatusBadGateway, "no active generative credential")
	case errors.Is(err, service.ErrGenerationFailed):
		requestLogger(h.logger, c).Error().Err(err).Msg("model generation failed")
		return utils.SendError(c, fiber.StatusBadGateway, "model generation failed")
	case errors.As(err, &malformed):
		requestLogger(h.logger, c).Warn().Err(err).Str("stage", malformed.Stage).Msg("model returned malformed output")
		return utils.SendError(c, fiber.StatusBadGateway, "model returned malformed output")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
