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

// ReattemptHandler manages reattempt request endpoints.
type ReattemptHandler struct {
	service service.ReattemptService
	logger  zerolog.Logger
}

// NewReattemptHandler builds a reattempt handler instance.
func NewReattemptHandler(service service.ReattemptService, logger zerolog.Logger) *ReattemptHandler {
	return &ReattemptHandler{
		service: service,
		logger:  logger.With().Str("component", "reattempt_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ReattemptHandler) Register(router fiber.Router) {
	router.Post("/request", h.request)
	router.Post("/resolve", h.resolve)
	router.Get("/pending", h.listPending)
}

func (h *ReattemptHandler) request(c *fiber.Ctx) error {
	var payload dto.ReattemptRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	message, err := h.service.Request(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendMessage(c, message)
}

func (h *ReattemptHandler) resolve(c *fiber.Ctx) error {
	var payload dto.ReattemptResolveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.Resolve(c.Context(), payload); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendMessage(c, "reattempt request resolved")
}

// listPending returns the creator's pending requests when the caller is an
// instructor, and all pending requests for admins.
func (h *ReattemptHandler) listPending(c *fiber.Ctx) error {
	var entries []dto.ReattemptEntry
	var err error

	if userRoleFromContext(c) == "admin" {
		entries, err = h.service.ListPending(c.Context())
	} else {
		creatorID := userIDFromContext(c)
		if creatorID == uuid.Nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
		}
		entries, err = h.service.ListByCreator(c.Context(), creatorID)
	}
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "reattempt requests retrieved", entries)
}

func (h *ReattemptHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrNoReattemptRequests):
		return utils.SendError(c, fiber.StatusNotFound, "no pending reattempt requests found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
