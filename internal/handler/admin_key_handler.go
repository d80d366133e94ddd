package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/osler-labs/clinsim-go-api/internal/dto"
	"github.com/osler-labs/clinsim-go-api/internal/models"
	"github.com/osler-labs/clinsim-go-api/internal/service"
	"github.com/osler-labs/clinsim-go-api/internal/utils"
	"github.com/osler-labs/clinsim-go-api/pkg/ai"
)

// AdminKeyHandler manages generative model and API key administration.
type AdminKeyHandler struct {
	service service.AdminKeyService
	logger  zerolog.Logger
}

// NewAdminKeyHandler builds an admin key handler instance.
func NewAdminKeyHandler(service service.AdminKeyService, logger zerolog.Logger) *AdminKeyHandler {
	return &AdminKeyHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_key_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AdminKeyHandler) Register(router fiber.Router) {
	router.Post("/models", h.createModel)
	router.Get("/models", h.listModels)
	router.Post("/keys", h.createKey)
	router.Get("/keys/active", h.activeKey)
	router.Patch("/keys/:id/activate", h.activateKey)
}

func (h *AdminKeyHandler) createModel(c *fiber.Ctx) error {
	var payload dto.ChatModelCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	model, err := h.service.CreateModel(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "model created", model)
}

func (h *AdminKeyHandler) listModels(c *fiber.Ctx) error {
	list, err := h.service.ListModels(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "models retrieved", list)
}

func (h *AdminKeyHandler) createKey(c *fiber.Ctx) error {
	var payload dto.APIKeyCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	key, err := h.service.CreateKey(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "key created", key)
}

func (h *AdminKeyHandler) activeKey(c *fiber.Ctx) error {
	serviceName := c.Query("service", models.KeyServiceOpenAI)

	key, err := h.service.GetActiveKey(c.Context(), serviceName)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "active key retrieved", key)
}

func (h *AdminKeyHandler) activateKey(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.ActivateKey(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendMessage(c, "key activated")
}

func (h *AdminKeyHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, ai.ErrNoActiveKey):
		return utils.SendError(c, fiber.StatusNotFound, "no active key found")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "key not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
