package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/osler-labs/clinsim-go-api/internal/dto"
	"github.com/osler-labs/clinsim-go-api/internal/models"
	"github.com/osler-labs/clinsim-go-api/internal/repository"
	"github.com/osler-labs/clinsim-go-api/pkg/ai"
)

// AdminKeyService manages generative models and their API keys. Activating a
// key invalidates the provider cache so the next pipeline run picks it up.
type AdminKeyService interface {
	CreateModel(ctx context.Context, payload dto.ChatModelCreateRequest) (models.ChatModel, error)
	ListModels(ctx context.Context) ([]models.ChatModel, error)
	CreateKey(ctx context.Context, payload dto.APIKeyCreateRequest) (dto.APIKeyResponse, error)
	GetActiveKey(ctx context.Context, service string) (dto.APIKeyResponse, error)
	ActivateKey(ctx context.Context, id uuid.UUID) error
}

// CacheInvalidator is the hook the key service uses to drop stale generators.
type CacheInvalidator interface {
	Invalidate()
}

type adminKeyService struct {
	keys      repository.APIKeyRepository
	providers CacheInvalidator
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAdminKeyService constructs an AdminKeyService instance.
func NewAdminKeyService(keyRepo repository.APIKeyRepository, providers CacheInvalidator, validate *validator.Validate, logger zerolog.Logger) AdminKeyService {
	return &adminKeyService{
		keys:      keyRepo,
		providers: providers,
		validator: validate,
		logger:    logger.With().Str("component", "admin_key_service").Logger(),
	}
}

func (s *adminKeyService) CreateModel(ctx context.Context, payload dto.ChatModelCreateRequest) (models.ChatModel, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.ChatModel{}, err
	}

	model := models.ChatModel{
		Name:        payload.Name,
		Description: payload.Description,
		MaxTokens:   payload.MaxTokens,
	}
	if err := s.keys.CreateModel(ctx, &model); err != nil {
		return models.ChatModel{}, err
	}

	return model, nil
}

func (s *adminKeyService) ListModels(ctx context.Context) ([]models.ChatModel, error) {
	return s.keys.ListModels(ctx)
}

func (s *adminKeyService) CreateKey(ctx context.Context, payload dto.APIKeyCreateRequest) (dto.APIKeyResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.APIKeyResponse{}, err
	}

	key := models.APIKey{
		KeyName:    payload.KeyName,
		Key:        payload.Key,
		Service:    payload.Service,
		ModelID:    payload.ModelID,
		UsageLimit: payload.UsageLimit,
		IsActive:   false,
	}
	if err := s.keys.CreateKey(ctx, &key); err != nil {
		return dto.APIKeyResponse{}, err
	}

	return dto.NewAPIKeyResponse(key), nil
}

func (s *adminKeyService) GetActiveKey(ctx context.Context, service string) (dto.APIKeyResponse, error) {
	key, err := s.keys.GetActive(ctx, service)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.APIKeyResponse{}, ai.ErrNoActiveKey
		}
		return dto.APIKeyResponse{}, err
	}
	return dto.NewAPIKeyResponse(key), nil
}

func (s *adminKeyService) ActivateKey(ctx context.Context, id uuid.UUID) error {
	if err := s.keys.Activate(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ai.ErrNoActiveKey
		}
		return err
	}

	if s.providers != nil {
		s.providers.Invalidate()
	}

	s.logger.Info().Str("key_id", id.String()).Msg("api key activated")
	return nil
}

// KeyCredentialSource adapts the api key repository to ai.CredentialSource.
type KeyCredentialSource struct {
	keys repository.APIKeyRepository
}

// NewKeyCredentialSource wires the adapter.
func NewKeyCredentialSource(keyRepo repository.APIKeyRepository) *KeyCredentialSource {
	return &KeyCredentialSource{keys: keyRepo}
}

// ActiveCredential resolves the active key for a service, including the
// model it is bound to.
func (s *KeyCredentialSource) ActiveCredential(ctx context.Context, service string) (ai.Credential, error) {
	key, err := s.keys.GetActive(ctx, service)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ai.Credential{}, ai.ErrNoActiveKey
		}
		return ai.Credential{}, err
	}

	return ai.Credential{
		Key:       key.Key,
		Model:     key.Model.Name,
		MaxTokens: key.Model.MaxTokens,
	}, nil
}
