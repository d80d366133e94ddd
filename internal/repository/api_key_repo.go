package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/osler-labs/clinsim-go-api/internal/models"
)

// APIKeyRepository defines persistence operations for provider credentials
// and their models.
type APIKeyRepository interface {
	CreateModel(ctx context.Context, model *models.ChatModel) error
	ListModels(ctx context.Context) ([]models.ChatModel, error)
	CreateKey(ctx context.Context, key *models.APIKey) error
	GetActive(ctx context.Context, service string) (models.APIKey, error)
	Activate(ctx context.Context, id uuid.UUID) error
	IncrementUsage(ctx context.Context, id uuid.UUID) error
}

type apiKeyRepository struct {
	db *gorm.DB
}

// NewAPIKeyRepository instantiates a GORM-backed repository.
func NewAPIKeyRepository(db *gorm.DB) APIKeyRepository {
	return &apiKeyRepository{db: db}
}

func (r *apiKeyRepository) CreateModel(ctx context.Context, model *models.ChatModel) error {
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *apiKeyRepository) ListModels(ctx context.Context) ([]models.ChatModel, error) {
	var chatModels []models.ChatModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&chatModels).Error; err != nil {
		return nil, err
	}
	return chatModels, nil
}

func (r *apiKeyRepository) CreateKey(ctx context.Context, key *models.APIKey) error {
	return r.db.WithContext(ctx).Create(key).Error
}

func (r *apiKeyRepository) GetActive(ctx context.Context, service string) (models.APIKey, error) {
	var key models.APIKey
	if err := r.db.WithContext(ctx).
		Preload("Model").
		Where("service = ?", service).
		Where("is_active = ?", true).
		First(&key).Error; err != nil {
		return models.APIKey{}, err
	}
	return key, nil
}

// Activate marks one key active and deactivates its siblings for the same
// service in a single transaction.
func (r *apiKeyRepository) Activate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var key models.APIKey
		if err := tx.First(&key, "id = ?", id).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.APIKey{}).
			Where("service = ?", key.Service).
			Where("id <> ?", id).
			Update("is_active", false).Error; err != nil {
			return err
		}

		return tx.Model(&models.APIKey{}).
			Where("id = ?", id).
			Update("is_active", true).Error
	})
}

func (r *apiKeyRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.APIKey{}).
		Where("id = ?", id).
		Update("usage_count", gorm.Expr("usage_count + 1")).Error
}
