package dto

import (
	"github.com/google/uuid"

	"github.com/osler-labs/clinsim-go-api/internal/models"
)

// ChatModelCreateRequest registers a generative model for scoring use.
type ChatModelCreateRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	MaxTokens   int    `json:"max_tokens" validate:"omitempty,gt=0"`
}

// APIKeyCreateRequest stores a provider credential.
type APIKeyCreateRequest struct {
	KeyName    string    `json:"key_name" validate:"required"`
	Key        string    `json:"key" validate:"required"`
	Service    string    `json:"service" validate:"required"`
	ModelID    uuid.UUID `json:"model_id" validate:"required"`
	UsageLimit *int      `json:"usage_limit" validate:"omitempty,gt=0"`
}

// APIKeyResponse exposes a stored key without its secret material.
type APIKeyResponse struct {
	ID         uuid.UUID `json:"id"`
	KeyName    string    `json:"key_name"`
	Service    string    `json:"service"`
	ModelID    uuid.UUID `json:"model_id"`
	ModelName  string    `json:"model_name,omitempty"`
	UsageLimit *int      `json:"usage_limit"`
	UsageCount int       `json:"usage_count"`
	IsActive   bool      `json:"is_active"`
}

// NewAPIKeyResponse converts a model into a DTO.
func NewAPIKeyResponse(key models.APIKey) APIKeyResponse {
	return APIKeyResponse{
		ID:         key.ID,
		KeyName:    key.KeyName,
		Service:    key.Service,
		ModelID:    key.ModelID,
		ModelName:  key.Model.Name,
		UsageLimit: key.UsageLimit,
		UsageCount: key.UsageCount,
		IsActive:   key.IsActive,
	}
}

// StatsResponse is the cached landing-page counters payload.
type StatsResponse struct {
	Users        int64 `json:"users"`
	Patients     int64 `json:"patients"`
	Assessments  int64 `json:"assessments"`
	Interactions int64 `json:"interactions"`
}
