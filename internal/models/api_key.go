package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Services that API keys can be registered for.
const (
	KeyServiceOpenAI = "OpenAI"
)

// ChatModel describes a generative model that scoring can be run against.
type ChatModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	MaxTokens   int       `json:"max_tokens"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a fresh identifier when none was provided.
func (m *ChatModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// APIKey is a stored provider credential. At most one key per service should
// be active; the active key feeds the process-wide generator cache.
type APIKey struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	KeyName    string    `gorm:"size:255;not null" json:"key_name"`
	Key        string    `gorm:"size:512;not null" json:"-"`
	Service    string    `gorm:"size:64;not null;index" json:"service"`
	ModelID    uuid.UUID `gorm:"type:uuid;not null" json:"model_id"`
	UsageLimit *int      `json:"usage_limit"`
	UsageCount int       `gorm:"not null;default:0" json:"usage_count"`
	IsActive   bool      `gorm:"not null;default:false" json:"is_active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Model ChatModel `gorm:"foreignKey:ModelID" json:"model"`
}

// BeforeCreate assigns a fresh identifier when none was provided.
func (k *APIKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}
