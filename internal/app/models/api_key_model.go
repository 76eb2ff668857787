package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey is a long-lived credential tied to a user account. The key value is
// returned once at creation and never listed afterwards.
type APIKey struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID     uuid.UUID  `json:"user_id" gorm:"type:uuid;not null"`
	Name       string     `json:"name" gorm:"type:varchar(100);not null"`
	Key        string     `json:"-" gorm:"type:varchar(255);not null;unique"`
	Prefix     string     `json:"prefix" gorm:"type:varchar(10);not null"`
	LastUsedAt *time.Time `json:"last_used_at"`
	RevokedAt  *time.Time `json:"revoked_at"`
	CreatedAt  time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	// Relations
	User User `json:"-" gorm:"foreignkey:UserID"`
}

// IsActive checks if an API key has not been revoked
func (k *APIKey) IsActive() bool {
	return k.RevokedAt == nil
}

// TableName returns the table name for GORM
func (APIKey) TableName() string {
	return "api_keys"
}

type APIKeyCreateDto struct {
	Name string `json:"name" validate:"required,max=100"`
}

// APIKeyCreatedResponse carries the plaintext key exactly once.
type APIKeyCreatedResponse struct {
	APIKey *APIKey `json:"api_key"`
	Key    string  `json:"key"`
}
