package services

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zipgate/zipgate-core/internal/app/models"
	"gorm.io/gorm"
)

var ErrInvalidAPIKey = errors.New("invalid API key")

// APIKeyService handles API key operations
type APIKeyService struct {
	db *gorm.DB
}

// NewAPIKeyService creates a new APIKeyService
func NewAPIKeyService(db *gorm.DB) *APIKeyService {
	return &APIKeyService{db: db}
}

// CreateAPIKey creates a new API key for a user. The plaintext key is only
// present in the returned response.
func (s *APIKeyService) CreateAPIKey(ctx context.Context, userID uuid.UUID, name string) (*models.APIKeyCreatedResponse, error) {
	key, prefix, err := s.generateAPIKey()
	if err != nil {
		return nil, err
	}

	record := &models.APIKey{
		UserID: userID,
		Name:   name,
		Key:    key,
		Prefix: prefix,
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}

	return &models.APIKeyCreatedResponse{APIKey: record, Key: key}, nil
}

// GetByKey gets an active API key by its value
func (s *APIKeyService) GetByKey(ctx context.Context, key string) (*models.APIKey, error) {
	var record models.APIKey
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidAPIKey
		}
		return nil, err
	}

	if !record.IsActive() {
		return nil, ErrInvalidAPIKey
	}

	return &record, nil
}

// ListAPIKeys lists all API keys for a user
func (s *APIKeyService) ListAPIKeys(ctx context.Context, userID uuid.UUID) ([]models.APIKey, error) {
	var keys []models.APIKey
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// RevokeAPIKey revokes an API key
func (s *APIKeyService) RevokeAPIKey(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	now := time.Now()
	result := s.db.WithContext(ctx).
		Model(&models.APIKey{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL", id, userID).
		Update("revoked_at", now)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvalidAPIKey
	}
	return nil
}

// TouchLastUsed updates the last used timestamp of an API key
func (s *APIKeyService) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).
		Model(&models.APIKey{}).
		Where("id = ?", id).
		Update("last_used_at", time.Now()).Error
}

// generateAPIKey generates a new API key with prefix
func (s *APIKeyService) generateAPIKey() (string, string, error) {
	prefix := "zp"
	bytes := make([]byte, 20)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", err
	}

	encoded := base32.StdEncoding.EncodeToString(bytes)
	encoded = strings.ReplaceAll(encoded, "=", "")

	return prefix + "_" + encoded, prefix, nil
}
