package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LocalizedText maps a language code to its rendering of a place name,
// stored as JSONB.
type LocalizedText map[string]string

func (t LocalizedText) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

func (t *LocalizedText) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into LocalizedText", value)
	}

	return json.Unmarshal(data, t)
}

// PostalCode is one entry of the postal dataset with localized place names.
type PostalCode struct {
	ID          uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PostalCode  string        `json:"postal_code" gorm:"type:varchar(20);not null;index:idx_postal_codes_code"`
	Prefecture  LocalizedText `json:"prefecture" gorm:"type:jsonb;not null"`
	City        LocalizedText `json:"city" gorm:"type:jsonb;not null"`
	Town        LocalizedText `json:"town" gorm:"type:jsonb;not null"`
	Kana        LocalizedText `json:"kana" gorm:"type:jsonb"`
	CountryCode string        `json:"country_code" gorm:"type:varchar(2);not null;default:'JP';index:idx_postal_codes_country"`
	CreatedAt   time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (PostalCode) TableName() string {
	return "postal_codes"
}

// Localize flattens the entry into a single-language result.
func (p *PostalCode) Localize(language string) PostalCodeResult {
	return PostalCodeResult{
		PostalCode:  p.PostalCode,
		Prefecture:  p.Prefecture[language],
		City:        p.City[language],
		Town:        p.Town[language],
		Kana:        p.Kana[language],
		CountryCode: p.CountryCode,
		Language:    language,
	}
}

type PostalCodeResult struct {
	PostalCode  string `json:"postal_code"`
	Prefecture  string `json:"prefecture"`
	City        string `json:"city"`
	Town        string `json:"town"`
	Kana        string `json:"kana,omitempty"`
	CountryCode string `json:"country_code"`
	Language    string `json:"language"`
}

type AutocompleteDto struct {
	Query       string `json:"query" validate:"required,min=2"`
	CountryCode string `json:"country_code" validate:"omitempty,len=2"`
	Language    string `json:"language" validate:"omitempty,min=2,max=5"`
	Limit       int    `json:"limit" validate:"omitempty,min=1,max=50"`
}

type PostalStats struct {
	Total       int64  `json:"total"`
	CountryCode string `json:"country_code"`
}
