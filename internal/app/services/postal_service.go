package services

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/zipgate/zipgate-core/internal/app/errors"
	"github.com/zipgate/zipgate-core/internal/app/models"
	"gorm.io/gorm"
)

const (
	defaultCountryCode       = "JP"
	defaultLanguage          = "ja"
	defaultAutocompleteLimit = 10
)

type PostalService struct {
	db        *gorm.DB
	validator *validator.Validate
}

func NewPostalService(db *gorm.DB, validator *validator.Validate) *PostalService {
	return &PostalService{
		db:        db,
		validator: validator,
	}
}

// Autocomplete searches the dataset by postal code prefix or place name.
// Dashes in the query are ignored so "123-4567" and "1234567" match the same
// entries.
func (s *PostalService) Autocomplete(req *models.AutocompleteDto) ([]models.PostalCodeResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, errors.NewBadRequestError(err.Error())
	}

	countryCode := req.CountryCode
	if countryCode == "" {
		countryCode = defaultCountryCode
	}
	language := req.Language
	if language == "" {
		language = defaultLanguage
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultAutocompleteLimit
	}

	query := strings.ReplaceAll(req.Query, "-", "")

	var entries []models.PostalCode
	err := s.db.
		Where("country_code = ?", countryCode).
		Where(
			s.db.Where("postal_code LIKE ?", query+"%").
				Or("prefecture->>? ILIKE ?", language, "%"+query+"%").
				Or("city->>? ILIKE ?", language, "%"+query+"%").
				Or("town->>? ILIKE ?", language, "%"+query+"%"),
		).
		Order("postal_code").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to search postal codes")
	}

	results := make([]models.PostalCodeResult, 0, len(entries))
	for i := range entries {
		results = append(results, entries[i].Localize(language))
	}

	return results, nil
}

func (s *PostalService) GetByCode(code, countryCode, language string) (*models.PostalCodeResult, error) {
	if countryCode == "" {
		countryCode = defaultCountryCode
	}
	if language == "" {
		language = defaultLanguage
	}

	var entry models.PostalCode
	err := s.db.
		Where("postal_code = ? AND country_code = ?", strings.ReplaceAll(code, "-", ""), countryCode).
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Postal code not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get postal code")
	}

	result := entry.Localize(language)
	return &result, nil
}

// BulkImport loads dataset entries in batches. Used by import tooling, not
// the request path.
func (s *PostalService) BulkImport(entries []models.PostalCode) error {
	if len(entries) == 0 {
		return nil
	}

	if err := s.db.CreateInBatches(entries, 500).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to import postal data")
	}

	return nil
}

func (s *PostalService) DeleteByCountry(countryCode string) error {
	err := s.db.Where("country_code = ?", countryCode).Delete(&models.PostalCode{}).Error
	if err != nil {
		return errors.NewInternalServerError(err, "Failed to delete postal data")
	}
	return nil
}

func (s *PostalService) Stats(countryCode string) (*models.PostalStats, error) {
	if countryCode == "" {
		countryCode = defaultCountryCode
	}

	var total int64
	err := s.db.Model(&models.PostalCode{}).Where("country_code = ?", countryCode).Count(&total).Error
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to count postal data")
	}

	return &models.PostalStats{Total: total, CountryCode: countryCode}, nil
}
