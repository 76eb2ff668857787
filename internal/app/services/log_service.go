package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/zipgate/zipgate-core/internal/app/errors"
	"github.com/zipgate/zipgate-core/internal/app/models"
	"gorm.io/gorm"
)

type LogService struct {
	db *gorm.DB
}

func NewLogService(db *gorm.DB) *LogService {
	return &LogService{db: db}
}

// Record persists one request log entry.
func (s *LogService) Record(log *models.RequestLog) error {
	return s.db.Create(log).Error
}

// RecordAsync persists a request log entry off the request path. Logging
// failures never fail the request that produced them.
func (s *LogService) RecordAsync(log *models.RequestLog) {
	go func() {
		if err := s.Record(log); err != nil {
			logrus.Errorf("failed to record request log: %v", err)
		}
	}()
}

// Analytics summarizes a user's traffic over the given period ("24h", "7d"
// or "30d").
func (s *LogService) Analytics(userID uuid.UUID, period string) (*models.AnalyticsSummary, error) {
	var since time.Time
	switch period {
	case "", "24h":
		period = "24h"
		since = time.Now().Add(-24 * time.Hour)
	case "7d":
		since = time.Now().Add(-7 * 24 * time.Hour)
	case "30d":
		since = time.Now().Add(-30 * 24 * time.Hour)
	default:
		return nil, errors.NewBadRequestError("Invalid period, expected 24h, 7d or 30d")
	}

	base := s.db.Model(&models.RequestLog{}).Where("user_id = ? AND timestamp >= ?", userID, since)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to load analytics")
	}

	var avg decimal.Decimal
	err := base.Session(&gorm.Session{}).
		Select("COALESCE(AVG(response_time), 0)").
		Row().Scan(&avg)
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to load analytics")
	}

	var endpoints []models.EndpointCount
	err = base.Session(&gorm.Session{}).
		Select("endpoint, COUNT(*) AS count").
		Group("endpoint").
		Order("count DESC").
		Limit(10).
		Scan(&endpoints).Error
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to load analytics")
	}

	var statusCodes []models.StatusCodeCount
	err = base.Session(&gorm.Session{}).
		Select("status_code, COUNT(*) AS count").
		Group("status_code").
		Order("count DESC").
		Scan(&statusCodes).Error
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to load analytics")
	}

	return &models.AnalyticsSummary{
		Period:          period,
		TotalRequests:   total,
		AvgResponseTime: avg.Round(2),
		Endpoints:       endpoints,
		StatusCodes:     statusCodes,
	}, nil
}
