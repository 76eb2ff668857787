package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestLog records one served API request for analytics.
type RequestLog struct {
	ID           uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID       uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index:idx_request_logs_user"`
	Endpoint     string          `json:"endpoint" gorm:"type:varchar(255);not null"`
	Method       string          `json:"method" gorm:"type:varchar(10);not null;default:'GET'"`
	StatusCode   int             `json:"status_code" gorm:"not null"`
	ResponseTime decimal.Decimal `json:"response_time" gorm:"type:decimal(10,2);not null"`
	UserAgent    string          `json:"user_agent" gorm:"type:text"`
	IPAddress    string          `json:"ip_address" gorm:"type:varchar(45)"`
	Timestamp    time.Time       `json:"timestamp" gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_request_logs_timestamp"`
}

// TableName returns the table name for GORM
func (RequestLog) TableName() string {
	return "request_logs"
}

type EndpointCount struct {
	Endpoint string `json:"endpoint"`
	Count    int64  `json:"count"`
}

type StatusCodeCount struct {
	StatusCode int   `json:"status_code"`
	Count      int64 `json:"count"`
}

type AnalyticsSummary struct {
	Period          string            `json:"period"`
	TotalRequests   int64             `json:"total_requests"`
	AvgResponseTime decimal.Decimal   `json:"avg_response_time"`
	Endpoints       []EndpointCount   `json:"endpoints"`
	StatusCodes     []StatusCodeCount `json:"status_codes"`
}
