package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrCounterNotFound is returned by Increment when no counter exists for the
// given id.
var ErrCounterNotFound = errors.New("rate limit counter not found")

// Counter is the accumulated request count for one user in one window.
// At most one counter exists per (user, window type, window start) tuple.
type Counter struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID       uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_rate_limit_counters_window,priority:1"`
	WindowType   WindowType `json:"window_type" gorm:"type:varchar(10);not null;uniqueIndex:idx_rate_limit_counters_window,priority:2"`
	WindowStart  time.Time  `json:"window_start" gorm:"not null;uniqueIndex:idx_rate_limit_counters_window,priority:3"`
	RequestCount int64      `json:"request_count" gorm:"not null;default:0"`
	CreatedAt    time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName returns the table name for GORM
func (Counter) TableName() string {
	return "rate_limit_counters"
}

// CounterStore is the durable home of all quota state. Implementations must
// be safe for concurrent use: FindOrCreate must never leave two counters for
// the same tuple, and Increment must never lose an update.
//
// A missing counter always means a count of zero, never an error.
type CounterStore interface {
	// FindOrCreate returns the counter for the tuple, creating it with a
	// zero count if none exists yet.
	FindOrCreate(ctx context.Context, userID uuid.UUID, window WindowType, windowStart time.Time) (*Counter, error)

	// Increment atomically adds 1 to the counter's request count and
	// returns the updated record.
	Increment(ctx context.Context, id uuid.UUID) (*Counter, error)

	// Reset sets the request count to zero for all of the user's counters,
	// optionally restricted to one window type. Returns the number of
	// counters reset.
	Reset(ctx context.Context, userID uuid.UUID, window *WindowType) (int64, error)

	// DeleteExpired removes counters of the given window type whose window
	// started before cutoff. Returns the number of counters deleted.
	DeleteExpired(ctx context.Context, window WindowType, cutoff time.Time) (int64, error)

	// DeleteForUser removes all counters belonging to a user.
	DeleteForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
