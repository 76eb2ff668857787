package ratelimit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the durable CounterStore backed by Postgres through GORM.
// The unique index on (user_id, window_type, window_start) enforces the
// one-counter-per-tuple invariant; increments happen in SQL so concurrent
// requests never lose an update.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GormStore
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// FindOrCreate implements CounterStore.FindOrCreate with an insert that backs
// off on conflict, so two requests racing on the same tuple converge on a
// single row.
func (s *GormStore) FindOrCreate(ctx context.Context, userID uuid.UUID, window WindowType, windowStart time.Time) (*Counter, error) {
	counter := Counter{
		UserID:       userID,
		WindowType:   window,
		WindowStart:  windowStart.UTC(),
		RequestCount: 0,
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "window_type"}, {Name: "window_start"}},
		DoNothing: true,
	}).Create(&counter)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		return &counter, nil
	}

	// Lost the creation race; fetch the row that won.
	var existing Counter
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND window_type = ? AND window_start = ?", userID, window, windowStart.UTC()).
		First(&existing).Error
	if err != nil {
		return nil, err
	}

	return &existing, nil
}

// Increment implements CounterStore.Increment as a single SQL update, never a
// read-modify-write at the client.
func (s *GormStore) Increment(ctx context.Context, id uuid.UUID) (*Counter, error) {
	var counter Counter
	result := s.db.WithContext(ctx).
		Model(&counter).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		UpdateColumn("request_count", gorm.Expr("request_count + 1"))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrCounterNotFound
	}

	return &counter, nil
}

// Reset implements CounterStore.Reset
func (s *GormStore) Reset(ctx context.Context, userID uuid.UUID, window *WindowType) (int64, error) {
	query := s.db.WithContext(ctx).Model(&Counter{}).Where("user_id = ?", userID)
	if window != nil {
		query = query.Where("window_type = ?", *window)
	}

	result := query.UpdateColumn("request_count", 0)
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// DeleteExpired implements CounterStore.DeleteExpired
func (s *GormStore) DeleteExpired(ctx context.Context, window WindowType, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("window_type = ? AND window_start < ?", window, cutoff.UTC()).
		Delete(&Counter{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// DeleteForUser implements CounterStore.DeleteForUser
func (s *GormStore) DeleteForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&Counter{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
