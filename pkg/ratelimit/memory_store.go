package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type counterKey struct {
	userID      uuid.UUID
	window      WindowType
	windowStart int64
}

// MemoryStore is an in-process CounterStore guarded by a mutex. Counts do not
// survive a restart, so it is suited to tests and single-node development,
// not production deployments.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[counterKey]*Counter
	byID     map[uuid.UUID]counterKey
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[counterKey]*Counter),
		byID:     make(map[uuid.UUID]counterKey),
	}
}

// FindOrCreate implements CounterStore.FindOrCreate
func (s *MemoryStore) FindOrCreate(ctx context.Context, userID uuid.UUID, window WindowType, windowStart time.Time) (*Counter, error) {
	key := counterKey{userID: userID, window: window, windowStart: windowStart.UTC().UnixNano()}

	s.mu.Lock()
	defer s.mu.Unlock()

	if counter, ok := s.counters[key]; ok {
		clone := *counter
		return &clone, nil
	}

	counter := &Counter{
		ID:           uuid.New(),
		UserID:       userID,
		WindowType:   window,
		WindowStart:  windowStart.UTC(),
		RequestCount: 0,
		CreatedAt:    time.Now().UTC(),
	}
	s.counters[key] = counter
	s.byID[counter.ID] = key

	clone := *counter
	return &clone, nil
}

// Increment implements CounterStore.Increment
func (s *MemoryStore) Increment(ctx context.Context, id uuid.UUID) (*Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.byID[id]
	if !ok {
		return nil, ErrCounterNotFound
	}

	counter := s.counters[key]
	counter.RequestCount++

	clone := *counter
	return &clone, nil
}

// Reset implements CounterStore.Reset
func (s *MemoryStore) Reset(ctx context.Context, userID uuid.UUID, window *WindowType) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reset int64
	for key, counter := range s.counters {
		if key.userID != userID {
			continue
		}
		if window != nil && key.window != *window {
			continue
		}
		counter.RequestCount = 0
		reset++
	}

	return reset, nil
}

// DeleteExpired implements CounterStore.DeleteExpired
func (s *MemoryStore) DeleteExpired(ctx context.Context, window WindowType, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for key, counter := range s.counters {
		if key.window == window && counter.WindowStart.Before(cutoff) {
			delete(s.counters, key)
			delete(s.byID, counter.ID)
			deleted++
		}
	}

	return deleted, nil
}

// DeleteForUser implements CounterStore.DeleteForUser
func (s *MemoryStore) DeleteForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for key, counter := range s.counters {
		if key.userID == userID {
			delete(s.counters, key)
			delete(s.byID, counter.ID)
			deleted++
		}
	}

	return deleted, nil
}
