package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Janitor periodically deletes counters whose window is long past. Deletion
// is storage hygiene only: a missing counter reads as zero, so a skipped or
// failed sweep never affects admission decisions.
type Janitor struct {
	store           CounterStore
	interval        time.Duration
	minuteRetention time.Duration
	dayRetention    time.Duration
	now             func() time.Time

	mu     sync.Mutex
	done   chan struct{}
	closed bool
}

// NewJanitor creates a Janitor sweeping at the given interval. Minute
// counters are kept for 24 hours past their window start and day counters
// for 7 days, so a window that could still be queried as current is never
// deleted.
func NewJanitor(store CounterStore, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Janitor{
		store:           store,
		interval:        interval,
		minuteRetention: 24 * time.Hour,
		dayRetention:    7 * 24 * time.Hour,
		now:             time.Now,
		done:            make(chan struct{}),
	}
}

// Start launches the background sweep loop.
func (j *Janitor) Start() {
	go j.run()
}

func (j *Janitor) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			if err := j.Sweep(context.Background()); err != nil {
				logrus.Errorf("rate limit janitor sweep failed: %v", err)
			}
		}
	}
}

// Sweep deletes expired counters once. Failures are reported and retried on
// the next cycle.
func (j *Janitor) Sweep(ctx context.Context) error {
	now := j.now()

	minutes, minuteErr := j.store.DeleteExpired(ctx, WindowMinute, now.Add(-j.minuteRetention))
	days, dayErr := j.store.DeleteExpired(ctx, WindowDay, now.Add(-j.dayRetention))

	if minutes > 0 || days > 0 {
		logrus.WithFields(logrus.Fields{
			"minute_counters": minutes,
			"day_counters":    days,
		}).Info("deleted expired rate limit counters")
	}

	return errors.Join(minuteErr, dayErr)
}

// Close stops the background sweep loop.
func (j *Janitor) Close() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.closed {
		j.closed = true
		close(j.done)
	}
}
