package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PlanResolver resolves a user to their subscription plan. Errors (including
// unknown users) propagate to the caller; the limiter never falls back to a
// default plan.
type PlanResolver interface {
	PlanOf(ctx context.Context, userID uuid.UUID) (Plan, error)
}

// WindowResult is the standing of one quota window for response headers.
// Limit and Remaining are Unlimited for plans without a ceiling.
type WindowResult struct {
	Allowed   bool      `json:"allowed"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetTime time.Time `json:"reset_time"`
}

// Decision is the joint admission result across both quota windows.
type Decision struct {
	Allowed bool         `json:"allowed"`
	Minute  WindowResult `json:"minute"`
	Day     WindowResult `json:"day"`
}

type userLock struct {
	sync.Mutex
	refs int
}

// Limiter decides, per request, whether a user still has quota headroom in
// both the minute and the day window, and records admitted requests in the
// counter store. It holds no quota state of its own.
//
// Admission and the two increments run under an in-process per-user lock, so
// a single instance admits exactly limit-many concurrent requests per window.
// Counts themselves are durable and increment atomically in the store, but
// deployments running several instances can transiently over-admit by up to
// the instance count.
type Limiter struct {
	store  CounterStore
	policy Policy
	clock  Clock
	plans  PlanResolver
	now    func() time.Time

	mu    sync.Mutex
	locks map[uuid.UUID]*userLock
}

// NewLimiter creates a new Limiter
func NewLimiter(store CounterStore, policy Policy, clock Clock, plans PlanResolver) *Limiter {
	return &Limiter{
		store:  store,
		policy: policy,
		clock:  clock,
		plans:  plans,
		now:    time.Now,
		locks:  make(map[uuid.UUID]*userLock),
	}
}

// CheckWindow reports the user's standing in one window without consuming any
// quota. A missing counter reads as a count of zero.
func (l *Limiter) CheckWindow(ctx context.Context, userID uuid.UUID, window WindowType) (*WindowResult, error) {
	plan, err := l.plans.PlanOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	limits, err := l.policy.LimitsFor(plan)
	if err != nil {
		return nil, err
	}

	result, _, err := l.checkWindow(ctx, userID, window, limits.For(window), l.now())
	return result, err
}

// CheckAndConsume makes the joint admission decision for one request as of a
// single clock snapshot. Both windows must have headroom; if and only if both
// admit, one request is recorded against each. Store errors propagate so the
// caller fails closed, never granting quota it cannot account for.
func (l *Limiter) CheckAndConsume(ctx context.Context, userID uuid.UUID) (*Decision, error) {
	plan, err := l.plans.PlanOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	limits, err := l.policy.LimitsFor(plan)
	if err != nil {
		return nil, err
	}

	now := l.now()

	// Unlimited plans never touch the store.
	if limits.RequestsPerMinute == Unlimited && limits.RequestsPerDay == Unlimited {
		return &Decision{
			Allowed: true,
			Minute:  unlimitedResult(WindowMinute, now),
			Day:     unlimitedResult(WindowDay, now),
		}, nil
	}

	lock := l.acquire(userID)
	defer l.release(userID, lock)

	var (
		minute, day       *WindowResult
		minuteRec, dayRec *Counter
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		minute, minuteRec, err = l.checkWindow(gctx, userID, WindowMinute, limits.RequestsPerMinute, now)
		return err
	})
	g.Go(func() error {
		var err error
		day, dayRec, err = l.checkWindow(gctx, userID, WindowDay, limits.RequestsPerDay, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	decision := &Decision{
		Allowed: minute.Allowed && day.Allowed,
		Minute:  *minute,
		Day:     *day,
	}

	// Rejected requests are never counted; remaining reflects the counts as
	// observed at check time.
	if !decision.Allowed {
		return decision, nil
	}

	if minuteRec != nil {
		updated, err := l.store.Increment(ctx, minuteRec.ID)
		if err != nil {
			return nil, fmt.Errorf("record minute window consumption: %w", err)
		}
		decision.Minute.Remaining = remainingOf(limits.RequestsPerMinute, updated.RequestCount)
	}
	if dayRec != nil {
		updated, err := l.store.Increment(ctx, dayRec.ID)
		if err != nil {
			return nil, fmt.Errorf("record day window consumption: %w", err)
		}
		decision.Day.Remaining = remainingOf(limits.RequestsPerDay, updated.RequestCount)
	}

	return decision, nil
}

// checkWindow evaluates one window as of the given instant. It may create a
// zero-count counter but never increments; consumption is decided jointly
// across both windows by the caller.
func (l *Limiter) checkWindow(ctx context.Context, userID uuid.UUID, window WindowType, limit int, now time.Time) (*WindowResult, *Counter, error) {
	if limit == Unlimited {
		result := unlimitedResult(window, now)
		return &result, nil, nil
	}

	windowStart := l.clock.WindowStart(window, now)

	counter, err := l.store.FindOrCreate(ctx, userID, window, windowStart)
	if err != nil {
		return nil, nil, err
	}

	return &WindowResult{
		Allowed:   counter.RequestCount < int64(limit),
		Limit:     limit,
		Remaining: remainingOf(limit, counter.RequestCount),
		ResetTime: l.clock.WindowEnd(window, windowStart),
	}, counter, nil
}

func unlimitedResult(window WindowType, now time.Time) WindowResult {
	return WindowResult{
		Allowed:   true,
		Limit:     Unlimited,
		Remaining: Unlimited,
		ResetTime: now.Add(window.Duration()),
	}
}

func remainingOf(limit int, count int64) int {
	remaining := int64(limit) - count
	if remaining < 0 {
		return 0
	}
	return int(remaining)
}

// acquire takes the per-user admission lock. Locks are reference counted so
// the map only holds entries for users with in-flight decisions.
func (l *Limiter) acquire(userID uuid.UUID) *userLock {
	l.mu.Lock()
	lock, ok := l.locks[userID]
	if !ok {
		lock = &userLock{}
		l.locks[userID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.Lock()
	return lock
}

func (l *Limiter) release(userID uuid.UUID, lock *userLock) {
	lock.Unlock()

	l.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, userID)
	}
	l.mu.Unlock()
}
