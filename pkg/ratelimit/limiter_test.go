package ratelimit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticPlans struct {
	plan Plan
	err  error
}

func (s staticPlans) PlanOf(ctx context.Context, userID uuid.UUID) (Plan, error) {
	return s.plan, s.err
}

// failingStore returns the same error from every operation.
type failingStore struct {
	err error
}

func (s failingStore) FindOrCreate(ctx context.Context, userID uuid.UUID, window WindowType, windowStart time.Time) (*Counter, error) {
	return nil, s.err
}

func (s failingStore) Increment(ctx context.Context, id uuid.UUID) (*Counter, error) {
	return nil, s.err
}

func (s failingStore) Reset(ctx context.Context, userID uuid.UUID, window *WindowType) (int64, error) {
	return 0, s.err
}

func (s failingStore) DeleteExpired(ctx context.Context, window WindowType, cutoff time.Time) (int64, error) {
	return 0, s.err
}

func (s failingStore) DeleteForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, s.err
}

// countingStore counts operations on an underlying store.
type countingStore struct {
	CounterStore
	calls atomic.Int64
}

func (s *countingStore) FindOrCreate(ctx context.Context, userID uuid.UUID, window WindowType, windowStart time.Time) (*Counter, error) {
	s.calls.Add(1)
	return s.CounterStore.FindOrCreate(ctx, userID, window, windowStart)
}

func (s *countingStore) Increment(ctx context.Context, id uuid.UUID) (*Counter, error) {
	s.calls.Add(1)
	return s.CounterStore.Increment(ctx, id)
}

func newTestLimiter(store CounterStore, plan Plan, policy Policy, at time.Time) *Limiter {
	limiter := NewLimiter(store, policy, NewClock(time.UTC), staticPlans{plan: plan})
	limiter.now = func() time.Time { return at }
	return limiter
}

func testPolicy(perMinute, perDay int) Policy {
	return Policy{PlanFree: {RequestsPerMinute: perMinute, RequestsPerDay: perDay}}
}

func TestLimiter_StrictCeiling(t *testing.T) {
	// With a ceiling of 3, calls 1-3 are admitted with remaining 2, 1, 0
	// and call 4 is rejected. The boundary is exclusive: count == limit
	// rejects.
	now := time.Date(2024, 3, 15, 10, 42, 30, 0, time.UTC)
	limiter := newTestLimiter(NewMemoryStore(), PlanFree, testPolicy(3, 100), now)
	userID := uuid.New()

	for i, wantRemaining := range []int{2, 1, 0} {
		decision, err := limiter.CheckAndConsume(context.Background(), userID)
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "call %d should be admitted", i+1)
		assert.Equal(t, wantRemaining, decision.Minute.Remaining)
		assert.Equal(t, 3, decision.Minute.Limit)
	}

	decision, err := limiter.CheckAndConsume(context.Background(), userID)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.False(t, decision.Minute.Allowed)
	assert.Equal(t, 0, decision.Minute.Remaining)
	assert.Equal(t, time.Date(2024, 3, 15, 10, 43, 0, 0, time.UTC), decision.Minute.ResetTime)
}

func TestLimiter_JointAdmission(t *testing.T) {
	// Day headroom gone blocks the request even with minute headroom left.
	now := time.Date(2024, 3, 15, 10, 42, 30, 0, time.UTC)
	limiter := newTestLimiter(NewMemoryStore(), PlanFree, testPolicy(5, 2), now)
	userID := uuid.New()

	for i := 0; i < 2; i++ {
		decision, err := limiter.CheckAndConsume(context.Background(), userID)
		require.NoError(t, err)
		require.True(t, decision.Allowed)
	}

	decision, err := limiter.CheckAndConsume(context.Background(), userID)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.True(t, decision.Minute.Allowed, "minute window still has headroom")
	assert.False(t, decision.Day.Allowed)
	assert.Equal(t, 3, decision.Minute.Remaining)
	assert.Equal(t, 0, decision.Day.Remaining)
}

func TestLimiter_NoIncrementOnRejection(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 42, 30, 0, time.UTC)
	store := NewMemoryStore()
	limiter := newTestLimiter(store, PlanFree, testPolicy(1, 100), now)
	userID := uuid.New()

	decision, err := limiter.CheckAndConsume(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, decision.Allowed)

	// Two rejected calls leave both counters exactly where they were.
	for i := 0; i < 2; i++ {
		decision, err = limiter.CheckAndConsume(context.Background(), userID)
		require.NoError(t, err)
		require.False(t, decision.Allowed)
	}

	minuteStart := limiter.clock.WindowStart(WindowMinute, now)
	dayStart := limiter.clock.WindowStart(WindowDay, now)
	minute, _ := store.FindOrCreate(context.Background(), userID, WindowMinute, minuteStart)
	day, _ := store.FindOrCreate(context.Background(), userID, WindowDay, dayStart)
	assert.Equal(t, int64(1), minute.RequestCount)
	assert.Equal(t, int64(1), day.RequestCount)
}

func TestLimiter_UnlimitedPlanSkipsStore(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 42, 30, 0, time.UTC)
	store := &countingStore{CounterStore: NewMemoryStore()}
	limiter := newTestLimiter(store, PlanPro, DefaultPolicy(), now)
	userID := uuid.New()

	for i := 0; i < 10000; i++ {
		decision, err := limiter.CheckAndConsume(context.Background(), userID)
		require.NoError(t, err)
		require.True(t, decision.Allowed)
		require.Equal(t, Unlimited, decision.Minute.Limit)
		require.Equal(t, Unlimited, decision.Minute.Remaining)
		require.Equal(t, Unlimited, decision.Day.Remaining)
	}

	assert.Equal(t, int64(0), store.calls.Load(), "unlimited plans must not touch the store")
}

func TestLimiter_AbsentCounterMeansFullQuota(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 42, 30, 0, time.UTC)
	limiter := newTestLimiter(NewMemoryStore(), PlanFree, testPolicy(3, 100), now)

	result, err := limiter.CheckWindow(context.Background(), uuid.New(), WindowMinute)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 3, result.Remaining)
	assert.Equal(t, 3, result.Limit)
}

func TestLimiter_CheckWindowDoesNotConsume(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 42, 30, 0, time.UTC)
	limiter := newTestLimiter(NewMemoryStore(), PlanFree, testPolicy(3, 100), now)
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		result, err := limiter.CheckWindow(context.Background(), userID, WindowMinute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 3, result.Remaining)
	}
}

func TestLimiter_ConcurrentAdmissionBound(t *testing.T) {
	// N concurrent calls against an empty window with ceiling K admit
	// exactly K and reject N-K.
	const n, k = 50, 10
	now := time.Date(2024, 3, 15, 10, 42, 30, 0, time.UTC)
	limiter := newTestLimiter(NewMemoryStore(), PlanFree, testPolicy(k, 1000), now)
	userID := uuid.New()

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := limiter.CheckAndConsume(context.Background(), userID)
			require.NoError(t, err)
			if decision.Allowed {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(k), admitted.Load())
}

func TestLimiter_ResetRestoresQuota(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 42, 30, 0, time.UTC)
	store := NewMemoryStore()
	limiter := newTestLimiter(store, PlanFree, testPolicy(2, 100), now)
	userID := uuid.New()

	for i := 0; i < 2; i++ {
		decision, err := limiter.CheckAndConsume(context.Background(), userID)
		require.NoError(t, err)
		require.True(t, decision.Allowed)
	}
	decision, err := limiter.CheckAndConsume(context.Background(), userID)
	require.NoError(t, err)
	require.False(t, decision.Allowed)

	minuteWindow := WindowMinute
	_, err = store.Reset(context.Background(), userID, &minuteWindow)
	require.NoError(t, err)

	result, err := limiter.CheckWindow(context.Background(), userID, WindowMinute)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 2, result.Remaining)
}

func TestLimiter_WindowRollover(t *testing.T) {
	current := time.Date(2024, 3, 15, 10, 42, 30, 0, time.UTC)
	limiter := newTestLimiter(NewMemoryStore(), PlanFree, testPolicy(1, 100), current)
	limiter.now = func() time.Time { return current }
	userID := uuid.New()

	decision, err := limiter.CheckAndConsume(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, decision.Allowed)

	decision, err = limiter.CheckAndConsume(context.Background(), userID)
	require.NoError(t, err)
	require.False(t, decision.Allowed)

	// The next minute opens a fresh window with full quota.
	current = current.Add(time.Minute)
	decision, err = limiter.CheckAndConsume(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestLimiter_StoreErrorFailsClosed(t *testing.T) {
	storeErr := errors.New("connection refused")
	now := time.Date(2024, 3, 15, 10, 42, 30, 0, time.UTC)
	limiter := newTestLimiter(failingStore{err: storeErr}, PlanFree, testPolicy(3, 100), now)

	decision, err := limiter.CheckAndConsume(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, decision, "a failed check must not produce an admission")
}

func TestLimiter_PlanResolverErrorPropagates(t *testing.T) {
	resolverErr := errors.New("user not found")
	limiter := NewLimiter(NewMemoryStore(), DefaultPolicy(), NewClock(time.UTC), staticPlans{err: resolverErr})

	_, err := limiter.CheckAndConsume(context.Background(), uuid.New())
	assert.ErrorIs(t, err, resolverErr)

	_, err = limiter.CheckWindow(context.Background(), uuid.New(), WindowDay)
	assert.ErrorIs(t, err, resolverErr)
}

func TestLimiter_UnknownPlanIsConfigurationError(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore(), DefaultPolicy(), NewClock(time.UTC), staticPlans{plan: "enterprise"})

	_, err := limiter.CheckAndConsume(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestLimiter_MixedLimitedAndUnlimitedWindows(t *testing.T) {
	// A plan may cap only one window; the unlimited one never blocks.
	now := time.Date(2024, 3, 15, 10, 42, 30, 0, time.UTC)
	policy := Policy{PlanFree: {RequestsPerMinute: 1, RequestsPerDay: Unlimited}}
	limiter := newTestLimiter(NewMemoryStore(), PlanFree, policy, now)
	userID := uuid.New()

	decision, err := limiter.CheckAndConsume(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, Unlimited, decision.Day.Remaining)

	decision, err = limiter.CheckAndConsume(context.Background(), userID)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.True(t, decision.Day.Allowed)
}
