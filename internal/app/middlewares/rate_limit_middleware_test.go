package middlewares

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zipgate/zipgate-core/internal/app/models"
	"github.com/zipgate/zipgate-core/pkg/ratelimit"
)

type fixedPlanResolver struct {
	plan ratelimit.Plan
}

func (r fixedPlanResolver) PlanOf(ctx context.Context, userID uuid.UUID) (ratelimit.Plan, error) {
	return r.plan, nil
}

type brokenCounterStore struct{}

func (brokenCounterStore) FindOrCreate(ctx context.Context, userID uuid.UUID, window ratelimit.WindowType, windowStart time.Time) (*ratelimit.Counter, error) {
	return nil, errors.New("connection refused")
}

func (brokenCounterStore) Increment(ctx context.Context, id uuid.UUID) (*ratelimit.Counter, error) {
	return nil, errors.New("connection refused")
}

func (brokenCounterStore) Reset(ctx context.Context, userID uuid.UUID, window *ratelimit.WindowType) (int64, error) {
	return 0, errors.New("connection refused")
}

func (brokenCounterStore) DeleteExpired(ctx context.Context, window ratelimit.WindowType, cutoff time.Time) (int64, error) {
	return 0, errors.New("connection refused")
}

func (brokenCounterStore) DeleteForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, errors.New("connection refused")
}

func newTestApp(limiter *ratelimit.Limiter, user *models.User) *fiber.App {
	app := fiber.New()
	if user != nil {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("user", user)
			return c.Next()
		})
	}

	middleware := NewRateLimitMiddleware(limiter)
	app.Get("/lookup", middleware.LimitUser, func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	return app
}

func newTestLimiter(store ratelimit.CounterStore, plan ratelimit.Plan, policy ratelimit.Policy) *ratelimit.Limiter {
	return ratelimit.NewLimiter(store, policy, ratelimit.NewClock(time.UTC), fixedPlanResolver{plan: plan})
}

func TestLimitUser_SetsWindowHeaders(t *testing.T) {
	policy := ratelimit.Policy{ratelimit.PlanFree: {RequestsPerMinute: 5, RequestsPerDay: 100}}
	limiter := newTestLimiter(ratelimit.NewMemoryStore(), ratelimit.PlanFree, policy)
	app := newTestApp(limiter, &models.User{ID: uuid.New(), SubscriptionPlan: ratelimit.PlanFree})

	resp, err := app.Test(httptest.NewRequest("GET", "/lookup", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, "5", resp.Header.Get("X-RateLimit-Limit-Minute"))
	assert.Equal(t, "4", resp.Header.Get("X-RateLimit-Remaining-Minute"))
	assert.Equal(t, "100", resp.Header.Get("X-RateLimit-Limit-Day"))
	assert.Equal(t, "99", resp.Header.Get("X-RateLimit-Remaining-Day"))
	assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Reset-Minute"))
	assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Reset-Day"))
}

func TestLimitUser_RejectsWithTooManyRequests(t *testing.T) {
	policy := ratelimit.Policy{ratelimit.PlanFree: {RequestsPerMinute: 2, RequestsPerDay: 100}}
	limiter := newTestLimiter(ratelimit.NewMemoryStore(), ratelimit.PlanFree, policy)
	app := newTestApp(limiter, &models.User{ID: uuid.New(), SubscriptionPlan: ratelimit.PlanFree})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/lookup", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/lookup", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining-Minute"))
}

func TestLimitUser_UnlimitedPlanHeaders(t *testing.T) {
	limiter := newTestLimiter(ratelimit.NewMemoryStore(), ratelimit.PlanPro, ratelimit.DefaultPolicy())
	app := newTestApp(limiter, &models.User{ID: uuid.New(), SubscriptionPlan: ratelimit.PlanPro})

	resp, err := app.Test(httptest.NewRequest("GET", "/lookup", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "unlimited", resp.Header.Get("X-RateLimit-Limit-Minute"))
	assert.Equal(t, "unlimited", resp.Header.Get("X-RateLimit-Remaining-Day"))
}

func TestLimitUser_StoreErrorFailsClosed(t *testing.T) {
	policy := ratelimit.Policy{ratelimit.PlanFree: {RequestsPerMinute: 5, RequestsPerDay: 100}}
	limiter := newTestLimiter(brokenCounterStore{}, ratelimit.PlanFree, policy)
	app := newTestApp(limiter, &models.User{ID: uuid.New(), SubscriptionPlan: ratelimit.PlanFree})

	resp, err := app.Test(httptest.NewRequest("GET", "/lookup", nil))
	require.NoError(t, err)

	// A broken store is a server error, never a silent admission and never
	// a quota rejection.
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestLimitUser_MissingUserIsUnauthorized(t *testing.T) {
	limiter := newTestLimiter(ratelimit.NewMemoryStore(), ratelimit.PlanFree, ratelimit.DefaultPolicy())
	app := newTestApp(limiter, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/lookup", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
