package middlewares

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/zipgate/zipgate-core/internal/app/errors"
	"github.com/zipgate/zipgate-core/internal/app/pkg"
)

// Rate defines an IP rate limit configuration
type Rate struct {
	Requests int
	Window   time.Duration
}

// RateLimitInfo contains information about the current rate limit status
type RateLimitInfo struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// IPLimiter defines the interface for the pre-auth abuse screen. Unlike the
// quota engine it is advisory: it fails open on backend errors.
type IPLimiter interface {
	Allow(key string, limit Rate) (bool, RateLimitInfo)
	Reset(key string) error
}

// Common IP rate limits
var (
	// PublicAPILimit guards everything before authentication (300 req/min)
	PublicAPILimit = Rate{
		Requests: 300,
		Window:   time.Minute,
	}

	// AuthLimit guards credential endpoints (10 req/min)
	AuthLimit = Rate{
		Requests: 10,
		Window:   time.Minute,
	}
)

// IPLimitMiddleware screens unauthenticated traffic per source IP
type IPLimitMiddleware struct {
	limiter IPLimiter
}

// NewIPLimitMiddleware creates a new IPLimitMiddleware
func NewIPLimitMiddleware(limiter IPLimiter) *IPLimitMiddleware {
	return &IPLimitMiddleware{
		limiter: limiter,
	}
}

// LimitByIP creates a middleware that rate limits by IP address
func (m *IPLimitMiddleware) LimitByIP(limit Rate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("ip:%s", getIPAddress(c))

		allowed, info := m.limiter.Allow(key, limit)

		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		c.Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.Reset.Unix()))

		if !allowed {
			return pkg.ErrorResponse(c, errors.NewTooManyRequestsError("Rate limit exceeded"))
		}

		return c.Next()
	}
}

// RedisIPLimiter implements IPLimiter using Redis sorted sets with a sliding
// window.
type RedisIPLimiter struct {
	redis     *redis.Client
	keyPrefix string
}

// NewRedisIPLimiter creates a new RedisIPLimiter
func NewRedisIPLimiter(redis *redis.Client, keyPrefix string) *RedisIPLimiter {
	return &RedisIPLimiter{
		redis:     redis,
		keyPrefix: keyPrefix,
	}
}

// Allow implements IPLimiter.Allow
func (l *RedisIPLimiter) Allow(key string, limit Rate) (bool, RateLimitInfo) {
	ctx := context.Background()
	now := time.Now()
	windowKey := fmt.Sprintf("%s:ratelimit:%s", l.keyPrefix, key)

	pipe := l.redis.Pipeline()

	// Remove old entries outside the window
	windowStart := now.Add(-limit.Window).UnixNano()
	pipe.ZRemRangeByScore(ctx, windowKey, "0", fmt.Sprintf("%d", windowStart))

	// Get current count
	pipe.ZCard(ctx, windowKey)

	// Add current request
	pipe.ZAdd(ctx, windowKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})

	// Set expiry to clean up old keys
	pipe.Expire(ctx, windowKey, limit.Window)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		// The IP screen fails open: it protects capacity, not billing.
		logrus.Errorf("ip rate limiter unavailable: %v", err)
		return true, RateLimitInfo{
			Limit:     limit.Requests,
			Remaining: 0,
			Reset:     now.Add(limit.Window),
		}
	}

	count := cmds[1].(*redis.IntCmd).Val()

	remaining := limit.Requests - int(count)
	allowed := remaining >= 0

	return allowed, RateLimitInfo{
		Limit:     limit.Requests,
		Remaining: remaining,
		Reset:     now.Add(limit.Window),
	}
}

// Reset implements IPLimiter.Reset
func (l *RedisIPLimiter) Reset(key string) error {
	ctx := context.Background()
	windowKey := fmt.Sprintf("%s:ratelimit:%s", l.keyPrefix, key)
	return l.redis.Del(ctx, windowKey).Err()
}

// getIPAddress gets the client IP address from request
func getIPAddress(c *fiber.Ctx) string {
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xrip := c.Get("X-Real-IP"); xrip != "" {
		return xrip
	}

	return c.IP()
}
