package middlewares

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/zipgate/zipgate-core/internal/app/errors"
	"github.com/zipgate/zipgate-core/internal/app/pkg"
	"github.com/zipgate/zipgate-core/pkg/ratelimit"
)

// RateLimitMiddleware admits requests through the per-user quota engine and
// surfaces both window standings as response headers.
type RateLimitMiddleware struct {
	limiter *ratelimit.Limiter
}

// NewRateLimitMiddleware creates a new RateLimitMiddleware
func NewRateLimitMiddleware(limiter *ratelimit.Limiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
	}
}

// LimitUser checks and consumes quota for the authenticated user. Engine
// errors reject the request; a store outage never grants free admission.
func (m *RateLimitMiddleware) LimitUser(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError())
	}

	decision, err := m.limiter.CheckAndConsume(c.Context(), user.ID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	setWindowHeaders(c, "Minute", decision.Minute)
	setWindowHeaders(c, "Day", decision.Day)

	if !decision.Allowed {
		return pkg.ErrorResponse(c, errors.NewTooManyRequestsError("Rate limit exceeded"))
	}

	return c.Next()
}

func setWindowHeaders(c *fiber.Ctx, suffix string, result ratelimit.WindowResult) {
	c.Set("X-RateLimit-Limit-"+suffix, headerValue(result.Limit))
	c.Set("X-RateLimit-Remaining-"+suffix, headerValue(result.Remaining))
	c.Set("X-RateLimit-Reset-"+suffix, fmt.Sprintf("%d", result.ResetTime.Unix()))
}

func headerValue(v int) string {
	if v == ratelimit.Unlimited {
		return "unlimited"
	}
	return strconv.Itoa(v)
}
