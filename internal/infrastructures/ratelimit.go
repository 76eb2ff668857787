package infrastructures

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zipgate/zipgate-core/pkg/ratelimit"
)

// NewRateLimitClock builds the window clock for the configured timezone.
// Day windows roll over at local midnight; unset or invalid values fall back
// to UTC.
func NewRateLimitClock() ratelimit.Clock {
	name := os.Getenv("RATE_LIMIT_TIMEZONE")
	if name == "" {
		return ratelimit.NewClock(time.UTC)
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		logrus.Errorf("invalid RATE_LIMIT_TIMEZONE %q, using UTC: %v", name, err)
		return ratelimit.NewClock(time.UTC)
	}

	return ratelimit.NewClock(loc)
}

// NewRateLimitPolicy returns the plan ceilings served by this deployment.
func NewRateLimitPolicy() ratelimit.Policy {
	return ratelimit.DefaultPolicy()
}

// NewJanitor builds the hourly counter sweep.
func NewJanitor(store ratelimit.CounterStore) *ratelimit.Janitor {
	return ratelimit.NewJanitor(store, time.Hour)
}
