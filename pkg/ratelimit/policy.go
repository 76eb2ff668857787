package ratelimit

import (
	"errors"
	"fmt"
)

// Unlimited marks a ceiling with no upper bound. Callers must compare against
// this sentinel instead of treating it as a numeric limit.
const Unlimited = -1

// ErrUnknownPlan is returned when a subscription plan has no configured
// ceilings. This is a configuration error, not a quota rejection.
var ErrUnknownPlan = errors.New("unknown subscription plan")

// Plan is a subscription tier name.
type Plan string

const (
	PlanFree  Plan = "free"
	PlanBasic Plan = "basic"
	PlanPro   Plan = "pro"
)

// Limits holds the per-window request ceilings for a plan.
type Limits struct {
	RequestsPerMinute int `json:"requests_per_minute"`
	RequestsPerDay    int `json:"requests_per_day"`
}

// For returns the ceiling for the given window type.
func (l Limits) For(w WindowType) int {
	if w == WindowDay {
		return l.RequestsPerDay
	}
	return l.RequestsPerMinute
}

// Policy maps subscription plans to their request ceilings.
type Policy map[Plan]Limits

// DefaultPolicy returns the built-in plan ceilings.
func DefaultPolicy() Policy {
	return Policy{
		PlanFree: {
			RequestsPerMinute: 100,
			RequestsPerDay:    5000,
		},
		PlanBasic: {
			RequestsPerMinute: 1000,
			RequestsPerDay:    50000,
		},
		PlanPro: {
			RequestsPerMinute: Unlimited,
			RequestsPerDay:    Unlimited,
		},
	}
}

// LimitsFor returns the ceilings for a plan, or ErrUnknownPlan if the plan is
// not configured.
func (p Policy) LimitsFor(plan Plan) (Limits, error) {
	limits, ok := p[plan]
	if !ok {
		return Limits{}, fmt.Errorf("%w: %q", ErrUnknownPlan, plan)
	}
	return limits, nil
}
