package domain

import (
	"context"
	"time"
)

// RateLimitDecision is the outcome of one Allow call.
type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimiter enforces a fixed-window request budget per key. Keys are
// tenant-scoped so one tenant cannot exhaust another's budget.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitDecision, error)
}
