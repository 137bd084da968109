// Package ratelimit provides fixed-window request limiting keyed per
// tenant, with an in-process implementation for single-node deployments
// and a redis implementation for fleets.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

// TenantKey builds the limiter key for a tenant so one tenant's burst
// cannot consume another tenant's budget.
func TenantKey(tenantID string) string {
	return "rl:tenant:" + tenantID
}

type memoryLimiter struct {
	mu      sync.Mutex
	now     func() time.Time
	data    map[string]*window
	maxKeys int
}

type window struct {
	count int
	endAt time.Time
}

type MemoryLimiterConfig struct {
	Now     func() time.Time
	MaxKeys int
}

func NewMemoryLimiter(cfg MemoryLimiterConfig) domain.RateLimiter {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.MaxKeys <= 0 {
		cfg.MaxKeys = 10000
	}
	return &memoryLimiter{
		now:     cfg.Now,
		data:    make(map[string]*window),
		maxKeys: cfg.MaxKeys,
	}
}

func (m *memoryLimiter) Allow(_ context.Context, key string, limit int, size time.Duration) (domain.RateLimitDecision, error) {
	if limit <= 0 {
		return domain.RateLimitDecision{Allowed: true, Limit: limit, Remaining: limit}, nil
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.data[key]
	if ok && now.After(w.endAt) {
		delete(m.data, key)
		w = nil
		ok = false
	}
	if !ok {
		if len(m.data) >= m.maxKeys {
			m.gc(now)
		}
		if len(m.data) >= m.maxKeys {
			return domain.RateLimitDecision{}, errors.New("rate limiter capacity exceeded")
		}
		w = &window{endAt: now.Add(size)}
		m.data[key] = w
	}

	if w.count < limit {
		w.count++
		return domain.RateLimitDecision{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit - w.count,
			ResetAt:   w.endAt,
		}, nil
	}

	return domain.RateLimitDecision{
		Allowed:   false,
		Limit:     limit,
		Remaining: 0,
		ResetAt:   w.endAt,
	}, nil
}

func (m *memoryLimiter) gc(now time.Time) {
	for key, w := range m.data {
		if now.After(w.endAt) {
			delete(m.data, key)
		}
	}
}
