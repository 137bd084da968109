// Package configcache caches tenant configurations with a short TTL so the
// entitlement guards on the hot path do not hit the store per request.
package configcache

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

type entry struct {
	cfg       domain.TenantConfiguration
	found     bool
	expiresAt time.Time
}

// Cache is a TTL read-through cache over a TenantConfigStore. Concurrent
// misses for the same tenant collapse into a single store load. A tenant
// with no configuration row is cached as absent for the same TTL, so a
// missing row does not turn into a per-request store query.
type Cache struct {
	store domain.TenantConfigStore
	ttl   time.Duration
	log   *zap.Logger
	now   func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
}

func New(store domain.TenantConfigStore, ttl time.Duration, log *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Cache{
		store:   store,
		ttl:     ttl,
		log:     log,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// Get returns the tenant's configuration and whether a row exists. The
// store error is returned as-is on a miss that fails to load, letting the
// caller apply its own failure policy.
func (c *Cache) Get(ctx context.Context, tenantID string) (domain.TenantConfiguration, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[tenantID]
	c.mu.RUnlock()
	if ok && c.now().Before(e.expiresAt) {
		return e.cfg, e.found, nil
	}

	ch := c.group.DoChan(tenantID, func() (any, error) {
		return c.load(ctx, tenantID)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return domain.TenantConfiguration{}, false, res.Err
		}
		loaded := res.Val.(entry)
		return loaded.cfg, loaded.found, nil
	case <-ctx.Done():
		return domain.TenantConfiguration{}, false, ctx.Err()
	}
}

func (c *Cache) load(ctx context.Context, tenantID string) (entry, error) {
	cfg, err := c.store.Get(ctx, tenantID)
	e := entry{expiresAt: c.now().Add(c.ttl)}
	switch {
	case err == nil:
		e.cfg = cfg
		e.found = true
	case errors.Is(err, domain.ErrNotFound):
		// cache the absence too
	default:
		return entry{}, err
	}
	c.mu.Lock()
	c.entries[tenantID] = e
	c.mu.Unlock()
	return e, nil
}

// Invalidate drops the tenant's entry so the next read reloads. Called
// after configuration writes.
func (c *Cache) Invalidate(tenantID string) {
	c.mu.Lock()
	delete(c.entries, tenantID)
	c.mu.Unlock()
	c.log.Debug("tenant config cache invalidated", zap.String("tenant_id", tenantID))
}
