package configcache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

type fakeStore struct {
	mu    sync.Mutex
	cfgs  map[string]domain.TenantConfiguration
	err   error
	calls int32
}

func (s *fakeStore) Get(_ context.Context, tenantID string) (domain.TenantConfiguration, error) {
	atomic.AddInt32(&s.calls, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return domain.TenantConfiguration{}, s.err
	}
	cfg, ok := s.cfgs[tenantID]
	if !ok {
		return domain.TenantConfiguration{}, domain.ErrNotFound
	}
	return cfg, nil
}

func (s *fakeStore) Upsert(_ context.Context, cfg domain.TenantConfiguration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfgs == nil {
		s.cfgs = map[string]domain.TenantConfiguration{}
	}
	s.cfgs[cfg.TenantID] = cfg
	return nil
}

func TestGetCachesWithinTTL(t *testing.T) {
	store := &fakeStore{cfgs: map[string]domain.TenantConfiguration{
		"t1": domain.TierConfiguration("t1", domain.TierBasic, time.Now()),
	}}
	cache := New(store, 30*time.Second, zap.NewNop())

	for i := 0; i < 3; i++ {
		cfg, found, err := cache.Get(context.Background(), "t1")
		if err != nil || !found {
			t.Fatalf("get %d: found=%v err=%v", i, found, err)
		}
		if cfg.SubscriptionTier != domain.TierBasic {
			t.Fatalf("tier = %s", cfg.SubscriptionTier)
		}
	}
	if n := atomic.LoadInt32(&store.calls); n != 1 {
		t.Fatalf("store hit %d times, want 1", n)
	}
}

func TestGetExpiresAfterTTL(t *testing.T) {
	store := &fakeStore{cfgs: map[string]domain.TenantConfiguration{
		"t1": domain.TierConfiguration("t1", domain.TierBasic, time.Now()),
	}}
	cache := New(store, 30*time.Second, zap.NewNop())

	current := time.Now()
	cache.now = func() time.Time { return current }

	if _, _, err := cache.Get(context.Background(), "t1"); err != nil {
		t.Fatal(err)
	}
	current = current.Add(31 * time.Second)
	if _, _, err := cache.Get(context.Background(), "t1"); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&store.calls); n != 2 {
		t.Fatalf("store hit %d times, want 2", n)
	}
}

func TestGetCachesAbsence(t *testing.T) {
	store := &fakeStore{}
	cache := New(store, 30*time.Second, zap.NewNop())

	for i := 0; i < 3; i++ {
		_, found, err := cache.Get(context.Background(), "unknown")
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Fatal("missing row reported as found")
		}
	}
	if n := atomic.LoadInt32(&store.calls); n != 1 {
		t.Fatalf("store hit %d times, want 1", n)
	}
}

func TestGetPropagatesStoreError(t *testing.T) {
	store := &fakeStore{err: domain.ErrInfrastructure}
	cache := New(store, 30*time.Second, zap.NewNop())

	_, _, err := cache.Get(context.Background(), "t1")
	if !errors.Is(err, domain.ErrInfrastructure) {
		t.Fatalf("err = %v, want infrastructure", err)
	}
}

func TestInvalidateForcesReload(t *testing.T) {
	store := &fakeStore{cfgs: map[string]domain.TenantConfiguration{
		"t1": domain.TierConfiguration("t1", domain.TierBasic, time.Now()),
	}}
	cache := New(store, time.Hour, zap.NewNop())

	if _, _, err := cache.Get(context.Background(), "t1"); err != nil {
		t.Fatal(err)
	}
	cache.Invalidate("t1")
	if _, _, err := cache.Get(context.Background(), "t1"); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&store.calls); n != 2 {
		t.Fatalf("store hit %d times, want 2", n)
	}
}

func TestConcurrentMissesCollapse(t *testing.T) {
	store := &fakeStore{cfgs: map[string]domain.TenantConfiguration{
		"t1": domain.TierConfiguration("t1", domain.TierBasic, time.Now()),
	}}
	cache := New(store, time.Hour, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := cache.Get(context.Background(), "t1"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if n := atomic.LoadInt32(&store.calls); n != 1 {
		t.Fatalf("store hit %d times, want 1", n)
	}
}
