package tenantfilter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

// Store is a tenant-scoped repository over one gorm model. Every query it
// issues passes through AddTenantFilter and every write through the
// ownership stamp, so handlers built on it cannot leak across tenants.
type Store[T Stampable] struct {
	db    *gorm.DB
	log   *zap.Logger
	now   func() time.Time
	blank func() T
}

func NewStore[T Stampable](db *gorm.DB, log *zap.Logger, blank func() T) *Store[T] {
	return &Store[T]{db: db, log: log, now: time.Now, blank: blank}
}

func (s *Store[T]) guard() error {
	if s.db == nil {
		return fmt.Errorf("scoped store: %w", domain.ErrInfrastructure)
	}
	return nil
}

// Find lists records for the tenant matching query. Results are re-checked
// against the tenant after the read; mismatches are dropped and logged as a
// security event rather than returned.
func (s *Store[T]) Find(ctx context.Context, tenantID string, query map[string]any) ([]T, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	var items []T
	filtered := AddTenantFilter(query, tenantID)
	if err := s.db.WithContext(ctx).Where(filtered).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("scoped find: %w", errors.Join(domain.ErrInfrastructure, err))
	}
	kept, dropped := FilterSlice(items, tenantID)
	if dropped > 0 {
		s.log.Warn("security_event: scoped read returned foreign records",
			zap.String("tenant_id", tenantID),
			zap.Int("dropped", dropped))
	}
	return kept, nil
}

// First returns one record for the tenant, or ErrNotFound.
func (s *Store[T]) First(ctx context.Context, tenantID string, query map[string]any) (T, error) {
	var zero T
	if err := s.guard(); err != nil {
		return zero, err
	}
	item := s.blank()
	filtered := AddTenantFilter(query, tenantID)
	err := s.db.WithContext(ctx).Where(filtered).First(item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return zero, domain.ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("scoped first: %w", errors.Join(domain.ErrInfrastructure, err))
	}
	if err := Verify(item, tenantID); err != nil {
		s.log.Warn("security_event: scoped read crossed tenants",
			zap.String("tenant_id", tenantID),
			zap.String("record_tenant_id", item.OwnerTenant()))
		return zero, err
	}
	return item, nil
}

// Create stamps ownership and inserts. A record pre-stamped with a
// different tenant is rejected rather than silently restamped, since that
// shape only occurs when a caller tries to write into a foreign tenant.
func (s *Store[T]) Create(ctx context.Context, tenantID string, item T) error {
	if err := s.guard(); err != nil {
		return err
	}
	if owner := item.OwnerTenant(); owner != "" && owner != tenantID {
		s.log.Warn("security_event: create attempted with foreign tenant stamp",
			zap.String("tenant_id", tenantID),
			zap.String("record_tenant_id", owner))
		return &domain.AuthzError{Code: domain.CodeTenantMismatch, Err: domain.ErrForbidden}
	}
	item.StampTenant(tenantID, s.now())
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("scoped create: %w", errors.Join(domain.ErrInfrastructure, err))
	}
	return nil
}

// Updates applies changes to records matching query within the tenant.
// The tenant column cannot be changed through this path.
func (s *Store[T]) Updates(ctx context.Context, tenantID string, query, changes map[string]any) (int64, error) {
	if err := s.guard(); err != nil {
		return 0, err
	}
	sanitized := make(map[string]any, len(changes)+1)
	for k, v := range changes {
		if k == TenantKey {
			continue
		}
		sanitized[k] = v
	}
	sanitized[TouchedKey] = s.now().UTC()
	filtered := AddTenantFilter(query, tenantID)
	res := s.db.WithContext(ctx).Model(s.blank()).Where(filtered).Updates(sanitized)
	if res.Error != nil {
		return 0, fmt.Errorf("scoped update: %w", errors.Join(domain.ErrInfrastructure, res.Error))
	}
	return res.RowsAffected, nil
}

// Delete removes records matching query within the tenant.
func (s *Store[T]) Delete(ctx context.Context, tenantID string, query map[string]any) (int64, error) {
	if err := s.guard(); err != nil {
		return 0, err
	}
	filtered := AddTenantFilter(query, tenantID)
	res := s.db.WithContext(ctx).Where(filtered).Delete(s.blank())
	if res.Error != nil {
		return 0, fmt.Errorf("scoped delete: %w", errors.Join(domain.ErrInfrastructure, res.Error))
	}
	return res.RowsAffected, nil
}

// Count counts records for the tenant matching query.
func (s *Store[T]) Count(ctx context.Context, tenantID string, query map[string]any) (int64, error) {
	if err := s.guard(); err != nil {
		return 0, err
	}
	var n int64
	filtered := AddTenantFilter(query, tenantID)
	if err := s.db.WithContext(ctx).Model(s.blank()).Where(filtered).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("scoped count: %w", errors.Join(domain.ErrInfrastructure, err))
	}
	return n, nil
}
