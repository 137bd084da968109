package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

// TenantConfigService reads and administers tenant configuration. Reads
// are open to any member; writes are restricted to the tenant's owner or
// a platform operator.
type TenantConfigService struct {
	store domain.TenantConfigStore
	cache ConfigProvider
	now   func() time.Time
	log   *zap.Logger
}

func NewTenantConfigService(store domain.TenantConfigStore, cache ConfigProvider, log *zap.Logger) *TenantConfigService {
	return &TenantConfigService{store: store, cache: cache, now: time.Now, log: log}
}

// Get returns the tenant's effective configuration. A tenant with no row
// sees the defaults so clients can always render module state.
func (s *TenantConfigService) Get(ctx context.Context, tc *domain.TenantContext) (domain.TenantConfiguration, error) {
	cfg, found, err := s.cache.Get(ctx, tc.TenantID)
	if err != nil {
		return domain.TenantConfiguration{}, errors.Join(domain.ErrInfrastructure, err)
	}
	if !found {
		return domain.DefaultConfiguration(tc.TenantID, s.now()), nil
	}
	return cfg, nil
}

// canAdminister allows a platform operator anywhere and a tenant's owner
// on their own tenant only.
func (s *TenantConfigService) canAdminister(tc *domain.TenantContext, tenantID string) bool {
	if tc.PlatformAdmin {
		return true
	}
	return tc.Role == domain.RoleOwner && tc.TenantID == tenantID
}

// ApplyTier replaces the tenant's configuration with the tier's table.
func (s *TenantConfigService) ApplyTier(ctx context.Context, tc *domain.TenantContext, tenantID string, tier domain.Tier) (domain.TenantConfiguration, error) {
	if !s.canAdminister(tc, tenantID) {
		return domain.TenantConfiguration{}, &domain.AuthzError{Code: domain.CodePlatformAdminOnly, Err: domain.ErrForbidden}
	}
	cfg := domain.TierConfiguration(tenantID, tier, s.now())
	cfg.UpdatedBy = tc.UserID
	if err := s.store.Upsert(ctx, cfg); err != nil {
		return domain.TenantConfiguration{}, err
	}
	s.cache.Invalidate(tenantID)
	s.log.Info("tenant tier applied",
		zap.String("tenant_id", tenantID),
		zap.String("tier", string(tier)),
		zap.String("applied_by", tc.UserID))
	return cfg, nil
}

// Update overwrites specific modules, limits or features on top of the
// tenant's current configuration.
func (s *TenantConfigService) Update(ctx context.Context, tc *domain.TenantContext, tenantID string, modules map[domain.Module]bool, limits map[domain.Limit]int, features map[domain.Feature]bool) (domain.TenantConfiguration, error) {
	if !s.canAdminister(tc, tenantID) {
		return domain.TenantConfiguration{}, &domain.AuthzError{Code: domain.CodePlatformAdminOnly, Err: domain.ErrForbidden}
	}
	cfg, err := s.store.Get(ctx, tenantID)
	if errors.Is(err, domain.ErrNotFound) {
		cfg = domain.DefaultConfiguration(tenantID, s.now())
	} else if err != nil {
		return domain.TenantConfiguration{}, err
	}
	for module, enabled := range modules {
		cfg.EnabledModules[module] = enabled
	}
	for limit, value := range limits {
		cfg.ModuleLimits[limit] = value
	}
	for feature, enabled := range features {
		cfg.Features[feature] = enabled
	}
	cfg.UpdatedAt = s.now()
	cfg.UpdatedBy = tc.UserID
	if err := s.store.Upsert(ctx, cfg); err != nil {
		return domain.TenantConfiguration{}, err
	}
	s.cache.Invalidate(tenantID)
	s.log.Info("tenant configuration updated",
		zap.String("tenant_id", tenantID),
		zap.String("updated_by", tc.UserID))
	return cfg, nil
}
