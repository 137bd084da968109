package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

// Entitlements answers module, feature and limit questions for a tenant.
// Store outages degrade per the configured failure policy: fail-open turns
// an unreachable config store into full access with a warning, fail-closed
// turns it into 503s.
type Entitlements struct {
	configs     ConfigProvider
	gatePolicy  domain.FailurePolicy
	limitPolicy domain.FailurePolicy
	log         *zap.Logger
}

func NewEntitlements(configs ConfigProvider, gatePolicy, limitPolicy domain.FailurePolicy, log *zap.Logger) *Entitlements {
	return &Entitlements{
		configs:     configs,
		gatePolicy:  gatePolicy,
		limitPolicy: limitPolicy,
		log:         log,
	}
}

// RequireModule rejects when the tenant's configuration disables the
// module. A tenant with no configuration row predates per-module licensing
// and keeps full access; the pass is logged so those tenants can be
// migrated.
func (e *Entitlements) RequireModule(ctx context.Context, tenantID string, module domain.Module) error {
	cfg, found, err := e.configs.Get(ctx, tenantID)
	if err != nil {
		return e.gateFailure(err, tenantID, "module", string(module))
	}
	if !found {
		e.log.Warn("module gate passed: tenant has no configuration row",
			zap.String("tenant_id", tenantID),
			zap.String("module", string(module)))
		return nil
	}
	if !cfg.ModuleEnabled(module) {
		return &domain.ModuleDisabledError{TenantID: tenantID, Module: module}
	}
	return nil
}

// RequireFeature rejects when the tenant's tier does not include the
// feature. Unlike modules, a missing configuration row evaluates against
// the default tier rather than passing outright; features never predate
// tier gating.
func (e *Entitlements) RequireFeature(ctx context.Context, tenantID string, feature domain.Feature) error {
	cfg, found, err := e.configs.Get(ctx, tenantID)
	if err != nil {
		return e.gateFailure(err, tenantID, "feature", string(feature))
	}
	if !found {
		cfg = domain.DefaultConfiguration(tenantID, time.Now())
	}
	if !cfg.FeatureEnabled(feature) {
		return &domain.FeatureNotIncludedError{
			TenantID: tenantID,
			Feature:  feature,
			Tier:     cfg.SubscriptionTier,
		}
	}
	return nil
}

// CheckLimit rejects when creating one more of the limited resource would
// exceed the tenant's quota. usage runs only for finite limits.
func (e *Entitlements) CheckLimit(ctx context.Context, tenantID string, limit domain.Limit, usage UsageCounter) error {
	cfg, found, err := e.configs.Get(ctx, tenantID)
	if err != nil {
		return e.limitFailure(err, tenantID, limit)
	}
	if !found {
		return nil
	}
	max, ok := cfg.LimitFor(limit)
	if !ok || max >= domain.Unlimited {
		return nil
	}
	current, err := usage(ctx)
	if err != nil {
		return e.limitFailure(err, tenantID, limit)
	}
	if current >= int64(max) {
		return &domain.LimitExceededError{
			TenantID: tenantID,
			Limit:    limit,
			Max:      max,
			Current:  int(current),
		}
	}
	return nil
}

// RequestBudget reports how many API requests per minute the tenant's
// tier allows, or fallback when the configuration is unreachable or the
// tenant carries no budget. Unlimited budgets report zero, meaning the
// caller should not throttle at all.
func (e *Entitlements) RequestBudget(ctx context.Context, tenantID string, fallback int) int {
	cfg, found, err := e.configs.Get(ctx, tenantID)
	if err != nil {
		e.log.Warn("request budget lookup failed, using fallback",
			zap.String("tenant_id", tenantID),
			zap.Int("fallback", fallback),
			zap.Error(err))
		return fallback
	}
	if !found {
		return fallback
	}
	budget, ok := cfg.LimitFor(domain.LimitMaxAPIRequests)
	if !ok {
		return fallback
	}
	if budget >= domain.Unlimited {
		return 0
	}
	return budget
}

func (e *Entitlements) gateFailure(cause error, tenantID, kind, name string) error {
	if e.gatePolicy == domain.FailOpen {
		e.log.Warn("entitlement check failed open",
			zap.String("tenant_id", tenantID),
			zap.String(kind, name),
			zap.Error(cause))
		return nil
	}
	return fmt.Errorf("entitlement check: %w", errors.Join(domain.ErrInfrastructure, cause))
}

func (e *Entitlements) limitFailure(cause error, tenantID string, limit domain.Limit) error {
	if e.limitPolicy == domain.FailOpen {
		e.log.Warn("limit check failed open",
			zap.String("tenant_id", tenantID),
			zap.String("limit", string(limit)),
			zap.Error(cause))
		return nil
	}
	return fmt.Errorf("limit check: %w", errors.Join(domain.ErrInfrastructure, cause))
}
