package usecase

import (
	"context"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

// ConfigProvider is the read side of tenant configuration, served through
// the TTL cache. found reports whether a configuration row exists.
type ConfigProvider interface {
	Get(ctx context.Context, tenantID string) (cfg domain.TenantConfiguration, found bool, err error)
	Invalidate(tenantID string)
}

// UsageCounter reports current consumption for a limit. Only invoked when
// the limit is finite, so unlimited tenants never pay for the count query.
type UsageCounter func(ctx context.Context) (int64, error)
