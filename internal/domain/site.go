package domain

import (
	"context"
	"time"
)

// Site is a tower or PoP location, the sample tenant-scoped resource the
// coverage map module manages.
type Site struct {
	ID              string
	TenantID        string
	TenantUpdatedAt time.Time

	Name      string
	Latitude  float64
	Longitude float64
	Status    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SiteStore is implemented by the tenant-scoped repository; tenantID here
// always comes from a TenantContext, never from request input.
type SiteStore interface {
	List(ctx context.Context, tenantID string) ([]Site, error)
	GetByID(ctx context.Context, tenantID, id string) (Site, error)
	Create(ctx context.Context, tenantID string, site *Site) error
	Update(ctx context.Context, tenantID, id string, changes map[string]any) (int64, error)
	Delete(ctx context.Context, tenantID, id string) (int64, error)
	Count(ctx context.Context, tenantID string) (int64, error)
}
