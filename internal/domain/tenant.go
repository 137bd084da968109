package domain

import (
	"context"
	"time"
)

// Tenant is a provisioned customer organization. Rows are created by the
// provisioning pipeline; this layer only reads them.
type Tenant struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type TenantStore interface {
	List(ctx context.Context) ([]Tenant, error)
	// Get returns ErrNotFound when no such tenant exists.
	Get(ctx context.Context, id string) (Tenant, error)
}
