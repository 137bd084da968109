// Package tenantfilter provides the two primitives every tenant-scoped
// read and write must pass through: merging the tenant predicate into
// queries, and stamping ownership onto documents. Centralizing them here
// means isolation cannot be forgotten per call site.
package tenantfilter

import (
	"time"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

const (
	// TenantKey is the ownership column every scoped table carries.
	TenantKey = "tenant_id"
	// TouchedKey records when the ownership stamp was last applied.
	TouchedKey = "tenant_updated_at"
)

// AddTenantFilter returns a copy of query with the tenant predicate merged
// in. An attacker-supplied tenant_id in the input is overwritten, never
// honored. The input map is not mutated.
func AddTenantFilter(query map[string]any, tenantID string) map[string]any {
	out := make(map[string]any, len(query)+1)
	for k, v := range query {
		out[k] = v
	}
	out[TenantKey] = tenantID
	return out
}

// AddTenantToDocument stamps ownership onto a document before a write.
// Any pre-existing tenant_id is overwritten.
func AddTenantToDocument(doc map[string]any, tenantID string, now time.Time) map[string]any {
	out := make(map[string]any, len(doc)+2)
	for k, v := range doc {
		out[k] = v
	}
	out[TenantKey] = tenantID
	out[TouchedKey] = now.UTC()
	return out
}

// Scoped is any record that carries a tenant ownership column.
type Scoped interface {
	OwnerTenant() string
}

// Stampable additionally accepts an ownership stamp before a write.
type Stampable interface {
	Scoped
	StampTenant(tenantID string, at time.Time)
}

// FilterSlice drops every element whose ownership does not match tenantID.
// A non-empty result of mismatches indicates a filtering bug upstream, so
// the caller should log what it got back.
func FilterSlice[T Scoped](items []T, tenantID string) (kept []T, dropped int) {
	kept = items[:0:0]
	for _, item := range items {
		if item.OwnerTenant() == tenantID {
			kept = append(kept, item)
			continue
		}
		dropped++
	}
	return kept, dropped
}

// Verify rejects a record that belongs to a different tenant. Used on
// single-record reads as defense in depth behind the query filter.
func Verify(item Scoped, tenantID string) error {
	if item.OwnerTenant() != tenantID {
		return &domain.AuthzError{Code: domain.CodeTenantMismatch, Err: domain.ErrForbidden}
	}
	return nil
}
