package domain

import (
	"context"
	"time"
)

// AssociationStatus is the lifecycle state of a user-tenant membership.
type AssociationStatus string

const (
	StatusActive    AssociationStatus = "active"
	StatusSuspended AssociationStatus = "suspended"
)

// UserTenantAssociation links a user to a tenant with a role. A user holds
// at most one association per tenant.
type UserTenantAssociation struct {
	UserID   string
	TenantID string
	Role     Role
	Status   AssociationStatus

	InvitedBy  string
	InvitedAt  time.Time
	AcceptedAt *time.Time
	AddedAt    time.Time

	SuspendedAt *time.Time
	SuspendedBy string
}

// Invitation is a pending offer of membership, addressed by email so it can
// be issued before the invitee has ever signed in.
type Invitation struct {
	ID         string
	TenantID   string
	Email      string
	Role       Role
	InvitedBy  string
	InvitedAt  time.Time
	AcceptedAt *time.Time
}

// AssociationStore persists user-tenant memberships.
type AssociationStore interface {
	// Get returns ErrNotAMember when no association exists.
	Get(ctx context.Context, userID, tenantID string) (UserTenantAssociation, error)
	// ListForUser returns the user's associations ordered by AddedAt
	// ascending, tenant ID ascending on ties. The first entry is the
	// user's default tenant.
	ListForUser(ctx context.Context, userID string) ([]UserTenantAssociation, error)
	ListForTenant(ctx context.Context, tenantID string) ([]UserTenantAssociation, error)
	Create(ctx context.Context, assoc UserTenantAssociation) error
	UpdateRole(ctx context.Context, userID, tenantID string, role Role) error
	UpdateStatus(ctx context.Context, userID, tenantID string, status AssociationStatus, actor string, at time.Time) error
	Delete(ctx context.Context, userID, tenantID string) error
	CountActive(ctx context.Context, tenantID string) (int64, error)
	// TransferOwnership promotes newOwner and demotes oldOwner to admin
	// in a single transaction.
	TransferOwnership(ctx context.Context, tenantID, oldOwner, newOwner string) error
}

// InvitationStore persists pending invitations.
type InvitationStore interface {
	Get(ctx context.Context, id string) (Invitation, error)
	FindPending(ctx context.Context, tenantID, email string) (Invitation, error)
	Create(ctx context.Context, inv Invitation) error
	MarkAccepted(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// TenantConfigStore persists per-tenant configuration rows.
type TenantConfigStore interface {
	// Get returns ErrNotFound when the tenant has no configuration row.
	Get(ctx context.Context, tenantID string) (TenantConfiguration, error)
	Upsert(ctx context.Context, cfg TenantConfiguration) error
}
