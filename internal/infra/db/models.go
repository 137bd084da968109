package db

import "time"

type TenantModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (TenantModel) TableName() string { return "tenants" }

type UserTenantModel struct {
	ID       int64  `gorm:"primaryKey"`
	UserID   string `gorm:"uniqueIndex:idx_user_tenant;index;not null"`
	TenantID string `gorm:"uniqueIndex:idx_user_tenant;index;not null"`
	Role     string `gorm:"not null"`
	Status   string `gorm:"not null;default:active"`

	InvitedBy  string
	InvitedAt  time.Time
	AcceptedAt *time.Time
	AddedAt    time.Time `gorm:"index;not null"`

	SuspendedAt *time.Time
	SuspendedBy string
}

func (UserTenantModel) TableName() string { return "user_tenants" }

type InvitationModel struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	TenantID   string `gorm:"index;not null"`
	Email      string `gorm:"index;not null"`
	Role       string `gorm:"not null"`
	InvitedBy  string `gorm:"not null"`
	InvitedAt  time.Time
	AcceptedAt *time.Time
}

func (InvitationModel) TableName() string { return "invitations" }

// TenantConfigModel stores module, limit and feature maps as jsonb so tier
// changes never require a migration.
type TenantConfigModel struct {
	TenantID         string `gorm:"primaryKey"`
	EnabledModules   []byte `gorm:"type:jsonb;not null"`
	ModuleLimits     []byte `gorm:"type:jsonb;not null"`
	SubscriptionTier string `gorm:"not null"`
	Features         []byte `gorm:"type:jsonb;not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	UpdatedBy string
}

func (TenantConfigModel) TableName() string { return "tenant_configs" }

// SiteModel is a tenant-scoped resource. The tenant columns are managed by
// the scoped store, not by handlers.
type SiteModel struct {
	ID              string    `gorm:"type:uuid;primaryKey"`
	TenantID        string    `gorm:"column:tenant_id;index;not null"`
	TenantUpdatedAt time.Time `gorm:"column:tenant_updated_at"`

	Name      string `gorm:"not null"`
	Latitude  float64
	Longitude float64
	Status    string `gorm:"not null;default:planned"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (SiteModel) TableName() string { return "sites" }

func (m *SiteModel) OwnerTenant() string { return m.TenantID }

func (m *SiteModel) StampTenant(tenantID string, at time.Time) {
	m.TenantID = tenantID
	m.TenantUpdatedAt = at.UTC()
}
