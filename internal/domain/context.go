package domain

// TenantContext is the per-request authorization context: one verified
// identity bound to exactly one tenant, with the role and capability
// snapshot that applied at build time.
type TenantContext struct {
	TenantID    string
	UserID      string
	UserEmail   string
	Role        Role
	Permissions map[Capability]bool

	// PlatformAdmin marks an operator admitted through the email
	// allow-list rather than a user_tenants row.
	PlatformAdmin bool
}

// Can checks the snapshot taken when the context was built. Role changes
// made after that point are not visible to the request in flight.
func (tc *TenantContext) Can(capability Capability) bool {
	if tc == nil {
		return false
	}
	if tc.PlatformAdmin {
		return true
	}
	return tc.Permissions[capability]
}
