package domain

// Role is the closed set of membership roles. Handlers never compare raw
// strings; every capability question goes through the tables below.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleAdmin     Role = "admin"
	RoleEngineer  Role = "engineer"
	RoleInstaller Role = "installer"
	RoleHelpdesk  Role = "helpdesk"
	RoleSales     Role = "sales"
	RoleViewer    Role = "viewer"

	// RolePlatformAdmin is not a tenant role. It is matched against the
	// configured allow-list of operator emails and never stored in an
	// association record.
	RolePlatformAdmin Role = "platform_admin"
)

// TenantRoles lists every role an association record may carry, in rank order.
var TenantRoles = []Role{
	RoleOwner,
	RoleAdmin,
	RoleEngineer,
	RoleInstaller,
	RoleHelpdesk,
	RoleSales,
	RoleViewer,
}

func ParseRole(value string) (Role, bool) {
	role := Role(value)
	for _, known := range TenantRoles {
		if role == known {
			return role, true
		}
	}
	return "", false
}

// Capability names a yes/no question the permission evaluator can answer
// about a role.
type Capability string

const (
	CapManageDevices      Capability = "canManageDevices"
	CapManagePresets      Capability = "canManagePresets"
	CapInviteUsers        Capability = "canInviteUsers"
	CapManageUsers        Capability = "canManageUsers"
	CapEditTenantSettings Capability = "canEditTenantSettings"
	CapViewBilling        Capability = "canViewBilling"
	CapManageSites        Capability = "canManageSites"
	CapViewReports        Capability = "canViewReports"
)

// Capabilities lists every known capability, for snapshotting a full
// permission row into a TenantContext.
var Capabilities = []Capability{
	CapManageDevices,
	CapManagePresets,
	CapInviteUsers,
	CapManageUsers,
	CapEditTenantSettings,
	CapViewBilling,
	CapManageSites,
	CapViewReports,
}

// capabilityTable is data, not per-tenant logic: new endpoints consult
// HasCapability instead of re-implementing role comparisons. Owner and
// platform admin rows are implied (capability superset) and deliberately
// absent. Nothing below admin manages devices or presets.
var capabilityTable = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapManageDevices:      true,
		CapManagePresets:      true,
		CapInviteUsers:        true,
		CapManageUsers:        true,
		CapEditTenantSettings: true,
		CapManageSites:        true,
		CapViewReports:        true,
	},
	RoleEngineer: {
		CapManageSites: true,
		CapViewReports: true,
	},
	RoleInstaller: {},
	RoleHelpdesk: {
		CapViewReports: true,
	},
	RoleSales: {
		CapViewBilling: true,
		CapViewReports: true,
	},
	RoleViewer: {
		CapViewReports: true,
	},
}

// HasCapability answers a static table lookup. Owner satisfies every
// capability by definition, as does the platform admin side channel.
func HasCapability(role Role, capability Capability) bool {
	if role == RoleOwner || role == RolePlatformAdmin {
		return true
	}
	row, ok := capabilityTable[role]
	if !ok {
		return false
	}
	return row[capability]
}

// PermissionSnapshot materializes the full capability row for a role. The
// snapshot is what rides along in a TenantContext.
func PermissionSnapshot(role Role) map[Capability]bool {
	out := make(map[Capability]bool, len(Capabilities))
	for _, capability := range Capabilities {
		out[capability] = HasCapability(role, capability)
	}
	return out
}

// assignableRoles is strictly-below-role: only owner and admin may create
// accounts, and never at or above their own rank. Platform admin is not
// assignable through any tenant-facing path.
var assignableRoles = map[Role][]Role{
	RoleOwner: {RoleAdmin, RoleEngineer, RoleInstaller, RoleHelpdesk, RoleSales, RoleViewer},
	RoleAdmin: {RoleEngineer, RoleInstaller, RoleHelpdesk, RoleSales, RoleViewer},
}

// AssignableRoles returns the roles the given role may create or assign.
// Every role besides owner and admin gets an empty set.
func AssignableRoles(role Role) []Role {
	source := assignableRoles[role]
	if role == RolePlatformAdmin {
		// The override path may assign any tenant role except owner;
		// ownership moves only through the explicit transfer operation.
		source = assignableRoles[RoleOwner]
	}
	out := make([]Role, len(source))
	copy(out, source)
	return out
}

func CanAssignRole(actor Role, target Role) bool {
	for _, role := range AssignableRoles(actor) {
		if role == target {
			return true
		}
	}
	return false
}
