package domain

import "testing"

func TestOwnerHasEveryCapability(t *testing.T) {
	for _, capability := range Capabilities {
		if !HasCapability(RoleOwner, capability) {
			t.Fatalf("owner missing capability %s", capability)
		}
		if !HasCapability(RolePlatformAdmin, capability) {
			t.Fatalf("platform admin missing capability %s", capability)
		}
	}
}

func TestCapabilityTable(t *testing.T) {
	cases := []struct {
		role       Role
		capability Capability
		want       bool
	}{
		{RoleAdmin, CapManageDevices, true},
		{RoleAdmin, CapViewBilling, false},
		{RoleEngineer, CapManageSites, true},
		{RoleEngineer, CapManageDevices, false},
		{RoleEngineer, CapInviteUsers, false},
		{RoleInstaller, CapManageSites, false},
		{RoleInstaller, CapViewReports, false},
		{RoleHelpdesk, CapViewReports, true},
		{RoleHelpdesk, CapManageUsers, false},
		{RoleSales, CapViewBilling, true},
		{RoleSales, CapManageSites, false},
		{RoleViewer, CapViewReports, true},
		{RoleViewer, CapManageDevices, false},
		{Role("bogus"), CapViewReports, false},
	}
	for _, tc := range cases {
		if got := HasCapability(tc.role, tc.capability); got != tc.want {
			t.Fatalf("HasCapability(%s, %s) = %v, want %v", tc.role, tc.capability, got, tc.want)
		}
	}
}

func TestPermissionSnapshotCoversAllCapabilities(t *testing.T) {
	snapshot := PermissionSnapshot(RoleEngineer)
	if len(snapshot) != len(Capabilities) {
		t.Fatalf("snapshot has %d entries, want %d", len(snapshot), len(Capabilities))
	}
	if !snapshot[CapManageSites] {
		t.Fatal("engineer snapshot missing canManageSites")
	}
	if snapshot[CapManageUsers] {
		t.Fatal("engineer snapshot should not include canManageUsers")
	}
}

func TestAssignableRoles(t *testing.T) {
	ownerSet := AssignableRoles(RoleOwner)
	if len(ownerSet) != 6 {
		t.Fatalf("owner assignable set has %d roles, want 6", len(ownerSet))
	}
	for _, role := range ownerSet {
		if role == RoleOwner || role == RolePlatformAdmin {
			t.Fatalf("owner set must never contain %s", role)
		}
	}

	adminSet := AssignableRoles(RoleAdmin)
	if len(adminSet) != 5 {
		t.Fatalf("admin assignable set has %d roles, want 5", len(adminSet))
	}
	for _, role := range adminSet {
		if role == RoleOwner || role == RoleAdmin {
			t.Fatalf("admin set must never contain %s", role)
		}
	}

	for _, role := range []Role{RoleEngineer, RoleInstaller, RoleHelpdesk, RoleSales, RoleViewer} {
		if set := AssignableRoles(role); len(set) != 0 {
			t.Fatalf("%s should have no assignable roles, got %v", role, set)
		}
	}
}

func TestCanAssignRole(t *testing.T) {
	cases := []struct {
		actor  Role
		target Role
		want   bool
	}{
		{RoleOwner, RoleAdmin, true},
		{RoleOwner, RoleOwner, false},
		{RoleAdmin, RoleAdmin, false},
		{RoleAdmin, RoleViewer, true},
		{RoleAdmin, RoleOwner, false},
		{RoleEngineer, RoleViewer, false},
		{RolePlatformAdmin, RoleAdmin, true},
		{RolePlatformAdmin, RoleOwner, false},
	}
	for _, tc := range cases {
		if got := CanAssignRole(tc.actor, tc.target); got != tc.want {
			t.Fatalf("CanAssignRole(%s, %s) = %v, want %v", tc.actor, tc.target, got, tc.want)
		}
	}
}

func TestAssignableRolesReturnsCopy(t *testing.T) {
	set := AssignableRoles(RoleOwner)
	set[0] = RoleOwner
	if AssignableRoles(RoleOwner)[0] == RoleOwner {
		t.Fatal("mutating the returned slice altered the table")
	}
}

func TestParseRole(t *testing.T) {
	if _, ok := ParseRole("engineer"); !ok {
		t.Fatal("engineer should parse")
	}
	if _, ok := ParseRole("platform_admin"); ok {
		t.Fatal("platform_admin must not parse as a tenant role")
	}
	if _, ok := ParseRole("superuser"); ok {
		t.Fatal("unknown role should not parse")
	}
}
