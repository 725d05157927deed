package tenant

import "testing"

func TestMayCrossTenant(t *testing.T) {
	var policy Policy

	if !policy.MayCrossTenant(Principal{ID: "op", Role: RolePlatformOperator}) {
		t.Fatal("platform operator denied cross-tenant access")
	}
	for _, role := range []Role{RoleTenantAdmin, RoleAgent, RoleCustomer, Role("superadmin"), Role("")} {
		if policy.MayCrossTenant(Principal{ID: "u1", Role: role}) {
			t.Fatalf("role %q granted cross-tenant access", role)
		}
	}
}

func TestRequiresAudit(t *testing.T) {
	var policy Policy

	home := Scope{TenantID: "tenant-a"}
	cross := Scope{TenantID: "tenant-b", CrossTenant: true}

	// Any cross-tenant scope is audited, whatever the action.
	if !policy.RequiresAudit(cross, "") || !policy.RequiresAudit(cross, "ticket.read") {
		t.Fatal("cross-tenant scope not flagged for audit")
	}

	// Sensitive actions are audited even inside the home tenant.
	for _, action := range []string{ActionTenantCreate, ActionTenantStatusChange, ActionTenantDelete, ActionTenantExport, ActionRoleChange, ActionCredentialReset} {
		if !policy.RequiresAudit(home, action) {
			t.Fatalf("sensitive action %q not flagged for audit", action)
		}
	}

	// Ordinary home-tenant work is not.
	if policy.RequiresAudit(home, "ticket.read") || policy.RequiresAudit(home, "") {
		t.Fatal("ordinary home-tenant action flagged for audit")
	}
}
