package tenant

// Sensitive actions always require an audit entry, regardless of whether the
// request crossed a tenant boundary. The set is enumerated, never inferred
// from action names.
const (
	ActionTenantCreate       = "tenant.create"
	ActionTenantUpdate       = "tenant.update"
	ActionTenantStatusChange = "tenant.status_change"
	ActionTenantDelete       = "tenant.delete"
	ActionTenantExport       = "tenant.export"
	ActionOverrideDenied     = "tenant.override_denied"
	ActionScopeOverride      = "tenant.scope_override"
	ActionRoleChange         = "user.role_change"
	ActionCredentialReset    = "user.credential_reset"
)

var sensitiveActions = map[string]struct{}{
	ActionTenantCreate:       {},
	ActionTenantStatusChange: {},
	ActionTenantDelete:       {},
	ActionTenantExport:       {},
	ActionRoleChange:         {},
	ActionCredentialReset:    {},
}

// Policy is the single reviewable rule set for privileged access. Endpoints
// never branch on roles to decide tenant reach themselves; they ask Policy.
type Policy struct{}

// MayCrossTenant reports whether the principal may ever set an effective
// tenant different from its home tenant. The list is closed by design: there
// is no per-tenant delegation and no escalation path, because any extension
// mechanism here would itself be the highest-risk feature in the system.
func (Policy) MayCrossTenant(p Principal) bool {
	return p.Role == RolePlatformOperator
}

// RequiresAudit reports whether performing action under scope must produce an
// audit entry: true for any cross-tenant scope, and for the enumerated
// security-sensitive actions even inside the home tenant.
func (Policy) RequiresAudit(scope Scope, action string) bool {
	if scope.CrossTenant {
		return true
	}
	_, ok := sensitiveActions[action]
	return ok
}
