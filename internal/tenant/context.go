package tenant

import "context"

// Role is the coarse authorization role carried by a Principal. The set is
// closed: adding a role here is a security review, not a configuration change.
type Role string

const (
	// RolePlatformOperator is the only role that may act across tenant
	// boundaries. Every such action is audited.
	RolePlatformOperator Role = "platform_operator"
	RoleTenantAdmin      Role = "tenant_admin"
	RoleAgent            Role = "agent"
	RoleCustomer         Role = "customer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePlatformOperator, RoleTenantAdmin, RoleAgent, RoleCustomer:
		return true
	}
	return false
}

// Privileged reports whether r may deliberately cross tenant boundaries.
func (r Role) Privileged() bool {
	return r == RolePlatformOperator
}

// Principal is the authenticated actor behind a request. It is constructed
// once per request from a verified credential and never mutated afterwards.
// HomeTenantID comes from the credential, never from request parameters; for
// non-privileged roles it is the only tenant the principal will ever see.
type Principal struct {
	ID           string
	HomeTenantID string
	Role         Role
}

// Privileged reports whether the principal holds the platform operator role.
func (p Principal) Privileged() bool {
	return p.Role.Privileged()
}

// Scope is the effective tenant context of a request: the single tenant id
// that governs every data access the request performs. It is computed exactly
// once per request by Resolver.Resolve; downstream code must use this value
// and never re-derive a tenant id from raw request input.
type Scope struct {
	TenantID    string
	CrossTenant bool
}

type principalKey struct{}
type scopeKey struct{}

// WithPrincipal attaches the Principal to the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext retrieves the Principal attached by the auth
// middleware. The second return value indicates whether one was present.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// WithScope attaches the resolved Scope to the context.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// ScopeFromContext retrieves the Scope attached by the scope-resolution
// middleware. The second return value indicates whether one was present.
func ScopeFromContext(ctx context.Context) (Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(Scope)
	return s, ok
}

// MustScope retrieves the Scope and panics if it is missing. It is meant for
// code paths that run strictly after the scope middleware, where a missing
// scope is a programming error rather than a client error.
func MustScope(ctx context.Context) Scope {
	s, ok := ScopeFromContext(ctx)
	if !ok {
		panic("tenant: Scope missing from context")
	}
	return s
}
