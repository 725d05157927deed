package tenant

// OwnsOption modifies a single ownership check. Options exist so that the
// rare legitimate exception is declared explicitly at the call site instead
// of being inferred from the scope or the principal.
type OwnsOption func(*ownsConfig)

type ownsConfig struct {
	crossTenantRead bool
}

// ForDeclaredCrossTenantRead marks the check as part of a pre-declared
// cross-tenant read, e.g. the platform operator listing audit entries across
// all tenants. Call sites must gate the option on Policy.MayCrossTenant for
// the acting principal; the validator honors the declaration as-is because
// the declaration, not an inference, is the contract.
func ForDeclaredCrossTenantRead() OwnsOption {
	return func(c *ownsConfig) { c.crossTenantRead = true }
}

// OwnsResource reports whether a loaded or targeted resource belongs to the
// request's effective tenant. Every data-access path calls this on every row
// it touches, even though repositories already filter by tenant id at the
// query level; the duplication is deliberate defense in depth, turning a
// missing query filter into a rejected row instead of a leak.
//
// A false answer must be surfaced to callers as ErrResourceNotFound, never as
// a forbidden-class error, so responses cannot confirm that foreign-tenant
// data exists. The function performs no I/O and cannot fail.
func OwnsResource(scope Scope, resourceTenantID string, opts ...OwnsOption) bool {
	var cfg ownsConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.crossTenantRead {
		return true
	}
	return resourceTenantID != "" && resourceTenantID == scope.TenantID
}
