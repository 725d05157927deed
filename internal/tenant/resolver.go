package tenant

import (
	"context"
	"strings"
)

// Directory answers tenant existence checks for the resolver. The production
// implementation is the tenant repository fronted by a Redis cache; tests use
// an in-memory map.
type Directory interface {
	// TenantExists reports whether a tenant with the given id exists.
	// Soft-deleted tenants still exist for this purpose: a platform
	// operator may target them during the retention window.
	TenantExists(ctx context.Context, id string) (bool, error)
}

// Resolver computes the effective tenant Scope for a request. It is the only
// place in the codebase allowed to turn a client-supplied tenant override
// into a tenant id; every endpoint obtains its Scope here and nowhere else.
type Resolver struct {
	dir Directory
}

// NewResolver constructs a Resolver backed by the given Directory.
func NewResolver(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve computes the Scope governing the request.
//
// For non-privileged principals the requested override is ignored entirely:
// it is not inspected, not validated, and not logged, so a client probing
// with foreign tenant ids receives no behavioral signal whatsoever. For the
// platform operator a present override is validated against the Directory
// and yields a cross-tenant scope; an absent override falls back to the
// operator's home (platform) tenant. A nonexistent override fails with
// ErrTenantNotFound and never silently falls back.
//
// Resolve is idempotent: identical inputs always produce identical scopes.
func (r *Resolver) Resolve(ctx context.Context, p Principal, requestedTenantID string) (Scope, error) {
	if p.ID == "" || p.HomeTenantID == "" {
		return Scope{}, ErrAuthenticationRequired
	}

	if !p.Privileged() {
		return Scope{TenantID: p.HomeTenantID, CrossTenant: false}, nil
	}

	requested := strings.TrimSpace(requestedTenantID)
	if requested == "" || requested == p.HomeTenantID {
		return Scope{TenantID: p.HomeTenantID, CrossTenant: false}, nil
	}

	exists, err := r.dir.TenantExists(ctx, requested)
	if err != nil {
		return Scope{}, err
	}
	if !exists {
		return Scope{}, ErrTenantNotFound
	}

	return Scope{TenantID: requested, CrossTenant: true}, nil
}
