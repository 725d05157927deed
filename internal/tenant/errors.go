package tenant

import "errors"

var (
	// ErrAuthenticationRequired is returned when no Principal could be
	// constructed for the request.
	ErrAuthenticationRequired = errors.New("tenant: authentication required")

	// ErrTenantContextMissing indicates that code ran without a resolved
	// Scope. Resolve is total over authenticated requests, so hitting this
	// error means a handler bypassed the scope middleware. It is logged
	// loudly and treated as an internal error, never a client error.
	ErrTenantContextMissing = errors.New("tenant: effective tenant context missing")

	// ErrTenantNotFound is returned when a privileged caller requests an
	// override for a tenant that does not exist. It is only ever surfaced
	// to the privileged caller; non-privileged overrides are ignored before
	// the existence check can run.
	ErrTenantNotFound = errors.New("tenant: not found")

	// ErrResourceNotFound covers both a genuinely absent resource and a
	// resource that failed the ownership check. The two causes are
	// deliberately indistinguishable so that a response can never confirm
	// the existence of another tenant's data.
	ErrResourceNotFound = errors.New("tenant: resource not found")

	// ErrForbidden is returned for role failures on same-tenant operations,
	// e.g. an agent calling an operator-only endpoint. It must never be used
	// for cross-tenant resource access; that is ErrResourceNotFound.
	ErrForbidden = errors.New("tenant: forbidden")

	// ErrSlugExists is returned when a tenant slug collides on create.
	ErrSlugExists = errors.New("tenant: slug already exists")
)
