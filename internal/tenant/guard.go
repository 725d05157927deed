package tenant

import (
	"net/url"
	"strings"
)

// tenantKeys are the request fields known to encode tenant identity, in
// normalized (lowercase, separator-free) form. Matching is done on the
// normalized key so that tenantId, tenant_id and TENANT-ID are all caught.
var tenantKeys = map[string]struct{}{
	"tenantid":       {},
	"tenant":         {},
	"tenantslug":     {},
	"hometenantid":   {},
	"targettenantid": {},
	"organizationid": {},
	"organization":   {},
	"orgid":          {},
	"companyid":      {},
	// branding override historically abused to impersonate another
	// tenant's appearance
	"brandingtenantid": {},
}

func normalizeKey(k string) string {
	k = strings.ToLower(k)
	k = strings.ReplaceAll(k, "-", "")
	k = strings.ReplaceAll(k, "_", "")
	return k
}

func isTenantKey(k string) bool {
	_, ok := tenantKeys[normalizeKey(k)]
	return ok
}

// Guard removes client-supplied tenant identity from request payloads before
// any business logic sees them. It runs ahead of request deserialization and
// has no failure mode: stripping always succeeds, and the stripped values are
// discarded rather than substituted.
//
// Allowed, when non-empty, is the closed set of recognized top-level body
// fields for the operation; anything outside it is dropped. The tenant key
// set is always applied on top, so a tenant-identifying field accidentally
// added to an allow list later is still removed.
type Guard struct {
	Allowed map[string]struct{}
}

// NewGuard builds a Guard whose allow list contains the given body fields.
// A Guard with no fields applies only the tenant-key strip.
func NewGuard(fields ...string) Guard {
	g := Guard{}
	if len(fields) > 0 {
		g.Allowed = make(map[string]struct{}, len(fields))
		for _, f := range fields {
			g.Allowed[f] = struct{}{}
		}
	}
	return g
}

// Sanitize returns copies of body and query with every tenant-identifying
// field removed, recursively for nested body objects. For the platform
// operator nothing is stripped: whether the operator's override takes effect
// is decided by Policy and Resolver, not here. Sanitize is pure and
// idempotent; sanitizing already-sanitized input is a no-op.
func (g Guard) Sanitize(p Principal, body map[string]any, query url.Values) (map[string]any, url.Values) {
	if p.Privileged() {
		return body, query
	}
	return g.sanitizeBody(body, true), sanitizeQuery(query)
}

func (g Guard) sanitizeBody(body map[string]any, top bool) map[string]any {
	if body == nil {
		return nil
	}
	out := make(map[string]any, len(body))
	for k, v := range body {
		if isTenantKey(k) {
			continue
		}
		if top && g.Allowed != nil {
			if _, ok := g.Allowed[k]; !ok {
				continue
			}
		}
		switch nested := v.(type) {
		case map[string]any:
			out[k] = g.sanitizeBody(nested, false)
		case []any:
			out[k] = g.sanitizeSlice(nested)
		default:
			out[k] = v
		}
	}
	return out
}

func (g Guard) sanitizeSlice(items []any) []any {
	out := make([]any, len(items))
	for i, v := range items {
		switch nested := v.(type) {
		case map[string]any:
			out[i] = g.sanitizeBody(nested, false)
		case []any:
			out[i] = g.sanitizeSlice(nested)
		default:
			out[i] = v
		}
	}
	return out
}

func sanitizeQuery(query url.Values) url.Values {
	if query == nil {
		return nil
	}
	out := make(url.Values, len(query))
	for k, vs := range query {
		if isTenantKey(k) {
			continue
		}
		out[k] = append([]string(nil), vs...)
	}
	return out
}
