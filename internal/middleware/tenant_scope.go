package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"helpdesk/internal/metrics"
	"helpdesk/internal/tenant"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TenantIDParam is the single recognized override parameter, honored only for
// the platform operator and silently dropped for everyone else.
const TenantIDParam = "tenantId"

// HeaderTenantID is the header equivalent of TenantIDParam.
const HeaderTenantID = "X-Tenant-ID"

const maxGuardedBodyBytes = 1 << 20

// TenantScope is the per-request chokepoint of the isolation layer. In order
// it: sanitizes client-supplied tenant fields out of the query string and
// JSON body (spoofing guard), resolves the effective tenant scope exactly
// once, audits a cross-tenant override, and threads the scope through the
// request context. Every authenticated route group mounts it; handlers and
// services only ever read the scope it produced.
func TenantScope(resolver *tenant.Resolver, auditor tenant.Auditor, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	var policy tenant.Policy
	guard := tenant.NewGuard()

	return func(c *gin.Context) {
		p, ok := tenant.PrincipalFromContext(c.Request.Context())
		if !ok {
			log.Warn("principal missing before tenant scope middleware", zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		// The override is read before sanitation; for non-privileged
		// principals Resolve ignores it unconditionally, so no branch on
		// the principal's role is needed here.
		requested := strings.TrimSpace(c.Query(TenantIDParam))
		if requested == "" {
			requested = strings.TrimSpace(c.GetHeader(HeaderTenantID))
		}

		sanitizeRequest(c, guard, p)

		scope, err := resolver.Resolve(c.Request.Context(), p, requested)
		if err != nil {
			if errors.Is(err, tenant.ErrTenantNotFound) {
				// Only a privileged caller can reach this branch. The
				// denied attempt is still audited; there is no fallback
				// to the operator's home tenant.
				auditor.Record(c.Request.Context(), tenant.AuditRecord{
					ActorID:        p.ID,
					ActorRole:      p.Role,
					Action:         tenant.ActionOverrideDenied,
					TargetTenantID: requested,
				})
				metrics.OverrideDenials.Inc()
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
				return
			}
			log.Error("tenant scope resolution failed", zap.Error(err), zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		if policy.RequiresAudit(scope, "") {
			metrics.CrossTenantRequests.WithLabelValues(string(p.Role)).Inc()
			auditor.Record(c.Request.Context(), tenant.AuditRecord{
				ActorID:        p.ID,
				ActorRole:      p.Role,
				Action:         tenant.ActionScopeOverride,
				TargetTenantID: scope.TenantID,
			})
		}

		c.Request = c.Request.WithContext(tenant.WithScope(c.Request.Context(), scope))
		c.Next()
	}
}

// BodyGuard narrows a JSON request body to the operation's recognized
// top-level fields before the handler binds it. The tenant-key strip from the
// shared scope middleware stays in force; this adds the closed field schema
// for operations that accept writes. Mount it per route, after TenantScope.
func BodyGuard(fields ...string) gin.HandlerFunc {
	guard := tenant.NewGuard(fields...)
	return func(c *gin.Context) {
		if p, ok := tenant.PrincipalFromContext(c.Request.Context()); ok {
			sanitizeRequest(c, guard, p)
		}
		c.Next()
	}
}

// sanitizeRequest applies the spoofing guard to the query string and, for
// JSON requests, the body. It runs before any handler binds the payload, so
// business logic never sees a client-supplied tenant field. Guard failures
// cannot happen; an unreadable or non-object body is left for the handler's
// own binding to reject.
func sanitizeRequest(c *gin.Context, guard tenant.Guard, p tenant.Principal) {
	if p.Privileged() {
		return
	}

	query := c.Request.URL.Query()
	_, sanitizedQuery := guard.Sanitize(p, nil, query)
	if len(sanitizedQuery) != len(query) {
		c.Request.URL.RawQuery = sanitizedQuery.Encode()
	}

	if c.Request.Body == nil || !strings.Contains(c.ContentType(), "application/json") {
		return
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxGuardedBodyBytes))
	if err != nil {
		c.Request.Body = io.NopCloser(bytes.NewReader(nil))
		return
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		return
	}

	sanitizedBody, _ := guard.Sanitize(p, body, nil)
	encoded, err := json.Marshal(sanitizedBody)
	if err != nil {
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(encoded))
	c.Request.ContentLength = int64(len(encoded))
}
