package common

import (
	"errors"
	"net/http"

	"helpdesk/internal/helpdesk"
	"helpdesk/internal/tenant"

	"github.com/gin-gonic/gin"
)

// AbortWithError maps a service error onto the uniform error envelope.
// Ownership failures and genuinely absent resources arrive here as the same
// sentinel, so a cross-tenant probe cannot distinguish the two from the
// response either.
func AbortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tenant.ErrResourceNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Message: "resource not found"})
	case errors.Is(err, tenant.ErrTenantNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Message: "tenant not found"})
	case errors.Is(err, tenant.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "forbidden"})
	case errors.Is(err, tenant.ErrAuthenticationRequired):
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
	case errors.Is(err, tenant.ErrTenantContextMissing):
		// A handler ran without the scope middleware. Internal error, not a
		// client mistake.
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Message: "internal error"})
	case errors.Is(err, tenant.ErrSlugExists), errors.Is(err, helpdesk.ErrEmailExists):
		c.AbortWithStatusJSON(http.StatusConflict, ErrorResponse{Message: err.Error()})
	case errors.Is(err, helpdesk.ErrMissingField), errors.Is(err, helpdesk.ErrInvalidStatus), errors.Is(err, helpdesk.ErrTicketClosed):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Message: "internal error"})
	}
}

// RequestIdentity extracts the principal and effective scope placed on the
// request context by the auth and tenant-scope middleware. A miss means the
// route was mounted outside the authenticated group.
func RequestIdentity(c *gin.Context) (tenant.Principal, tenant.Scope, bool) {
	p, ok := tenant.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return tenant.Principal{}, tenant.Scope{}, false
	}
	scope, ok := tenant.ScopeFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, tenant.ErrTenantContextMissing)
		return tenant.Principal{}, tenant.Scope{}, false
	}
	return p, scope, true
}
