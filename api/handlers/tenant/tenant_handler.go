package tenant

import (
	"net/http"
	"strconv"

	response "helpdesk/api/handlers/common"
	"helpdesk/internal/helpdesk"
	tenantSvc "helpdesk/internal/tenant"

	"github.com/gin-gonic/gin"
)

// TenantHandler exposes tenant lifecycle endpoints. Authorization is decided
// inside the service against the privileged-access policy; the handler only
// translates transport.
type TenantHandler struct {
	tenants tenantSvc.Service
	tickets helpdesk.TicketService
}

func NewTenantHandler(tenants tenantSvc.Service, tickets helpdesk.TicketService) *TenantHandler {
	return &TenantHandler{tenants: tenants, tickets: tickets}
}

type createTenantRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug"`
	Plan string `json:"plan"`
}

type updateTenantRequest struct {
	Name   *string `json:"name"`
	Slug   *string `json:"slug"`
	Status *string `json:"status"`
	Plan   *string `json:"plan"`
}

type exportResponse struct {
	Tenant  *tenantSvc.Tenant  `json:"tenant"`
	Tickets []*helpdesk.Ticket `json:"tickets"`
}

func (h *TenantHandler) Create(c *gin.Context) {
	p, _, ok := response.RequestIdentity(c)
	if !ok {
		return
	}
	var body createTenantRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Message: "invalid JSON body"})
		return
	}

	t, err := h.tenants.Create(c.Request.Context(), p, tenantSvc.CreateParams{
		Name: body.Name,
		Slug: body.Slug,
		Plan: body.Plan,
	})
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.APIResponse{Success: true, Data: t})
}

func (h *TenantHandler) List(c *gin.Context) {
	p, _, ok := response.RequestIdentity(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)

	tenants, total, err := h.tenants.List(c.Request.Context(), p, limit, offset)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Data: response.ListResponse{
		Items:      tenants,
		Pagination: response.NewPagination(limit, offset, total),
	}})
}

func (h *TenantHandler) Get(c *gin.Context) {
	p, scope, ok := response.RequestIdentity(c)
	if !ok {
		return
	}

	t, err := h.tenants.Get(c.Request.Context(), p, scope, c.Param("id"))
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Data: t})
}

func (h *TenantHandler) Update(c *gin.Context) {
	p, _, ok := response.RequestIdentity(c)
	if !ok {
		return
	}
	var body updateTenantRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Message: "invalid JSON body"})
		return
	}

	t, err := h.tenants.Update(c.Request.Context(), p, c.Param("id"), tenantSvc.UpdateParams{
		Name:   body.Name,
		Slug:   body.Slug,
		Status: body.Status,
		Plan:   body.Plan,
	})
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Data: t})
}

func (h *TenantHandler) Delete(c *gin.Context) {
	p, _, ok := response.RequestIdentity(c)
	if !ok {
		return
	}

	if err := h.tenants.Delete(c.Request.Context(), p, c.Param("id")); err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Message: "tenant deleted"})
}

// Export returns a tenant record together with its tickets. It also serves
// soft-deleted tenants during the retention window.
func (h *TenantHandler) Export(c *gin.Context) {
	p, scope, ok := response.RequestIdentity(c)
	if !ok {
		return
	}
	id := c.Param("id")

	t, err := h.tenants.Export(c.Request.Context(), p, id)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	tickets, err := h.tickets.ExportForTenant(c.Request.Context(), scope, id)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Data: exportResponse{Tenant: t, Tickets: tickets}})
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}
