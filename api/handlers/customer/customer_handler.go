package customer

import (
	"net/http"
	"strconv"

	response "helpdesk/api/handlers/common"
	"helpdesk/internal/helpdesk"
	tenantSvc "helpdesk/internal/tenant"

	"github.com/gin-gonic/gin"
)

// CustomerHandler exposes customer directory endpoints. Customer-role
// principals cannot manage the directory.
type CustomerHandler struct {
	customers helpdesk.CustomerService
}

func NewCustomerHandler(customers helpdesk.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

type customerRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *CustomerHandler) Create(c *gin.Context) {
	p, scope, ok := response.RequestIdentity(c)
	if !ok {
		return
	}
	if p.Role == tenantSvc.RoleCustomer {
		response.AbortWithError(c, tenantSvc.ErrForbidden)
		return
	}
	var body customerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Message: "invalid JSON body"})
		return
	}

	cust, err := h.customers.Create(c.Request.Context(), scope, helpdesk.CustomerParams{
		Email: body.Email,
		Name:  body.Name,
	})
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.APIResponse{Success: true, Data: cust})
}

func (h *CustomerHandler) Get(c *gin.Context) {
	p, scope, ok := response.RequestIdentity(c)
	if !ok {
		return
	}
	if p.Role == tenantSvc.RoleCustomer {
		response.AbortWithError(c, tenantSvc.ErrForbidden)
		return
	}

	cust, err := h.customers.Get(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Data: cust})
}

func (h *CustomerHandler) List(c *gin.Context) {
	p, scope, ok := response.RequestIdentity(c)
	if !ok {
		return
	}
	if p.Role == tenantSvc.RoleCustomer {
		response.AbortWithError(c, tenantSvc.ErrForbidden)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	customers, total, err := h.customers.List(c.Request.Context(), scope, limit, offset)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Data: response.ListResponse{
		Items:      customers,
		Pagination: response.NewPagination(limit, offset, total),
	}})
}

func (h *CustomerHandler) Update(c *gin.Context) {
	p, scope, ok := response.RequestIdentity(c)
	if !ok {
		return
	}
	if p.Role == tenantSvc.RoleCustomer {
		response.AbortWithError(c, tenantSvc.ErrForbidden)
		return
	}
	var body customerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Message: "invalid JSON body"})
		return
	}

	cust, err := h.customers.Update(c.Request.Context(), scope, c.Param("id"), helpdesk.CustomerParams{
		Email: body.Email,
		Name:  body.Name,
	})
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Data: cust})
}

func (h *CustomerHandler) Delete(c *gin.Context) {
	p, scope, ok := response.RequestIdentity(c)
	if !ok {
		return
	}
	if p.Role == tenantSvc.RoleCustomer {
		response.AbortWithError(c, tenantSvc.ErrForbidden)
		return
	}

	if err := h.customers.Delete(c.Request.Context(), scope, c.Param("id")); err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Message: "customer deleted"})
}
