package ticket

import (
	"net/http"
	"strconv"

	response "helpdesk/api/handlers/common"
	"helpdesk/internal/helpdesk"

	"github.com/gin-gonic/gin"
)

// TicketHandler exposes ticket and conversation endpoints. The tenant id
// never appears in any request type here; it comes from the resolved scope.
type TicketHandler struct {
	tickets helpdesk.TicketService
}

func NewTicketHandler(tickets helpdesk.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

type createTicketRequest struct {
	CustomerID string `json:"customerId"`
	Subject    string `json:"subject" binding:"required"`
	Priority   string `json:"priority"`
	TeamID     string `json:"teamId"`
}

type updateTicketRequest struct {
	Subject    *string `json:"subject"`
	Status     *string `json:"status"`
	Priority   *string `json:"priority"`
	AssigneeID *string `json:"assigneeId"`
	TeamID     *string `json:"teamId"`
}

type addMessageRequest struct {
	Body     string `json:"body" binding:"required"`
	Internal bool   `json:"internal"`
}

func (h *TicketHandler) Create(c *gin.Context) {
	p, scope, ok := response.RequestIdentity(c)
	if !ok {
		return
	}
	var body createTicketRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Message: "invalid JSON body"})
		return
	}

	t, err := h.tickets.Create(c.Request.Context(), p, scope, helpdesk.TicketParams{
		CustomerID: body.CustomerID,
		Subject:    body.Subject,
		Priority:   body.Priority,
		TeamID:     body.TeamID,
	})
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.APIResponse{Success: true, Data: t})
}

func (h *TicketHandler) Get(c *gin.Context) {
	p, scope, ok := response.RequestIdentity(c)
	if !ok {
		return
	}

	t, err := h.tickets.Get(c.Request.Context(), p, scope, c.Param("id"))
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Data: t})
}

func (h *TicketHandler) List(c *gin.Context) {
	p, scope, ok := response.RequestIdentity(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	f := helpdesk.TicketFilter{
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		CustomerID: c.Query("customerId"),
		AssigneeID: c.Query("assigneeId"),
		Limit:      limit,
		Offset:     offset,
	}

	tickets, total, err := h.tickets.List(c.Request.Context(), p, scope, f)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Data: response.ListResponse{
		Items:      tickets,
		Pagination: response.NewPagination(f.Limit, f.Offset, total),
	}})
}

func (h *TicketHandler) Update(c *gin.Context) {
	p, scope, ok := response.RequestIdentity(c)
	if !ok {
		return
	}
	var body updateTicketRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Message: "invalid JSON body"})
		return
	}

	t, err := h.tickets.Update(c.Request.Context(), p, scope, c.Param("id"), helpdesk.TicketUpdateParams{
		Subject:    body.Subject,
		Status:     body.Status,
		Priority:   body.Priority,
		AssigneeID: body.AssigneeID,
		TeamID:     body.TeamID,
	})
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Data: t})
}

func (h *TicketHandler) AddMessage(c *gin.Context) {
	p, scope, ok := response.RequestIdentity(c)
	if !ok {
		return
	}
	var body addMessageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Message: "invalid JSON body"})
		return
	}

	m, err := h.tickets.AddMessage(c.Request.Context(), p, scope, c.Param("id"), helpdesk.MessageParams{
		Body:     body.Body,
		Internal: body.Internal,
	})
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.APIResponse{Success: true, Data: m})
}

func (h *TicketHandler) Messages(c *gin.Context) {
	p, scope, ok := response.RequestIdentity(c)
	if !ok {
		return
	}

	messages, err := h.tickets.Messages(c.Request.Context(), p, scope, c.Param("id"))
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Data: messages})
}
