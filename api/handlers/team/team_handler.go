package team

import (
	"net/http"

	response "helpdesk/api/handlers/common"
	"helpdesk/internal/helpdesk"
	tenantSvc "helpdesk/internal/tenant"

	"github.com/gin-gonic/gin"
)

// TeamHandler exposes team endpoints. Team management is an agent-and-above
// concern inside the effective tenant.
type TeamHandler struct {
	teams helpdesk.TeamService
}

func NewTeamHandler(teams helpdesk.TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

type createTeamRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *TeamHandler) Create(c *gin.Context) {
	p, scope, ok := response.RequestIdentity(c)
	if !ok {
		return
	}
	if p.Role == tenantSvc.RoleCustomer {
		response.AbortWithError(c, tenantSvc.ErrForbidden)
		return
	}
	var body createTeamRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Message: "invalid JSON body"})
		return
	}

	t, err := h.teams.Create(c.Request.Context(), scope, body.Name)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.APIResponse{Success: true, Data: t})
}

func (h *TeamHandler) List(c *gin.Context) {
	p, scope, ok := response.RequestIdentity(c)
	if !ok {
		return
	}
	if p.Role == tenantSvc.RoleCustomer {
		response.AbortWithError(c, tenantSvc.ErrForbidden)
		return
	}

	teams, err := h.teams.List(c.Request.Context(), scope)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Data: teams})
}

func (h *TeamHandler) Delete(c *gin.Context) {
	p, scope, ok := response.RequestIdentity(c)
	if !ok {
		return
	}
	if p.Role == tenantSvc.RoleCustomer {
		response.AbortWithError(c, tenantSvc.ErrForbidden)
		return
	}

	if err := h.teams.Delete(c.Request.Context(), scope, c.Param("id")); err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Message: "team deleted"})
}
