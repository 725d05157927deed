package user

import (
	"net/http"

	response "helpdesk/api/handlers/common"
	authSvc "helpdesk/internal/auth"
	tenantSvc "helpdesk/internal/tenant"

	"github.com/gin-gonic/gin"
)

// UserHandler exposes user provisioning endpoints.
type UserHandler struct {
	users *authSvc.UserService
}

func NewUserHandler(users *authSvc.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type createUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) Create(c *gin.Context) {
	p, scope, ok := response.RequestIdentity(c)
	if !ok {
		return
	}
	var body createUserRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Message: "invalid JSON body"})
		return
	}

	u, err := h.users.CreateUser(c.Request.Context(), p, scope, authSvc.CreateUserParams{
		Email:    body.Email,
		Name:     body.Name,
		Role:     tenantSvc.Role(body.Role),
		Password: body.Password,
	})
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.APIResponse{Success: true, Data: u})
}

func (h *UserHandler) ChangeRole(c *gin.Context) {
	p, scope, ok := response.RequestIdentity(c)
	if !ok {
		return
	}
	var body changeRoleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Message: "invalid JSON body"})
		return
	}

	u, err := h.users.ChangeRole(c.Request.Context(), p, scope, c.Param("id"), tenantSvc.Role(body.Role))
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Data: u})
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	p, scope, ok := response.RequestIdentity(c)
	if !ok {
		return
	}
	var body resetPasswordRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Message: "invalid JSON body"})
		return
	}

	if err := h.users.ResetPassword(c.Request.Context(), p, scope, c.Param("id"), body.Password); err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Message: "password reset"})
}
