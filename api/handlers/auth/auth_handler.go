package auth

import (
	"errors"
	"net/http"

	response "helpdesk/api/handlers/common"
	authSvc "helpdesk/internal/auth"

	"github.com/gin-gonic/gin"
)

// AuthHandler exposes credential endpoints. These routes are mounted outside
// the authenticated group.
type AuthHandler struct {
	auth *authSvc.Service
}

func NewAuthHandler(auth *authSvc.Service) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string        `json:"token"`
	User  *authSvc.User `json:"user"`
}

// Login verifies credentials and issues a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Message: "invalid JSON body"})
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, authSvc.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{Message: "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Message: "internal error"})
		return
	}

	c.JSON(http.StatusOK, response.APIResponse{Success: true, Data: loginResponse{Token: token, User: user}})
}
