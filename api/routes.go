package api

import (
	"net/http"

	"helpdesk/internal/auth"
	"helpdesk/internal/infra"
	"helpdesk/internal/logger"
	"helpdesk/internal/metrics"
	middlewarepkg "helpdesk/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts all routes. Every authenticated group carries the
// same middleware chain: request id, metrics, token verification, then
// tenant-scope resolution. No authenticated handler runs without a resolved
// scope on its context.
func RegisterRoutes(router *gin.Engine, container *AppContainer, handlers *Handlers) {
	router.Use(gin.Recovery(), middlewarepkg.RequestID(), metrics.Middleware())

	router.GET("/healthz", func(c *gin.Context) {
		if err := infra.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/api/auth/login", handlers.Auth.Login)

	api := router.Group("/api")
	api.Use(
		auth.Middleware(container.JWTService),
		middlewarepkg.TenantScope(container.Resolver, container.Auditor, logger.Get()),
	)
	registerAPIRoutes(api, handlers)
}

func registerAPIRoutes(api *gin.RouterGroup, h *Handlers) {
	tenants := api.Group("/tenants")
	{
		tenants.POST("", h.Tenant.Create)
		tenants.GET("", h.Tenant.List)
		tenants.GET("/:id", h.Tenant.Get)
		tenants.PATCH("/:id", h.Tenant.Update)
		tenants.DELETE("/:id", h.Tenant.Delete)
		tenants.GET("/:id/export", h.Tenant.Export)
	}

	customers := api.Group("/customers")
	{
		customers.POST("", h.Customer.Create)
		customers.GET("", h.Customer.List)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", h.Customer.Delete)
	}

	tickets := api.Group("/tickets")
	{
		tickets.POST("", middlewarepkg.BodyGuard("customerId", "subject", "priority", "teamId"), h.Ticket.Create)
		tickets.GET("", h.Ticket.List)
		tickets.GET("/:id", h.Ticket.Get)
		tickets.PUT("/:id", h.Ticket.Update)
		tickets.POST("/:id/messages", middlewarepkg.BodyGuard("body", "internal"), h.Ticket.AddMessage)
		tickets.GET("/:id/messages", h.Ticket.Messages)
	}

	teams := api.Group("/teams")
	{
		teams.POST("", h.Team.Create)
		teams.GET("", h.Team.List)
		teams.DELETE("/:id", h.Team.Delete)
	}

	users := api.Group("/users")
	{
		users.POST("", h.User.Create)
		users.PUT("/:id/role", h.User.ChangeRole)
		users.POST("/:id/reset-password", h.User.ResetPassword)
	}

	audit := api.Group("/audit")
	{
		audit.GET("/logs", h.Audit.QueryLogs)
		audit.POST("/logs/export", h.Audit.ExportLogs)
	}
}
