package api

import (
	"time"

	auditHandlers "helpdesk/api/handlers/audit"
	authHandlers "helpdesk/api/handlers/auth"
	customerHandlers "helpdesk/api/handlers/customer"
	teamHandlers "helpdesk/api/handlers/team"
	tenantHandlers "helpdesk/api/handlers/tenant"
	ticketHandlers "helpdesk/api/handlers/ticket"
	userHandlers "helpdesk/api/handlers/user"
	auditpkg "helpdesk/internal/audit"
	"helpdesk/internal/auth"
	"helpdesk/internal/config"
	"helpdesk/internal/helpdesk"
	"helpdesk/internal/infra"
	"helpdesk/internal/logger"
	tenantSvc "helpdesk/internal/tenant"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Handlers aggregates all HTTP handlers.
type Handlers struct {
	Auth     *authHandlers.AuthHandler
	Tenant   *tenantHandlers.TenantHandler
	Customer *customerHandlers.CustomerHandler
	Ticket   *ticketHandlers.TicketHandler
	Team     *teamHandlers.TeamHandler
	User     *userHandlers.UserHandler
	Audit    *auditHandlers.AuditHandler
}

// AppContainer holds the shared pieces the route layer mounts as middleware.
type AppContainer struct {
	JWTService *auth.JWTService
	Resolver   *tenantSvc.Resolver
	Auditor    tenantSvc.Auditor
	Directory  *tenantSvc.CachedDirectory
}

// SetupRouter wires repositories, services and handlers over the given
// database handle and returns a ready gin engine.
func SetupRouter(db infra.DB, rdb redis.UniversalClient, cfg *config.Config) (*gin.Engine, *AppContainer, *Handlers) {
	ids := tenantSvc.UUIDGenerator{}

	tenantRepo := tenantSvc.NewRepository(db)
	recorder := auditpkg.NewRecorder(db, ids, logger.Get())

	directory := tenantSvc.NewCachedDirectory(
		tenantSvc.RepositoryDirectory{Repo: tenantRepo},
		rdb,
		time.Duration(cfg.Tenant.DirectoryCacheTTL)*time.Second,
	)
	resolver := tenantSvc.NewResolver(directory)

	tenantService := tenantSvc.NewService(tenantRepo, ids, recorder)

	customerRepo := helpdesk.NewCustomerRepository(db)
	ticketRepo := helpdesk.NewTicketRepository(db)
	messageRepo := helpdesk.NewMessageRepository(db)
	teamRepo := helpdesk.NewTeamRepository(db)

	customerService := helpdesk.NewCustomerService(customerRepo, ids)
	ticketService := helpdesk.NewTicketService(ticketRepo, messageRepo, customerRepo, ids)
	teamService := helpdesk.NewTeamService(teamRepo, ids)

	userRepo := auth.NewUserRepository(db)
	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, time.Duration(cfg.Auth.TokenTTL)*time.Second)
	authService := auth.NewService(userRepo, auth.BcryptHasher{}, jwtService)
	userService := auth.NewUserService(userRepo, auth.BcryptHasher{}, ids, recorder)

	handlers := &Handlers{
		Auth:     authHandlers.NewAuthHandler(authService),
		Tenant:   tenantHandlers.NewTenantHandler(tenantService, ticketService),
		Customer: customerHandlers.NewCustomerHandler(customerService),
		Ticket:   ticketHandlers.NewTicketHandler(ticketService),
		Team:     teamHandlers.NewTeamHandler(teamService),
		User:     userHandlers.NewUserHandler(userService),
		Audit:    auditHandlers.NewAuditHandler(recorder),
	}
	container := &AppContainer{
		JWTService: jwtService,
		Resolver:   resolver,
		Auditor:    recorder,
		Directory:  directory,
	}

	router := gin.New()
	RegisterRoutes(router, container, handlers)
	return router, container, handlers
}
