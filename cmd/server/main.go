package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"helpdesk/api"
	"helpdesk/internal/audit"
	"helpdesk/internal/auth"
	"helpdesk/internal/config"
	"helpdesk/internal/helpdesk"
	"helpdesk/internal/infra"
	"helpdesk/internal/logger"
	"helpdesk/internal/tenant"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	cfg, err := config.Load(env, "")
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath); err != nil {
		fmt.Printf("failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting helpdesk server", zap.String("env", env), zap.String("mode", cfg.Server.Mode))

	db, err := infra.InitDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to init database", zap.Error(err))
	}
	defer infra.CloseDatabase()

	if cfg.Database.AutoMigrate {
		if err := infra.AutoMigrate(db,
			&tenant.Tenant{},
			&audit.Entry{},
			&auth.User{},
			&helpdesk.Customer{},
			&helpdesk.Ticket{},
			&helpdesk.Message{},
			&helpdesk.Team{},
		); err != nil {
			logger.Fatal("database migration failed", zap.Error(err))
		}
	}

	rdb, err := infra.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Fatal("failed to init redis", zap.Error(err))
	}
	defer infra.CloseRedis()

	sqlDB, err := infra.SQLDB(db)
	if err != nil {
		logger.Fatal("failed to obtain sql handle", zap.Error(err))
	}

	tenantRepo := tenant.NewRepository(sqlDB)
	if err := tenant.EnsurePlatformTenant(context.Background(), tenantRepo, cfg.Tenant.PlatformTenantID); err != nil {
		logger.Fatal("failed to ensure platform tenant", zap.Error(err))
	}

	gin.SetMode(cfg.Server.Mode)
	router, container, _ := api.SetupRouter(sqlDB, rdb, cfg)

	purgeCtx, stopPurge := context.WithCancel(context.Background())
	go runRetentionPurge(purgeCtx, tenantRepo, container.Directory, cfg.Tenant.RetentionDays)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	stopPurge()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

// runRetentionPurge hard-deletes soft-deleted tenants once their retention
// window elapses, then drops their cached directory entries so the resolver
// stops answering for them.
func runRetentionPurge(ctx context.Context, tenants tenant.Repository, directory *tenant.CachedDirectory, retentionDays int) {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	retention := time.Duration(retentionDays) * 24 * time.Hour

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ids, err := tenants.PurgeExpired(ctx, retention)
			if err != nil {
				logger.Error("tenant retention purge failed", zap.Error(err))
				continue
			}
			for _, id := range ids {
				directory.Invalidate(ctx, id)
			}
			if len(ids) > 0 {
				logger.Info("purged expired tenants", zap.Int("count", len(ids)))
			}
		}
	}
}
