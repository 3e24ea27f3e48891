package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/api"
	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/application/dispatcher"
	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/application/service"
	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/config"
	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/infrastructure/closure"
	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/infrastructure/notify"
	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/infrastructure/persistence/repository"
	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/provisioning"
	"github.com/SOMET1010/africa-suite-pulse-sub010/pkg/database"
	"github.com/SOMET1010/africa-suite-pulse-sub010/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

func main() {
	_ = gotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting night-audit service",
		zap.Int("port", cfg.Server.Port),
		zap.Bool("enforce_order", cfg.Audit.EnforceOrder))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	sessionRepo := repository.NewSessionRepository(db.DB, logger)
	checkpointRepo := repository.NewCheckpointRepository(db.DB, logger)

	events := dispatcher.New(logger)
	defer events.Close()

	if cfg.Notifier.Enabled {
		notifier := notify.NewWebhookNotifier(cfg.Notifier.WebhookURL, cfg.Notifier.Timeout, logger)
		notifier.Register(events)
	}

	provisioner := provisioning.NewConfigProvisioner(cfg.Audit.Checklist, logger)
	emitter := closure.NewEmitter(db.DB, cfg.Closure.OutputDir, logger)

	audits := service.NewAuditService(
		sessionRepo,
		checkpointRepo,
		provisioner,
		emitter,
		events,
		logger,
		service.WithOrderEnforcement(cfg.Audit.EnforceOrder),
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	handler := api.NewHandler(audits, logger)
	handler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
}
