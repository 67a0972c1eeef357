package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpapi "propdesk-backend/internal/api/http"
	"propdesk-backend/internal/config"
	"propdesk-backend/internal/events"
	"propdesk-backend/internal/infrastructure"
	"propdesk-backend/internal/logger"
	"propdesk-backend/internal/repository/postgres"
	"propdesk-backend/internal/security"
	"propdesk-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Optional .env for local development; real environments set variables directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load .env file: %v", err)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting PropDesk commission backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Email configuration", "provider", cfg.Email.Provider, "smtp_host", cfg.SMTP.Host)

	ctx := context.Background()

	// Initialize Database
	db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString(), cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// Initialize Email Service
	emailSvc := service.NewEmailService(cfg.SMTP, cfg.Email)

	// Initialize event sinks
	var push service.PushSender
	if cfg.Push.Enabled {
		pushClient, err := infrastructure.NewPushClient(ctx, cfg.Push)
		if err != nil {
			logger.Error("Failed to initialize push client", "error", err)
			log.Fatalf("Failed to initialize push client: %v", err)
		}
		push = pushClient
		logger.Info("Push notifications enabled", "project_id", cfg.Push.ProjectID)
	}

	sinks := []events.Sink{
		events.NewAuditLogSink(store.AuditLogRepository),
		service.NewCommissionNotifier(store.UserRepository, store.NotificationRepository, emailSvc, push),
	}
	if cfg.ServiceBus.Enabled {
		sbSink, err := infrastructure.NewServiceBusSink(cfg.ServiceBus)
		if err != nil {
			logger.Error("Failed to initialize service bus sink", "error", err)
			log.Fatalf("Failed to initialize service bus sink: %v", err)
		}
		defer sbSink.Close()
		sinks = append(sinks, sbSink)
		logger.Info("Service Bus sink enabled", "queue", cfg.ServiceBus.QueueName)
	}
	if cfg.Redis.Enabled {
		redisSink, err := infrastructure.NewRedisSink(cfg.Redis)
		if err != nil {
			logger.Error("Failed to initialize redis sink", "error", err)
			log.Fatalf("Failed to initialize redis sink: %v", err)
		}
		defer redisSink.Close()
		sinks = append(sinks, redisSink)
		logger.Info("Redis sink enabled", "addr", cfg.Redis.Addr, "channel", cfg.Redis.Channel)
	}

	bus := events.NewBus(cfg.Events.BufferSize, time.Duration(cfg.Events.SinkTimeoutSeconds)*time.Second, sinks...)
	bus.Start()

	// Initialize Services
	authSvc := service.NewAuthService(store.UserRepository, tokenManager)
	ruleSvc := service.NewRuleService(store.RuleRepository, store.CommissionRepository, bus)
	ledgerSvc := service.NewLedgerService(store.CommissionRepository, bus)
	recorderSvc := service.NewRecorderService(
		store,
		store.UserRepository,
		store.RuleRepository,
		store.TransactionRepository,
		store.CommissionRepository,
		bus,
	)
	reportSvc := service.NewReportService(store.ReportRepository)
	appSvc := service.NewApplicationService(store, store.ApplicationRepository, emailSvc, bus)
	noteSvc := service.NewNotificationService(store.NotificationRepository)
	auditSvc := service.NewAuditService(store.AuditLogRepository)

	// Initialize HTTP handlers
	paging := httpapi.Paging{
		DefaultPageSize: int32(cfg.Reports.DefaultPageSize),
		MaxPageSize:     int32(cfg.Reports.MaxPageSize),
	}
	router := httpapi.NewRouter(httpapi.Handlers{
		Auth:          httpapi.NewAuthHandler(authSvc),
		Applications:  httpapi.NewApplicationHandler(appSvc),
		Rules:         httpapi.NewRuleHandler(ruleSvc),
		Transactions:  httpapi.NewTransactionHandler(recorderSvc, paging),
		Commissions:   httpapi.NewCommissionHandler(ledgerSvc, paging),
		Reports:       httpapi.NewReportHandler(reportSvc),
		Notifications: httpapi.NewNotificationHandler(noteSvc, paging),
		Audit:         httpapi.NewAuditHandler(auditSvc),
		Authenticator: httpapi.NewAuthenticator(tokenManager),
		Ping:          store.Ping,
	})

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown: stop accepting requests, then drain pending events
	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	bus.Close()
	logger.Info("Server stopped. Goodbye!")
}
