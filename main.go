package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gizaedu/exam-service/internal/config"
	"github.com/gizaedu/exam-service/internal/events"
	"github.com/gizaedu/exam-service/internal/handlers"
	"github.com/gizaedu/exam-service/internal/kvstore"
	"github.com/gizaedu/exam-service/internal/metrics"
	"github.com/gizaedu/exam-service/internal/repositories"
	"github.com/gizaedu/exam-service/internal/repositories/casdoor"
	"github.com/gizaedu/exam-service/internal/repositories/local"
	"github.com/gizaedu/exam-service/internal/repositories/postgres"
	"github.com/gizaedu/exam-service/internal/services"
	"github.com/gizaedu/exam-service/internal/session"
	"github.com/gizaedu/exam-service/internal/utils"
	"github.com/gizaedu/exam-service/internal/validator"
	"github.com/gizaedu/exam-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Redis backs sessions, credential sessions and the local backend
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	kv := kvstore.NewHelper(redisClient, cfg.StorageNamespace)

	// Initialize repositories
	var (
		db          *gorm.DB
		repoManager repositories.RepositoryManager
		credentials repositories.CredentialService
	)
	if cfg.RemoteEnabled() {
		db, err = pkg.InitDatabase(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		repoManager = postgres.NewRepositoryManager(postgres.RepositoryConfig{
			DB:          db,
			AutoMigrate: cfg.DBAutoMigrate,
		})
		credentials = casdoor.NewCredentialsCasdoor(casdoor.CasdoorConfig{
			Endpoint:         cfg.Casdoor.Endpoint,
			ClientID:         cfg.Casdoor.ClientID,
			ClientSecret:     cfg.Casdoor.ClientSecret,
			Certificate:      cfg.Casdoor.Cert,
			OrganizationName: cfg.Casdoor.Organization,
			ApplicationName:  cfg.Casdoor.Application,
		}, kv, cfg.SessionTTL)
	} else {
		repoManager = local.NewRepositoryManager(local.RepositoryConfig{
			RedisClient: redisClient,
			Namespace:   cfg.StorageNamespace,
		})
	}
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	// Initialize event publisher
	var transport message.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		transport, err = events.NewKafkaPublisher(cfg.KafkaBrokers, slogLogger)
		if err != nil {
			log.Fatalf("Failed to initialize Kafka publisher: %v", err)
		}
	} else {
		transport = events.NewGoChannel(slogLogger)
	}
	publisher := events.NewWatermillPublisher(transport, cfg.EventsTopic, slogLogger)

	// Initialize services
	var serviceManager services.ServiceManager
	appMetrics := metrics.New(func() int {
		return serviceManager.Attempt().ActiveSessions()
	})

	serviceManager = services.NewServiceManager(services.Dependencies{
		RepoManager: repoManager,
		Credentials: credentials,
		Sessions:    session.NewStore(kv, cfg.SessionTTL, credentials, slogLogger),
		Publisher:   publisher,
		Metrics:     appMetrics,
		Validator:   validator.New(),
		Logger:      slogLogger,
	}, services.ServiceManagerConfig{
		Auth: services.AuthConfig{
			Privileged:    services.NewPrivilegedSet(cfg.PrivilegedEmails),
			BypassAllowed: cfg.BypassAllowed(),
		},
		Attempt: services.AttemptConfig{
			Retention: cfg.ExamSessionRetention,
		},
	})
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	if n, err := serviceManager.User().SyncPrivilegedAccounts(context.Background()); err != nil {
		logger.Error("Failed to sync privileged accounts", "error", err)
	} else if n > 0 {
		logger.Info("Privileged accounts synced", "count", n)
	}
	if cfg.BypassAllowed() {
		logger.Warn("Privileged bypass login is enabled")
	}

	// Initialize handlers
	handlerManager := handlers.NewHandlerManager(serviceManager, logger, appMetrics)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger, appMetrics)
	handlerManager.SetupRoutes(router)

	// Create HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment, "remote", cfg.RemoteEnabled())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Stops exam countdowns and closes the repository
	if err := serviceManager.Shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown services: %v", err)
	}

	if err := publisher.Close(); err != nil {
		log.Printf("Failed to close event publisher: %v", err)
	}

	// The local backend closes Redis with the repository
	if cfg.RemoteEnabled() {
		redisClient.Close()
	}

	logger.Info("Server exited")
}
