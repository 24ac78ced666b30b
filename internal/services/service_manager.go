package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gizaedu/exam-service/internal/events"
	"github.com/gizaedu/exam-service/internal/metrics"
	"github.com/gizaedu/exam-service/internal/repositories"
	"github.com/gizaedu/exam-service/internal/session"
	"github.com/gizaedu/exam-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	Auth    AuthConfig
	Attempt AttemptConfig

	// Global settings
	DefaultTimeout time.Duration
}

// Dependencies are the collaborators shared by every service
type Dependencies struct {
	RepoManager repositories.RepositoryManager
	Credentials repositories.CredentialService
	Sessions    *session.Store
	Publisher   events.EventPublisher
	Metrics     *metrics.Metrics
	Validator   *validator.Validator
	Logger      *slog.Logger
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps   Dependencies
	repo   repositories.Repository
	config ServiceManagerConfig

	// Service instances
	authService         AuthService
	curationService     CurationService
	attemptService      AttemptService
	resultService       ResultService
	reportService       ReportService
	userService         UserService
	announcementService AnnouncementService
	backupService       BackupService
	dashboardService    DashboardService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps Dependencies, config ServiceManagerConfig) ServiceManager {
	if config.DefaultTimeout <= 0 {
		config.DefaultTimeout = 30 * time.Second
	}
	return &serviceManager{
		deps:   deps,
		config: config,
	}
}

// Initialize sets up all services and their dependencies. The repository
// manager must already be initialized.
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.deps.Logger.Info("Initializing service manager")

	if sm.deps.RepoManager == nil || sm.deps.RepoManager.GetRepository() == nil {
		return fmt.Errorf("failed to initialize services: repository not initialized")
	}
	if sm.deps.Sessions == nil {
		return fmt.Errorf("failed to initialize services: session store is required")
	}
	sm.repo = sm.deps.RepoManager.GetRepository()

	sm.initializeServices()

	if err := sm.deps.RepoManager.HealthCheck(ctx); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	sm.initialized = true
	sm.deps.Logger.Info("Service manager initialized successfully", "backend", sm.repo.Backend())

	return nil
}

func (sm *serviceManager) initializeServices() {
	d := sm.deps

	sm.authService = NewAuthService(sm.repo, d.Credentials, d.Sessions, d.Logger, d.Validator, d.Metrics, sm.config.Auth)
	sm.curationService = NewCurationService(sm.repo, d.Logger, d.Validator, d.Publisher)
	sm.attemptService = NewAttemptService(sm.repo, d.Logger, d.Validator, d.Publisher, d.Metrics, sm.config.Attempt)
	sm.resultService = NewResultService(sm.repo, d.Logger)
	sm.reportService = NewReportService(sm.resultService, d.Logger)
	sm.userService = NewUserService(sm.repo, d.Logger, d.Publisher, sm.config.Auth)
	sm.announcementService = NewAnnouncementService(sm.repo, d.Logger, d.Validator)
	sm.backupService = NewBackupService(sm.repo, d.Logger, d.Validator, d.Publisher)
	sm.dashboardService = NewDashboardService(sm.repo, d.Logger)
}

// Service getters
func (sm *serviceManager) Auth() AuthService {
	sm.mustBeInitialized()
	return sm.authService
}

func (sm *serviceManager) Curation() CurationService {
	sm.mustBeInitialized()
	return sm.curationService
}

func (sm *serviceManager) Attempt() AttemptService {
	sm.mustBeInitialized()
	return sm.attemptService
}

func (sm *serviceManager) Result() ResultService {
	sm.mustBeInitialized()
	return sm.resultService
}

func (sm *serviceManager) Report() ReportService {
	sm.mustBeInitialized()
	return sm.reportService
}

func (sm *serviceManager) User() UserService {
	sm.mustBeInitialized()
	return sm.userService
}

func (sm *serviceManager) Announcement() AnnouncementService {
	sm.mustBeInitialized()
	return sm.announcementService
}

func (sm *serviceManager) Backup() BackupService {
	sm.mustBeInitialized()
	return sm.backupService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mustBeInitialized()
	return sm.dashboardService
}

func (sm *serviceManager) mustBeInitialized() {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	ctx, cancel := context.WithTimeout(ctx, sm.config.DefaultTimeout)
	defer cancel()

	if err := sm.deps.RepoManager.HealthCheck(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

// Shutdown stops running exam countdowns and closes the repository
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.deps.Logger.Info("Shutting down service manager")

	if sm.attemptService != nil {
		sm.attemptService.Close()
	}

	if err := sm.deps.RepoManager.Shutdown(ctx); err != nil {
		sm.deps.Logger.Error("Failed to shutdown repository manager", "error", err)
	}

	sm.shutdown = true
	sm.deps.Logger.Info("Service manager shut down completed")

	return nil
}
