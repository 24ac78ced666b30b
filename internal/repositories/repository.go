package repositories

import "context"

// Backend names the storage implementation chosen at startup
type Backend string

const (
	BackendLocal  Backend = "local"
	BackendRemote Backend = "remote"
)

// Repository aggregates every collection of one backend
type Repository interface {
	User() UserRepository
	Exam() ExamRepository
	Folder() FolderRepository
	Result() ResultRepository
	Announcement() AnnouncementRepository

	// Backend reports which implementation is serving the collections
	Backend() Backend

	// WithTransaction runs fn against a repository whose writes commit together
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with their connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
