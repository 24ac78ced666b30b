package local

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gizaedu/exam-service/internal/kvstore"
	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/repositories"
)

// Collection keys, prefixed with the storage namespace
const (
	UsersKey         = "users"
	ExamsKey         = "exams"
	FoldersKey       = "folders"
	ResultsKey       = "results"
	AnnouncementsKey = "announcements"
)

// LocalRepository keeps every collection as one JSON document in Redis
type LocalRepository struct {
	kv          *kvstore.Helper
	redisClient *redis.Client
	cols        collections
	batch       *kvstore.Batch

	user         repositories.UserRepository
	exam         repositories.ExamRepository
	folder       repositories.FolderRepository
	result       repositories.ResultRepository
	announcement repositories.AnnouncementRepository
}

type collections struct {
	users         *collection[models.User]
	exams         *collection[models.Exam]
	folders       *collection[models.Folder]
	results       *collection[models.ExamResult]
	announcements *collection[models.Announcement]
}

func (cs collections) inBatch(b *kvstore.Batch) collections {
	return collections{
		users:         cs.users.inBatch(b),
		exams:         cs.exams.inBatch(b),
		folders:       cs.folders.inBatch(b),
		results:       cs.results.inBatch(b),
		announcements: cs.announcements.inBatch(b),
	}
}

// RepositoryConfig holds configuration for the local backend
type RepositoryConfig struct {
	RedisClient *redis.Client
	Namespace   string
}

// NewLocalRepository wires every collection to its key
func NewLocalRepository(config RepositoryConfig) *LocalRepository {
	kv := kvstore.NewHelper(config.RedisClient, config.Namespace)

	return newLocalRepository(kv, config.RedisClient, collections{
		users:         newCollection[models.User](kv, UsersKey),
		exams:         newCollection[models.Exam](kv, ExamsKey),
		folders:       newCollection[models.Folder](kv, FoldersKey),
		results:       newCollection[models.ExamResult](kv, ResultsKey),
		announcements: newCollection[models.Announcement](kv, AnnouncementsKey),
	}, nil)
}

func newLocalRepository(kv *kvstore.Helper, client *redis.Client, cols collections, batch *kvstore.Batch) *LocalRepository {
	return &LocalRepository{
		kv:           kv,
		redisClient:  client,
		cols:         cols,
		batch:        batch,
		user:         NewUserLocal(cols.users),
		exam:         NewExamLocal(cols.exams),
		folder:       NewFolderLocal(cols.folders),
		result:       NewResultLocal(cols.results),
		announcement: NewAnnouncementLocal(cols.announcements),
	}
}

func (r *LocalRepository) User() repositories.UserRepository { return r.user }

func (r *LocalRepository) Exam() repositories.ExamRepository { return r.exam }

func (r *LocalRepository) Folder() repositories.FolderRepository { return r.folder }

func (r *LocalRepository) Result() repositories.ResultRepository { return r.result }

func (r *LocalRepository) Announcement() repositories.AnnouncementRepository { return r.announcement }

func (r *LocalRepository) Backend() repositories.Backend { return repositories.BackendLocal }

// WithTransaction stages the writes of fn and commits them in one MULTI/EXEC.
// Nothing is written when fn fails. Nested calls join the outer batch.
func (r *LocalRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	if r.batch != nil {
		return fn(r)
	}

	batch := r.kv.NewBatch()
	tx := newLocalRepository(r.kv, r.redisClient, r.cols.inBatch(batch), batch)
	if err := fn(tx); err != nil {
		return err
	}
	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *LocalRepository) Ping(ctx context.Context) error {
	if err := r.kv.Ping(ctx); err != nil {
		return fmt.Errorf("local store ping failed: %w", err)
	}
	return nil
}

func (r *LocalRepository) Close() error {
	if r.redisClient == nil {
		return nil
	}
	if err := r.redisClient.Close(); err != nil {
		return fmt.Errorf("failed to close Redis: %w", err)
	}
	return nil
}

// RepositoryManager implements repositories.RepositoryManager for the local backend
type RepositoryManager struct {
	config RepositoryConfig
	repo   *LocalRepository
}

func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{config: config}
}

// Initialize checks the Redis connection and builds the repository
func (rm *RepositoryManager) Initialize() error {
	if rm.config.RedisClient == nil {
		return fmt.Errorf("redis connection is required for the local backend")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("Redis connection failed: %w", err)
	}

	rm.repo = NewLocalRepository(rm.config)
	return nil
}

func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	return rm.repo.Ping(ctx)
}

func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}
	return rm.repo.Close()
}
