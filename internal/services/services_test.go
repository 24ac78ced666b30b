package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/gizaedu/exam-service/internal/events"
	"github.com/gizaedu/exam-service/internal/examsession"
	"github.com/gizaedu/exam-service/internal/kvstore"
	"github.com/gizaedu/exam-service/internal/metrics"
	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/repositories"
	"github.com/gizaedu/exam-service/internal/repositories/local"
	"github.com/gizaedu/exam-service/internal/session"
	"github.com/gizaedu/exam-service/internal/validator"
)

const privilegedEmail = "master@gizaedu.test"

// testEnv wires the services against a miniredis-backed local repository
type testEnv struct {
	mr        *miniredis.Miniredis
	repo      *local.LocalRepository
	sessions  *session.Store
	publisher *events.MockEventPublisher
	metrics   *metrics.Metrics
	validator *validator.Validator
	logger    *slog.Logger
	auth      AuthConfig
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := local.NewLocalRepository(local.RepositoryConfig{RedisClient: client, Namespace: "gizaedu"})
	t.Cleanup(func() { repo.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &testEnv{
		mr:        mr,
		repo:      repo,
		sessions:  session.NewStore(kvstore.NewHelper(client, "gizaedu"), time.Hour, nil, logger),
		publisher: events.NewMockEventPublisher(logger),
		metrics:   metrics.New(nil),
		validator: validator.New(),
		logger:    logger,
		auth:      AuthConfig{Privileged: NewPrivilegedSet([]string{privilegedEmail})},
	}
}

func (e *testEnv) authService() AuthService {
	return NewAuthService(e.repo, nil, e.sessions, e.logger, e.validator, e.metrics, e.auth)
}

func (e *testEnv) curationService() CurationService {
	return NewCurationService(e.repo, e.logger, e.validator, e.publisher)
}

func (e *testEnv) userService() UserService {
	return NewUserService(e.repo, e.logger, e.publisher, e.auth)
}

func (e *testEnv) attemptService(t *testing.T, tickers *tickerSource) AttemptService {
	t.Helper()
	svc := NewAttemptService(e.repo, e.logger, e.validator, e.publisher, e.metrics, AttemptConfig{
		Retention: time.Minute,
		NewTicker: tickers.New,
	})
	t.Cleanup(svc.Close)
	return svc
}

func (e *testEnv) addUser(t *testing.T, u *models.User) *models.User {
	t.Helper()
	if u.Role == "" {
		u.Role = models.RoleStudent
	}
	if err := e.repo.User().Add(context.Background(), u); err != nil {
		t.Fatalf("Add(user) error = %v", err)
	}
	return u
}

func (e *testEnv) addExam(t *testing.T, exam *models.Exam) *models.Exam {
	t.Helper()
	if err := e.repo.Exam().AddOne(context.Background(), exam); err != nil {
		t.Fatalf("AddOne(exam) error = %v", err)
	}
	return exam
}

// sampleExam holds one multiple-choice, one true/false and one essay question
func sampleExam(id string) *models.Exam {
	return &models.Exam{
		ID:              id,
		FolderID:        models.RootFolderID,
		Title:           "Physiology Midterm",
		DurationMinutes: 1,
		Questions: []models.Question{
			{ID: "q1", Type: models.MultipleChoice, Prompt: "Pick A", Points: 5, Options: []string{"A", "B"}, CorrectAnswer: "A"},
			{ID: "q2", Type: models.TrueFalse, Prompt: "True?", Points: 2, CorrectAnswer: models.AnswerTrue},
			{ID: "q3", Type: models.Essay, Prompt: "Explain", Points: 10},
		},
		CreatedAt: time.Now().UTC(),
	}
}

// manualTicker only fires when the test sends on ch
type manualTicker struct {
	ch chan time.Time
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()               {}

type tickerSource struct {
	tickers []*manualTicker
}

func (s *tickerSource) New(time.Duration) examsession.Ticker {
	t := &manualTicker{ch: make(chan time.Time)}
	s.tickers = append(s.tickers, t)
	return t
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

var _ repositories.Repository = (*remoteRepository)(nil)

// remoteRepository reports the remote backend while storing locally
type remoteRepository struct {
	*local.LocalRepository
}

func (r *remoteRepository) Backend() repositories.Backend { return repositories.BackendRemote }
