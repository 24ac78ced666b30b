package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gizaedu/exam-service/internal/events"
	"github.com/gizaedu/exam-service/internal/examsession"
	"github.com/gizaedu/exam-service/internal/metrics"
	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/repositories"
	"github.com/gizaedu/exam-service/internal/validator"
)

// AttemptConfig tunes the exam session manager
type AttemptConfig struct {
	Retention time.Duration
	NewTicker examsession.TickerFactory
}

type attemptService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	metrics   *metrics.Metrics
	manager   *examsession.Manager
}

func NewAttemptService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	publisher events.EventPublisher,
	m *metrics.Metrics,
	config AttemptConfig,
) AttemptService {
	s := &attemptService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		metrics:   m,
	}
	s.manager = examsession.NewManager(examsession.ManagerConfig{
		Persister: repo.Result(),
		Logger:    logger,
		OnFinish:  s.onFinish,
		Retention: config.Retention,
		NewTicker: config.NewTicker,
	})
	return s
}

// onFinish runs once per persisted result, on the ticker goroutine for timeouts
func (s *attemptService) onFinish(sess *examsession.Session, trigger examsession.Trigger, result *models.ExamResult) {
	if s.metrics != nil {
		s.metrics.ObserveResult(string(trigger))
	}
	publishEvent(context.Background(), s.publisher, s.logger, events.ResultSubmitted, events.ResultSubmittedData{
		ResultID:    result.ID,
		ExamID:      result.ExamID,
		StudentID:   result.StudentID,
		Score:       result.Score,
		TotalPoints: result.TotalPoints,
		Percentage:  roundTo(result.Percentage(), 1),
		Trigger:     string(trigger),
	})
}

func (s *attemptService) Start(ctx context.Context, studentID, examID string) (*AttemptView, error) {
	exam, err := s.repo.Exam().GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam: %w", err)
	}
	if exam == nil {
		return nil, ErrExamNotFound
	}

	sess, resumed, err := s.manager.Start(exam, studentID)
	if err != nil {
		return nil, mapSessionError(err)
	}
	return &AttemptView{Snapshot: sess.Snapshot(), Resumed: resumed}, nil
}

func (s *attemptService) Get(ctx context.Context, attemptID, studentID string) (*AttemptView, error) {
	sess, err := s.session(attemptID, studentID)
	if err != nil {
		return nil, err
	}
	return &AttemptView{Snapshot: sess.Snapshot()}, nil
}

func (s *attemptService) Answer(ctx context.Context, attemptID, studentID string, req *models.AnswerRequest) (*AttemptView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.apply(attemptID, studentID, func(sess *examsession.Session) error {
		return sess.Answer(req.QuestionID, req.Value)
	})
}

func (s *attemptService) Next(ctx context.Context, attemptID, studentID string) (*AttemptView, error) {
	return s.apply(attemptID, studentID, (*examsession.Session).Next)
}

func (s *attemptService) Previous(ctx context.Context, attemptID, studentID string) (*AttemptView, error) {
	return s.apply(attemptID, studentID, (*examsession.Session).Previous)
}

func (s *attemptService) Submit(ctx context.Context, attemptID, studentID string) (*models.ExamResult, error) {
	sess, err := s.session(attemptID, studentID)
	if err != nil {
		return nil, err
	}
	result, err := sess.Submit(ctx)
	if err != nil {
		return nil, mapSessionError(err)
	}
	return result, nil
}

func (s *attemptService) Cancel(ctx context.Context, attemptID, studentID string) error {
	sess, err := s.session(attemptID, studentID)
	if err != nil {
		return err
	}
	return mapSessionError(sess.Cancel())
}

func (s *attemptService) ActiveSessions() int {
	return s.manager.Active()
}

func (s *attemptService) Close() {
	s.manager.Close()
}

func (s *attemptService) session(attemptID, studentID string) (*examsession.Session, error) {
	sess, err := s.manager.Get(attemptID, studentID)
	if err != nil {
		return nil, mapSessionError(err)
	}
	return sess, nil
}

func (s *attemptService) apply(attemptID, studentID string, fn func(*examsession.Session) error) (*AttemptView, error) {
	sess, err := s.session(attemptID, studentID)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, mapSessionError(err)
	}
	return &AttemptView{Snapshot: sess.Snapshot()}, nil
}

func mapSessionError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, examsession.ErrSessionNotFound):
		return ErrAttemptNotFound
	case errors.Is(err, examsession.ErrNotOwner):
		return ErrAttemptAccessDenied
	case errors.Is(err, examsession.ErrNotInProgress):
		return ErrAttemptNotActive
	case errors.Is(err, examsession.ErrUnknownQuestion):
		return ErrUnknownQuestion
	case errors.Is(err, examsession.ErrExamNotPublishable):
		return ErrExamNotAvailable
	}
	return err
}
