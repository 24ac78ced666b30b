// Package examsession runs timed exam attempts: navigation, answer capture,
// the countdown and the single submission of each attempt.
package examsession

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gizaedu/exam-service/internal/grading"
	"github.com/gizaedu/exam-service/internal/models"
)

const tickInterval = time.Second

var (
	ErrNotInProgress      = errors.New("exam session is not in progress")
	ErrUnknownQuestion    = errors.New("question does not belong to this exam")
	ErrSessionNotFound    = errors.New("exam session not found")
	ErrNotOwner           = errors.New("exam session belongs to another student")
	ErrExamNotPublishable = errors.New("exam has no questions")
	ErrManagerClosed      = errors.New("exam session manager is closed")
)

type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusFinished   Status = "FINISHED"
	StatusCancelled  Status = "CANCELLED"
)

// Trigger records what caused a submission
type Trigger string

const (
	TriggerManual  Trigger = "manual"
	TriggerTimeout Trigger = "timeout"
)

// ResultPersister stores the result of a finished attempt
type ResultPersister interface {
	Add(ctx context.Context, result *models.ExamResult) error
}

// FinishFunc is called once per session after its result was persisted.
// It runs outside the session lock.
type FinishFunc func(s *Session, trigger Trigger, result *models.ExamResult)

// Session is one student's attempt at one exam
type Session struct {
	id        string
	studentID string
	exam      *models.Exam

	mu        sync.Mutex
	status    Status
	index     int
	answers   map[string]string
	remaining int
	result    *models.ExamResult
	startedAt time.Time
	endedAt   time.Time

	persister ResultPersister
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
	onFinish  FinishFunc

	ticker   Ticker
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newSession(id, studentID string, exam *models.Exam, cfg ManagerConfig) *Session {
	s := &Session{
		id:        id,
		studentID: studentID,
		exam:      exam,
		status:    StatusInProgress,
		answers:   make(map[string]string),
		remaining: exam.DurationSeconds(),
		startedAt: cfg.Now(),
		persister: cfg.Persister,
		logger:    cfg.Logger.With("attempt_id", id, "exam_id", exam.ID, "student_id", studentID),
		now:       cfg.Now,
		newID:     cfg.NewID,
		onFinish:  cfg.OnFinish,
		ticker:    cfg.NewTicker(tickInterval),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Session) ID() string        { return s.id }
func (s *Session) StudentID() string { return s.studentID }
func (s *Session) ExamID() string    { return s.exam.ID }

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Done is closed once the countdown goroutine has exited
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) run() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		case <-s.ticker.C():
			if s.tick() {
				return
			}
		}
	}
}

// tick advances the countdown and reports whether the loop should exit
func (s *Session) tick() bool {
	s.mu.Lock()

	select {
	case <-s.stop:
		s.mu.Unlock()
		return true
	default:
	}
	if s.status != StatusInProgress {
		s.mu.Unlock()
		return true
	}

	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining > 0 {
		s.mu.Unlock()
		return false
	}

	// Time is up; a failed persist stays InProgress and is retried next tick
	result, err := s.submitLocked(context.Background())
	s.mu.Unlock()
	if err != nil {
		s.logger.Error("Automatic submission failed", "error", err)
		return false
	}

	s.logger.Info("Exam session submitted on timeout", "score", result.Score, "total_points", result.TotalPoints)
	s.notify(TriggerTimeout, result)
	return true
}

// Answer stores value for the question without moving the cursor
func (s *Session) Answer(questionID, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress {
		return ErrNotInProgress
	}
	if s.exam.QuestionIndex(questionID) < 0 {
		return ErrUnknownQuestion
	}
	s.answers[questionID] = value
	return nil
}

// Next moves to the following question; a no-op on the last one
func (s *Session) Next() error {
	return s.move(1)
}

// Previous moves to the preceding question; a no-op on the first one
func (s *Session) Previous() error {
	return s.move(-1)
}

func (s *Session) move(delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress {
		return ErrNotInProgress
	}
	idx := s.index + delta
	if idx < 0 {
		idx = 0
	}
	if last := len(s.exam.Questions) - 1; idx > last {
		idx = last
	}
	s.index = idx
	return nil
}

// Submit grades and persists the attempt. Once finished it returns the stored
// result without persisting again.
func (s *Session) Submit(ctx context.Context) (*models.ExamResult, error) {
	s.mu.Lock()
	switch s.status {
	case StatusFinished:
		result := s.result
		s.mu.Unlock()
		return result, nil
	case StatusCancelled:
		s.mu.Unlock()
		return nil, ErrNotInProgress
	}

	result, err := s.submitLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.logger.Info("Exam session submitted", "score", result.Score, "total_points", result.TotalPoints)
	s.notify(TriggerManual, result)
	return result, nil
}

// submitLocked must be called with s.mu held and the session InProgress
func (s *Session) submitLocked(ctx context.Context) (*models.ExamResult, error) {
	result := grading.NewResult(s.newID(), s.studentID, s.exam, s.answers, s.now())

	if err := s.persister.Add(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to persist exam result: %w", err)
	}

	s.status = StatusFinished
	s.result = result
	s.endedAt = s.now()
	s.stopTimer()
	return result, nil
}

// Cancel abandons the attempt without recording anything
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress {
		return ErrNotInProgress
	}
	s.status = StatusCancelled
	s.answers = nil
	s.endedAt = s.now()
	s.stopTimer()

	s.logger.Info("Exam session cancelled")
	return nil
}

// stopTimer tears the countdown down; safe to call more than once
func (s *Session) stopTimer() {
	s.stopOnce.Do(func() {
		s.ticker.Stop()
		close(s.stop)
	})
}

func (s *Session) notify(trigger Trigger, result *models.ExamResult) {
	if s.onFinish != nil {
		s.onFinish(s, trigger, result)
	}
}

// endedBefore reports whether the session left InProgress before t
func (s *Session) endedBefore(t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status != StatusInProgress && s.endedAt.Before(t)
}

func (s *Session) isActiveFor(studentID, examID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status == StatusInProgress && s.studentID == studentID && s.exam.ID == examID
}

// Snapshot is the view of a session returned to the student
type Snapshot struct {
	AttemptID        string             `json:"attemptId"`
	ExamID           string             `json:"examId"`
	ExamTitle        string             `json:"examTitle"`
	Status           Status             `json:"status"`
	Index            int                `json:"index"`
	QuestionCount    int                `json:"questionCount"`
	Question         *models.Question   `json:"question,omitempty"`
	IsLastQuestion   bool               `json:"isLastQuestion"`
	Answers          map[string]string  `json:"answers"`
	RemainingSeconds int                `json:"remainingSeconds"`
	StartedAt        time.Time          `json:"startedAt"`
	Result           *models.ExamResult `json:"result,omitempty"`
}

// Snapshot copies the current state with the answer key of the current
// question removed
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		AttemptID:        s.id,
		ExamID:           s.exam.ID,
		ExamTitle:        s.exam.Title,
		Status:           s.status,
		Index:            s.index,
		QuestionCount:    len(s.exam.Questions),
		IsLastQuestion:   s.index == len(s.exam.Questions)-1,
		Answers:          make(map[string]string, len(s.answers)),
		RemainingSeconds: s.remaining,
		StartedAt:        s.startedAt,
		Result:           s.result,
	}
	for k, v := range s.answers {
		snap.Answers[k] = v
	}
	if s.status == StatusInProgress && len(s.exam.Questions) > 0 {
		q := s.exam.Questions[s.index].WithoutAnswerKey()
		snap.Question = &q
	}
	return snap
}
