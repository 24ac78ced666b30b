package examsession

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gizaedu/exam-service/internal/models"
)

const defaultRetention = 15 * time.Minute

type ManagerConfig struct {
	Persister ResultPersister
	Logger    *slog.Logger
	OnFinish  FinishFunc

	// Retention keeps finished and cancelled sessions readable for a while
	Retention time.Duration

	NewTicker TickerFactory
	Now       func() time.Time
	NewID     func() string
}

// Manager owns every running exam session of the process
type Manager struct {
	cfg ManagerConfig

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Retention <= 0 {
		cfg.Retention = defaultRetention
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = NewTimeTicker
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}

	return &Manager{
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

// Start opens an attempt, or resumes the student's running attempt at the
// same exam. The boolean reports whether an existing session was resumed.
func (m *Manager) Start(exam *models.Exam, studentID string) (*Session, bool, error) {
	if exam == nil || !exam.IsPublishable() {
		return nil, false, ErrExamNotPublishable
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, false, ErrManagerClosed
	}
	m.pruneLocked()

	for _, s := range m.sessions {
		if s.isActiveFor(studentID, exam.ID) {
			return s, true, nil
		}
	}

	s := newSession(m.cfg.NewID(), studentID, exam, m.cfg)
	m.sessions[s.id] = s

	m.cfg.Logger.Info("Exam session started",
		"attempt_id", s.id,
		"exam_id", exam.ID,
		"student_id", studentID,
		"duration_seconds", exam.DurationSeconds())
	return s, false, nil
}

// Get returns the session if it belongs to studentID
func (m *Manager) Get(attemptID, studentID string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[attemptID]
	m.mu.Unlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.studentID != studentID {
		return nil, ErrNotOwner
	}
	return s, nil
}

// Active counts sessions still in progress
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, s := range m.sessions {
		if s.Status() == StatusInProgress {
			n++
		}
	}
	return n
}

// Prune drops sessions that ended longer ago than the retention period
func (m *Manager) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pruneLocked()
}

func (m *Manager) pruneLocked() int {
	cutoff := m.cfg.Now().Add(-m.cfg.Retention)
	removed := 0
	for id, s := range m.sessions {
		if s.endedBefore(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Close stops every countdown and waits for the goroutines to exit. Sessions
// still in progress are abandoned without a result.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.stopTimer()
	}
	for _, s := range sessions {
		<-s.Done()
	}
	m.cfg.Logger.Info("Exam session manager closed", "sessions", len(sessions))
}
