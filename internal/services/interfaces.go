package services

import (
	"context"

	"github.com/gizaedu/exam-service/internal/examsession"
	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/session"
)

// ===== RESPONSE DTOs =====

// ResultSummary joins a result with the names an admin or student needs to read it
type ResultSummary struct {
	*models.ExamResult
	ExamTitle    string  `json:"examTitle"`
	StudentName  string  `json:"studentName,omitempty"`
	StudentEmail string  `json:"studentEmail,omitempty"`
	Percentage   float64 `json:"percentage"`
}

// AttemptView is the state of an attempt plus whether it was resumed
type AttemptView struct {
	examsession.Snapshot
	Resumed bool `json:"resumed"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	// BypassLogin signs in a privileged account without a password. It only
	// succeeds when the bypass is enabled for the running environment.
	BypassLogin(ctx context.Context, email string) (*models.LoginResponse, error)
	Register(ctx context.Context, req *models.RegisterRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, token string) error

	// Restore revalidates the session behind token against the account store
	Restore(ctx context.Context, token string) (*session.Context, error)
	UpdatePreferences(ctx context.Context, token, userID string, req *models.PreferencesRequest) (*models.UserProfile, error)
}

type CurationService interface {
	// Folders
	ListFolders(ctx context.Context) ([]*models.Folder, error)
	CreateFolder(ctx context.Context, req *models.FolderCreateRequest) (*models.Folder, error)
	UpdateFolder(ctx context.Context, id string, req *models.FolderUpdateRequest) (*models.Folder, error)
	DeleteFolder(ctx context.Context, id, actorID string) error

	// Exams; answer keys are only returned when withAnswerKeys is set
	ListExams(ctx context.Context, withAnswerKeys bool) ([]*models.Exam, error)
	GetExam(ctx context.Context, id string, withAnswerKeys bool) (*models.Exam, error)
	CreateExam(ctx context.Context, req *models.ExamCreateRequest) (*models.Exam, error)
	UpdateExam(ctx context.Context, id string, req *models.ExamUpdateRequest) (*models.Exam, error)
	DeleteExam(ctx context.Context, id, actorID string) error

	// Questions of a stored exam
	AddQuestion(ctx context.Context, examID string, input *models.QuestionInput) (*models.Exam, error)
	UpdateQuestion(ctx context.Context, examID, questionID string, patch *models.QuestionPatch) (*models.Exam, error)
	RemoveQuestion(ctx context.Context, examID, questionID string) (*models.Exam, error)
}

type AttemptService interface {
	Start(ctx context.Context, studentID, examID string) (*AttemptView, error)
	Get(ctx context.Context, attemptID, studentID string) (*AttemptView, error)
	Answer(ctx context.Context, attemptID, studentID string, req *models.AnswerRequest) (*AttemptView, error)
	Next(ctx context.Context, attemptID, studentID string) (*AttemptView, error)
	Previous(ctx context.Context, attemptID, studentID string) (*AttemptView, error)
	Submit(ctx context.Context, attemptID, studentID string) (*models.ExamResult, error)
	Cancel(ctx context.Context, attemptID, studentID string) error

	// ActiveSessions counts attempts still in progress
	ActiveSessions() int
	// Close stops every countdown
	Close()
}

type ResultService interface {
	StudentResults(ctx context.Context, studentID string) ([]*ResultSummary, error)
	StudentStats(ctx context.Context, studentID string) (*models.StudentStats, error)
	ListResults(ctx context.Context) ([]*ResultSummary, error)
}

type ReportService interface {
	// ExportResults renders every result as an XLSX workbook
	ExportResults(ctx context.Context) ([]byte, error)
}

type UserService interface {
	ListUsers(ctx context.Context) ([]*models.UserProfile, error)
	ToggleBan(ctx context.Context, actor *models.User, userID string) (*models.UserProfile, error)
	ToggleRole(ctx context.Context, actor *models.User, userID string) (*models.UserProfile, error)

	// SyncPrivilegedAccounts promotes privileged accounts to ADMIN and, when
	// the bypass is enabled, creates the missing local ones
	SyncPrivilegedAccounts(ctx context.Context) (int, error)
	IsPrivileged(email string) bool
}

type AnnouncementService interface {
	List(ctx context.Context) ([]*models.Announcement, error)
	Create(ctx context.Context, req *models.AnnouncementCreateRequest) (*models.Announcement, error)
	Delete(ctx context.Context, id string) error
}

type BackupService interface {
	Export(ctx context.Context) (*models.BackupDocument, error)
	// Import replaces users, exams, folders and (when present) announcements
	Import(ctx context.Context, actorID string, doc *models.BackupDocument, confirm bool) error
}

type DashboardService interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	Curation() CurationService
	Attempt() AttemptService
	Result() ResultService
	Report() ReportService
	User() UserService
	Announcement() AnnouncementService
	Backup() BackupService
	Dashboard() DashboardService

	// Lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
