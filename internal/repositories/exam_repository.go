package repositories

import (
	"context"

	"github.com/gizaedu/exam-service/internal/models"
)

// ExamRepository stores exams together with their embedded questions
type ExamRepository interface {
	GetAll(ctx context.Context) ([]*models.Exam, error)
	GetByID(ctx context.Context, id string) (*models.Exam, error)

	// Save replaces the whole exam collection
	Save(ctx context.Context, exams []*models.Exam) error
	// AddOne inserts the exam or overwrites the one with the same id
	AddOne(ctx context.Context, exam *models.Exam) error
	Update(ctx context.Context, id string, update models.ExamUpdate) (*models.Exam, error)
	DeleteOne(ctx context.Context, id string) error
}

// FolderRepository stores the folder tree
type FolderRepository interface {
	GetAll(ctx context.Context) ([]*models.Folder, error)
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	Save(ctx context.Context, folders []*models.Folder) error
	AddOne(ctx context.Context, folder *models.Folder) error
	Update(ctx context.Context, id string, update models.FolderUpdate) (*models.Folder, error)
	// DeleteOne removes only the folder; children and exams keep their reference
	DeleteOne(ctx context.Context, id string) error
}

// ResultRepository is append-only
type ResultRepository interface {
	GetAll(ctx context.Context) ([]*models.ExamResult, error)
	GetByStudent(ctx context.Context, studentID string) ([]*models.ExamResult, error)
	Add(ctx context.Context, result *models.ExamResult) error
}

type AnnouncementRepository interface {
	GetAll(ctx context.Context) ([]*models.Announcement, error)
	Save(ctx context.Context, announcements []*models.Announcement) error
	AddOne(ctx context.Context, announcement *models.Announcement) error
	DeleteOne(ctx context.Context, id string) error
}
