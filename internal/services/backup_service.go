package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gizaedu/exam-service/internal/events"
	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/repositories"
	"github.com/gizaedu/exam-service/internal/validator"
)

type backupService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewBackupService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) BackupService {
	return &backupService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *backupService) Export(ctx context.Context) (*models.BackupDocument, error) {
	users, err := s.repo.User().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	exams, err := s.repo.Exam().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export exams: %w", err)
	}
	folders, err := s.repo.Folder().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export folders: %w", err)
	}
	announcements, err := s.repo.Announcement().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export announcements: %w", err)
	}

	doc := &models.BackupDocument{
		Users:         make([]models.User, 0, len(users)),
		Exams:         make([]models.Exam, 0, len(exams)),
		Folders:       make([]models.Folder, 0, len(folders)),
		Announcements: make([]models.Announcement, 0, len(announcements)),
		Timestamp:     time.Now().UTC(),
		Version:       models.BackupVersion,
	}
	for _, u := range users {
		doc.Users = append(doc.Users, *u)
	}
	for _, e := range exams {
		doc.Exams = append(doc.Exams, *e)
	}
	for _, f := range folders {
		doc.Folders = append(doc.Folders, *f)
	}
	for _, a := range announcements {
		doc.Announcements = append(doc.Announcements, *a)
	}

	s.logger.InfoContext(ctx, "Backup exported",
		"users", len(doc.Users), "exams", len(doc.Exams), "folders", len(doc.Folders))
	return doc, nil
}

// Import replaces the stored collections with the document. Results are left
// untouched. Nothing is written unless confirm is set and the document is valid.
func (s *backupService) Import(ctx context.Context, actorID string, doc *models.BackupDocument, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}
	if doc == nil {
		return ValidationErrors{{Field: "document", Message: "is required", Rule: "required"}}
	}
	if errs := s.validator.GetBusinessValidator().ValidateBackup(doc); len(errs) > 0 {
		return errs
	}

	users := make([]*models.User, len(doc.Users))
	for i := range doc.Users {
		users[i] = &doc.Users[i]
	}
	exams := make([]*models.Exam, len(doc.Exams))
	for i := range doc.Exams {
		exams[i] = &doc.Exams[i]
	}
	folders := make([]*models.Folder, len(doc.Folders))
	for i := range doc.Folders {
		folders[i] = &doc.Folders[i]
	}

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.User().Save(ctx, users); err != nil {
			return fmt.Errorf("failed to import users: %w", err)
		}
		if err := tx.Exam().Save(ctx, exams); err != nil {
			return fmt.Errorf("failed to import exams: %w", err)
		}
		if err := tx.Folder().Save(ctx, folders); err != nil {
			return fmt.Errorf("failed to import folders: %w", err)
		}
		if doc.Announcements != nil {
			announcements := make([]*models.Announcement, len(doc.Announcements))
			for i := range doc.Announcements {
				announcements[i] = &doc.Announcements[i]
			}
			if err := tx.Announcement().Save(ctx, announcements); err != nil {
				return fmt.Errorf("failed to import announcements: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.WarnContext(ctx, "Backup imported",
		"actor_id", actorID, "users", len(users), "exams", len(exams), "folders", len(folders))
	publishEvent(ctx, s.publisher, s.logger, events.BackupImported, events.BackupImportedData{
		ActorID:       actorID,
		Users:         len(users),
		Exams:         len(exams),
		Folders:       len(folders),
		Announcements: len(doc.Announcements),
	})
	return nil
}
