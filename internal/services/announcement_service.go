package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/repositories"
	"github.com/gizaedu/exam-service/internal/validator"
)

type announcementService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAnnouncementService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) AnnouncementService {
	return &announcementService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// List returns announcements newest first
func (s *announcementService) List(ctx context.Context) ([]*models.Announcement, error) {
	list, err := s.repo.Announcement().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (s *announcementService) Create(ctx context.Context, req *models.AnnouncementCreateRequest) (*models.Announcement, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	a := &models.Announcement{
		ID:        newID(AnnouncementIDPrefix, 8),
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Announcement().AddOne(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create announcement: %w", err)
	}
	s.logger.InfoContext(ctx, "Announcement created", "announcement_id", a.ID)
	return a, nil
}

func (s *announcementService) Delete(ctx context.Context, id string) error {
	list, err := s.repo.Announcement().GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load announcements: %w", err)
	}
	found := false
	for _, a := range list {
		if a.ID == id {
			found = true
			break
		}
	}
	if !found {
		return ErrAnnouncementNotFound
	}

	if err := s.repo.Announcement().DeleteOne(ctx, id); err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}
	return nil
}
