package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/repositories"
)

type dashboardService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, logger *slog.Logger) DashboardService {
	return &dashboardService{
		repo:   repo,
		logger: logger,
	}
}

func (s *dashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	users, err := s.repo.User().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	exams, err := s.repo.Exam().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count exams: %w", err)
	}
	folders, err := s.repo.Folder().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count folders: %w", err)
	}
	results, err := s.repo.Result().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count results: %w", err)
	}

	stats := &models.DashboardStats{
		TotalExams:   len(exams),
		TotalFolders: len(folders),
		TotalResults: len(results),
	}
	for _, u := range users {
		if u.IsAdmin() {
			stats.TotalAdmins++
		} else {
			stats.TotalStudents++
		}
		if u.IsBanned {
			stats.BannedUsers++
		}
	}
	return stats, nil
}
