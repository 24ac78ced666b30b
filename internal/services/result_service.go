package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/repositories"
)

type resultService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewResultService(repo repositories.Repository, logger *slog.Logger) ResultService {
	return &resultService{
		repo:   repo,
		logger: logger,
	}
}

func (s *resultService) StudentResults(ctx context.Context, studentID string) ([]*ResultSummary, error) {
	results, err := s.repo.Result().GetByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student results: %w", err)
	}
	titles, err := s.examTitles(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*ResultSummary, 0, len(results))
	for _, r := range results {
		out = append(out, summarize(r, titles, nil))
	}
	return out, nil
}

// StudentStats reports completed exams with the average and best percentage,
// rounded to one decimal
func (s *resultService) StudentStats(ctx context.Context, studentID string) (*models.StudentStats, error) {
	results, err := s.repo.Result().GetByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student results: %w", err)
	}

	stats := &models.StudentStats{ExamsCompleted: len(results)}
	if len(results) == 0 {
		return stats, nil
	}

	var sum, top float64
	for _, r := range results {
		pct := r.Percentage()
		sum += pct
		if pct > top {
			top = pct
		}
	}
	stats.AverageScore = roundTo(sum/float64(len(results)), 1)
	stats.TopScore = roundTo(top, 1)
	return stats, nil
}

func (s *resultService) ListResults(ctx context.Context) ([]*ResultSummary, error) {
	results, err := s.repo.Result().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	titles, err := s.examTitles(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.repo.User().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	byID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make([]*ResultSummary, 0, len(results))
	for _, r := range results {
		out = append(out, summarize(r, titles, byID))
	}
	return out, nil
}

func (s *resultService) examTitles(ctx context.Context) (map[string]string, error) {
	exams, err := s.repo.Exam().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}
	titles := make(map[string]string, len(exams))
	for _, e := range exams {
		titles[e.ID] = e.Title
	}
	return titles, nil
}

func summarize(r *models.ExamResult, titles map[string]string, users map[string]*models.User) *ResultSummary {
	summary := &ResultSummary{
		ExamResult: r,
		ExamTitle:  titles[r.ExamID],
		Percentage: roundTo(r.Percentage(), 1),
	}
	if u, ok := users[r.StudentID]; ok {
		summary.StudentName = u.FullName()
		summary.StudentEmail = u.Email
	}
	return summary
}
