package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/repositories"
)

type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db}
}

func (r *ResultPostgreSQL) GetAll(ctx context.Context) ([]*models.ExamResult, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *ResultPostgreSQL) GetByStudent(ctx context.Context, studentID string) ([]*models.ExamResult, error) {
	return r.find(r.db.WithContext(ctx).Where("student_id = ?", studentID))
}

func (r *ResultPostgreSQL) find(query *gorm.DB) ([]*models.ExamResult, error) {
	var rows []resultRow
	if err := query.Order("submitted_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	results := make([]*models.ExamResult, 0, len(rows))
	for i := range rows {
		results = append(results, rows[i].toModel())
	}
	return results, nil
}

func (r *ResultPostgreSQL) Add(ctx context.Context, result *models.ExamResult) error {
	if err := r.db.WithContext(ctx).Create(resultFromModel(result)).Error; err != nil {
		return fmt.Errorf("failed to create result: %w", translateError(err))
	}
	return nil
}
