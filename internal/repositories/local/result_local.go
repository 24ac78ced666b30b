package local

import (
	"context"

	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/repositories"
)

type ResultLocal struct {
	results *collection[models.ExamResult]
}

func NewResultLocal(results *collection[models.ExamResult]) repositories.ResultRepository {
	return &ResultLocal{results: results}
}

func (r *ResultLocal) GetAll(ctx context.Context) ([]*models.ExamResult, error) {
	return r.results.load(ctx)
}

func (r *ResultLocal) GetByStudent(ctx context.Context, studentID string) ([]*models.ExamResult, error) {
	all, err := r.results.load(ctx)
	if err != nil {
		return nil, err
	}
	mine := make([]*models.ExamResult, 0)
	for _, res := range all {
		if res.StudentID == studentID {
			mine = append(mine, res)
		}
	}
	return mine, nil
}

func (r *ResultLocal) Add(ctx context.Context, result *models.ExamResult) error {
	return r.results.mutate(ctx, func(all []*models.ExamResult) ([]*models.ExamResult, error) {
		if indexOf(all, func(x *models.ExamResult) bool { return x.ID == result.ID }) >= 0 {
			return nil, repositories.ErrDuplicateKey
		}
		return append(all, result), nil
	})
}
