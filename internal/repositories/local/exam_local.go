package local

import (
	"context"

	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/repositories"
)

type ExamLocal struct {
	exams *collection[models.Exam]
}

func NewExamLocal(exams *collection[models.Exam]) repositories.ExamRepository {
	return &ExamLocal{exams: exams}
}

func (e *ExamLocal) GetAll(ctx context.Context) ([]*models.Exam, error) {
	return e.exams.load(ctx)
}

func (e *ExamLocal) GetByID(ctx context.Context, id string) (*models.Exam, error) {
	all, err := e.exams.load(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(all, func(x *models.Exam) bool { return x.ID == id }); i >= 0 {
		return all[i], nil
	}
	return nil, nil
}

func (e *ExamLocal) Save(ctx context.Context, exams []*models.Exam) error {
	return e.exams.replace(ctx, exams)
}

func (e *ExamLocal) AddOne(ctx context.Context, exam *models.Exam) error {
	return e.exams.mutate(ctx, func(all []*models.Exam) ([]*models.Exam, error) {
		if i := indexOf(all, func(x *models.Exam) bool { return x.ID == exam.ID }); i >= 0 {
			all[i] = exam
			return all, nil
		}
		return append(all, exam), nil
	})
}

func (e *ExamLocal) Update(ctx context.Context, id string, update models.ExamUpdate) (*models.Exam, error) {
	var updated *models.Exam
	err := e.exams.mutate(ctx, func(all []*models.Exam) ([]*models.Exam, error) {
		i := indexOf(all, func(x *models.Exam) bool { return x.ID == id })
		if i < 0 {
			return nil, nil
		}
		update.Apply(all[i])
		updated = all[i]
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (e *ExamLocal) DeleteOne(ctx context.Context, id string) error {
	return e.exams.mutate(ctx, func(all []*models.Exam) ([]*models.Exam, error) {
		kept := make([]*models.Exam, 0, len(all))
		for _, x := range all {
			if x.ID != id {
				kept = append(kept, x)
			}
		}
		return kept, nil
	})
}
