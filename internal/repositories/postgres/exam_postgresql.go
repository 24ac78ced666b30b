package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/repositories"
)

type ExamPostgreSQL struct {
	db *gorm.DB
}

func NewExamPostgreSQL(db *gorm.DB) repositories.ExamRepository {
	return &ExamPostgreSQL{db: db}
}

func (e *ExamPostgreSQL) GetAll(ctx context.Context) ([]*models.Exam, error) {
	var rows []examRow
	if err := e.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}

	exams := make([]*models.Exam, 0, len(rows))
	for i := range rows {
		exams = append(exams, rows[i].toModel())
	}
	return exams, nil
}

func (e *ExamPostgreSQL) GetByID(ctx context.Context, id string) (*models.Exam, error) {
	var row examRow
	if err := e.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	return row.toModel(), nil
}

// Save replaces every stored exam with exams inside one transaction
func (e *ExamPostgreSQL) Save(ctx context.Context, exams []*models.Exam) error {
	rows := make([]*examRow, 0, len(exams))
	for _, exam := range exams {
		rows = append(rows, examFromModel(exam))
	}

	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&examRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear exams: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			return fmt.Errorf("failed to insert exams: %w", translateError(err))
		}
		return nil
	})
}

// AddOne upserts by id
func (e *ExamPostgreSQL) AddOne(ctx context.Context, exam *models.Exam) error {
	err := e.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(examFromModel(exam)).Error
	if err != nil {
		return fmt.Errorf("failed to upsert exam: %w", err)
	}
	return nil
}

func (e *ExamPostgreSQL) Update(ctx context.Context, id string, update models.ExamUpdate) (*models.Exam, error) {
	cols := examUpdateColumns(update)
	if len(cols) > 0 {
		res := e.db.WithContext(ctx).Model(&examRow{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update exam: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, nil
		}
	}
	return e.GetByID(ctx, id)
}

func (e *ExamPostgreSQL) DeleteOne(ctx context.Context, id string) error {
	if err := e.db.WithContext(ctx).Where("id = ?", id).Delete(&examRow{}).Error; err != nil {
		return fmt.Errorf("failed to delete exam: %w", err)
	}
	return nil
}
