package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/repositories"
)

type FolderPostgreSQL struct {
	db *gorm.DB
}

func NewFolderPostgreSQL(db *gorm.DB) repositories.FolderRepository {
	return &FolderPostgreSQL{db: db}
}

func (f *FolderPostgreSQL) GetAll(ctx context.Context) ([]*models.Folder, error) {
	var rows []folderRow
	if err := f.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	folders := make([]*models.Folder, 0, len(rows))
	for i := range rows {
		folders = append(folders, rows[i].toModel())
	}
	return folders, nil
}

func (f *FolderPostgreSQL) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	var row folderRow
	if err := f.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}
	return row.toModel(), nil
}

// Save replaces the folder tree inside one transaction.
// Rows are stamped in slice order so GetAll returns them as given.
func (f *FolderPostgreSQL) Save(ctx context.Context, folders []*models.Folder) error {
	base := time.Now().UTC().Truncate(time.Millisecond)
	rows := make([]*folderRow, 0, len(folders))
	for i, folder := range folders {
		row := folderFromModel(folder)
		row.CreatedAt = base.Add(time.Duration(i) * time.Millisecond)
		rows = append(rows, row)
	}

	return f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&folderRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear folders: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			return fmt.Errorf("failed to insert folders: %w", translateError(err))
		}
		return nil
	})
}

func (f *FolderPostgreSQL) AddOne(ctx context.Context, folder *models.Folder) error {
	row := folderFromModel(folder)
	row.CreatedAt = time.Now().UTC()
	if err := f.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create folder: %w", translateError(err))
	}
	return nil
}

func (f *FolderPostgreSQL) Update(ctx context.Context, id string, update models.FolderUpdate) (*models.Folder, error) {
	cols := folderUpdateColumns(update)
	if len(cols) > 0 {
		res := f.db.WithContext(ctx).Model(&folderRow{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update folder: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, nil
		}
	}
	return f.GetByID(ctx, id)
}

func (f *FolderPostgreSQL) DeleteOne(ctx context.Context, id string) error {
	if err := f.db.WithContext(ctx).Where("id = ?", id).Delete(&folderRow{}).Error; err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	return nil
}
