package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/repositories"
)

type AnnouncementPostgreSQL struct {
	db *gorm.DB
}

func NewAnnouncementPostgreSQL(db *gorm.DB) repositories.AnnouncementRepository {
	return &AnnouncementPostgreSQL{db: db}
}

func (a *AnnouncementPostgreSQL) GetAll(ctx context.Context) ([]*models.Announcement, error) {
	var rows []announcementRow
	if err := a.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}

	list := make([]*models.Announcement, 0, len(rows))
	for i := range rows {
		list = append(list, rows[i].toModel())
	}
	return list, nil
}

func (a *AnnouncementPostgreSQL) Save(ctx context.Context, announcements []*models.Announcement) error {
	rows := make([]*announcementRow, 0, len(announcements))
	for _, ann := range announcements {
		rows = append(rows, announcementFromModel(ann))
	}

	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&announcementRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear announcements: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			return fmt.Errorf("failed to insert announcements: %w", translateError(err))
		}
		return nil
	})
}

func (a *AnnouncementPostgreSQL) AddOne(ctx context.Context, announcement *models.Announcement) error {
	err := a.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(announcementFromModel(announcement)).Error
	if err != nil {
		return fmt.Errorf("failed to upsert announcement: %w", err)
	}
	return nil
}

func (a *AnnouncementPostgreSQL) DeleteOne(ctx context.Context, id string) error {
	if err := a.db.WithContext(ctx).Where("id = ?", id).Delete(&announcementRow{}).Error; err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}
	return nil
}
