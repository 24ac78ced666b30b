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

// UserPostgreSQL reads and writes the profiles table. Accounts themselves are
// owned by the identity service, so Save upserts and never deletes.
type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u *UserPostgreSQL) GetAll(ctx context.Context) ([]*models.User, error) {
	var rows []profileRow
	if err := u.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	users := make([]*models.User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].toModel())
	}
	return users, nil
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	return u.first(ctx, "id = ?", id)
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return u.first(ctx, "LOWER(email) = ?", models.NormalizeEmail(email))
}

func (u *UserPostgreSQL) first(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var row profileRow
	if err := u.db.WithContext(ctx).Where(query, args...).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return row.toModel(), nil
}

func (u *UserPostgreSQL) Save(ctx context.Context, users []*models.User) error {
	if len(users) == 0 {
		return nil
	}

	rows := make([]*profileRow, 0, len(users))
	for _, user := range users {
		rows = append(rows, profileFromModel(user))
	}

	err := u.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to upsert profiles: %w", translateError(err))
	}
	return nil
}

func (u *UserPostgreSQL) Add(ctx context.Context, user *models.User) error {
	if err := u.db.WithContext(ctx).Create(profileFromModel(user)).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", translateError(err))
	}
	return nil
}

func (u *UserPostgreSQL) Update(ctx context.Context, id string, update models.UserUpdate) (*models.User, error) {
	cols := profileUpdateColumns(update)
	if len(cols) > 0 {
		res := u.db.WithContext(ctx).Model(&profileRow{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update profile: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, nil
		}
	}
	return u.GetByID(ctx, id)
}
