package repositories

import (
	"context"

	"github.com/gizaedu/exam-service/internal/models"
)

// UserRepository stores accounts. Users are never hard-deleted.
type UserRepository interface {
	// GetAll returns a fresh snapshot of every account
	GetAll(ctx context.Context) ([]*models.User, error)
	// GetByID returns nil, nil when no account has the id
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail matches the normalized email; nil, nil when absent
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Save replaces the stored accounts with users
	Save(ctx context.Context, users []*models.User) error
	Add(ctx context.Context, user *models.User) error
	// Update applies the non-nil fields and returns the new record,
	// or nil, nil when no account has the id
	Update(ctx context.Context, id string, update models.UserUpdate) (*models.User, error)
}
