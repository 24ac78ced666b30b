package local

import (
	"context"

	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/repositories"
)

type UserLocal struct {
	users *collection[models.User]
}

func NewUserLocal(users *collection[models.User]) repositories.UserRepository {
	return &UserLocal{users: users}
}

func (u *UserLocal) GetAll(ctx context.Context) ([]*models.User, error) {
	return u.users.load(ctx)
}

func (u *UserLocal) GetByID(ctx context.Context, id string) (*models.User, error) {
	all, err := u.users.load(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(all, func(x *models.User) bool { return x.ID == id }); i >= 0 {
		return all[i], nil
	}
	return nil, nil
}

func (u *UserLocal) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	all, err := u.users.load(ctx)
	if err != nil {
		return nil, err
	}
	normalized := models.NormalizeEmail(email)
	if i := indexOf(all, func(x *models.User) bool { return models.NormalizeEmail(x.Email) == normalized }); i >= 0 {
		return all[i], nil
	}
	return nil, nil
}

func (u *UserLocal) Save(ctx context.Context, users []*models.User) error {
	return u.users.replace(ctx, users)
}

func (u *UserLocal) Add(ctx context.Context, user *models.User) error {
	return u.users.mutate(ctx, func(all []*models.User) ([]*models.User, error) {
		if indexOf(all, func(x *models.User) bool { return x.ID == user.ID }) >= 0 {
			return nil, repositories.ErrDuplicateKey
		}
		return append(all, user), nil
	})
}

func (u *UserLocal) Update(ctx context.Context, id string, update models.UserUpdate) (*models.User, error) {
	var updated *models.User
	err := u.users.mutate(ctx, func(all []*models.User) ([]*models.User, error) {
		i := indexOf(all, func(x *models.User) bool { return x.ID == id })
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
