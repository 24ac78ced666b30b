package local

import (
	"context"

	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/repositories"
)

type FolderLocal struct {
	folders *collection[models.Folder]
}

func NewFolderLocal(folders *collection[models.Folder]) repositories.FolderRepository {
	return &FolderLocal{folders: folders}
}

func (f *FolderLocal) GetAll(ctx context.Context) ([]*models.Folder, error) {
	return f.folders.load(ctx)
}

func (f *FolderLocal) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	all, err := f.folders.load(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(all, func(x *models.Folder) bool { return x.ID == id }); i >= 0 {
		return all[i], nil
	}
	return nil, nil
}

func (f *FolderLocal) Save(ctx context.Context, folders []*models.Folder) error {
	return f.folders.replace(ctx, folders)
}

func (f *FolderLocal) AddOne(ctx context.Context, folder *models.Folder) error {
	return f.folders.mutate(ctx, func(all []*models.Folder) ([]*models.Folder, error) {
		if indexOf(all, func(x *models.Folder) bool { return x.ID == folder.ID }) >= 0 {
			return nil, repositories.ErrDuplicateKey
		}
		return append(all, folder), nil
	})
}

func (f *FolderLocal) Update(ctx context.Context, id string, update models.FolderUpdate) (*models.Folder, error) {
	var updated *models.Folder
	err := f.folders.mutate(ctx, func(all []*models.Folder) ([]*models.Folder, error) {
		i := indexOf(all, func(x *models.Folder) bool { return x.ID == id })
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

func (f *FolderLocal) DeleteOne(ctx context.Context, id string) error {
	return f.folders.mutate(ctx, func(all []*models.Folder) ([]*models.Folder, error) {
		kept := make([]*models.Folder, 0, len(all))
		for _, x := range all {
			if x.ID != id {
				kept = append(kept, x)
			}
		}
		return kept, nil
	})
}
