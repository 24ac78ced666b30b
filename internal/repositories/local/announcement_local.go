package local

import (
	"context"

	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/repositories"
)

type AnnouncementLocal struct {
	announcements *collection[models.Announcement]
}

func NewAnnouncementLocal(announcements *collection[models.Announcement]) repositories.AnnouncementRepository {
	return &AnnouncementLocal{announcements: announcements}
}

func (a *AnnouncementLocal) GetAll(ctx context.Context) ([]*models.Announcement, error) {
	return a.announcements.load(ctx)
}

func (a *AnnouncementLocal) Save(ctx context.Context, announcements []*models.Announcement) error {
	return a.announcements.replace(ctx, announcements)
}

func (a *AnnouncementLocal) AddOne(ctx context.Context, announcement *models.Announcement) error {
	return a.announcements.mutate(ctx, func(all []*models.Announcement) ([]*models.Announcement, error) {
		if i := indexOf(all, func(x *models.Announcement) bool { return x.ID == announcement.ID }); i >= 0 {
			all[i] = announcement
			return all, nil
		}
		return append(all, announcement), nil
	})
}

func (a *AnnouncementLocal) DeleteOne(ctx context.Context, id string) error {
	return a.announcements.mutate(ctx, func(all []*models.Announcement) ([]*models.Announcement, error) {
		kept := make([]*models.Announcement, 0, len(all))
		for _, x := range all {
			if x.ID != id {
				kept = append(kept, x)
			}
		}
		return kept, nil
	})
}
