package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gizaedu/exam-service/internal/events"
	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/repositories"
)

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	publisher events.EventPublisher
	config    AuthConfig
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, publisher events.EventPublisher, config AuthConfig) UserService {
	return &userService{
		repo:      repo,
		logger:    logger,
		publisher: publisher,
		config:    config,
	}
}

func (s *userService) IsPrivileged(email string) bool {
	return s.config.Privileged.Contains(email)
}

func (s *userService) ListUsers(ctx context.Context) ([]*models.UserProfile, error) {
	users, err := s.repo.User().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	out := make([]*models.UserProfile, 0, len(users))
	for _, u := range users {
		out = append(out, models.NewUserProfile(u))
	}
	return out, nil
}

// ToggleBan flips the banned flag. Privileged accounts and the caller's own
// account cannot be banned.
func (s *userService) ToggleBan(ctx context.Context, actor *models.User, userID string) (*models.UserProfile, error) {
	target, err := s.loadTarget(ctx, actor, userID)
	if err != nil {
		return nil, err
	}
	if s.IsPrivileged(target.Email) {
		return nil, NewPermissionError("user", "ban", ErrPrivilegedAccount)
	}

	banned := !target.IsBanned
	updated, err := s.repo.User().Update(ctx, userID, models.UserUpdate{IsBanned: &banned})
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if updated == nil {
		return nil, ErrUserNotFound
	}

	s.logger.InfoContext(ctx, "User ban toggled", "user_id", userID, "is_banned", banned, "actor_id", actor.ID)
	publishEvent(ctx, s.publisher, s.logger, events.UserBanToggled, events.UserToggledData{
		UserID:   userID,
		ActorID:  actor.ID,
		IsBanned: banned,
		Role:     string(updated.Role),
	})
	return models.NewUserProfile(updated), nil
}

// ToggleRole switches between ADMIN and STUDENT. Only privileged callers may
// do it, and privileged accounts keep their role.
func (s *userService) ToggleRole(ctx context.Context, actor *models.User, userID string) (*models.UserProfile, error) {
	if actor == nil || !s.IsPrivileged(actor.Email) {
		return nil, NewPermissionError("user", "change role of", ErrNotPrivileged)
	}
	target, err := s.loadTarget(ctx, actor, userID)
	if err != nil {
		return nil, err
	}
	if s.IsPrivileged(target.Email) {
		return nil, NewPermissionError("user", "change role of", ErrPrivilegedAccount)
	}

	role := models.RoleAdmin
	if target.IsAdmin() {
		role = models.RoleStudent
	}
	updated, err := s.repo.User().Update(ctx, userID, models.UserUpdate{Role: &role})
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if updated == nil {
		return nil, ErrUserNotFound
	}

	s.logger.InfoContext(ctx, "User role toggled", "user_id", userID, "role", role, "actor_id", actor.ID)
	publishEvent(ctx, s.publisher, s.logger, events.UserRoleToggled, events.UserToggledData{
		UserID:   userID,
		ActorID:  actor.ID,
		IsBanned: updated.IsBanned,
		Role:     string(role),
	})
	return models.NewUserProfile(updated), nil
}

func (s *userService) SyncPrivilegedAccounts(ctx context.Context) (int, error) {
	changed := 0
	for email := range s.config.Privileged {
		user, err := s.repo.User().GetByEmail(ctx, email)
		if err != nil {
			return changed, fmt.Errorf("failed to look up privileged account: %w", err)
		}

		if user == nil {
			if !s.config.BypassAllowed || s.repo.Backend() != repositories.BackendLocal {
				continue
			}
			user = newPrivilegedUser(email)
			if err := s.repo.User().Add(ctx, user); err != nil {
				return changed, fmt.Errorf("failed to create privileged account: %w", err)
			}
			s.logger.InfoContext(ctx, "Created privileged account", "user_id", user.ID)
			changed++
			continue
		}

		if user.IsAdmin() {
			continue
		}
		admin := models.RoleAdmin
		if _, err := s.repo.User().Update(ctx, user.ID, models.UserUpdate{Role: &admin}); err != nil {
			return changed, fmt.Errorf("failed to promote privileged account: %w", err)
		}
		s.logger.InfoContext(ctx, "Promoted privileged account", "user_id", user.ID)
		changed++
	}
	return changed, nil
}

func (s *userService) loadTarget(ctx context.Context, actor *models.User, userID string) (*models.User, error) {
	if actor != nil && actor.ID == userID {
		return nil, NewPermissionError("user", "modify", ErrCannotModifySelf)
	}
	target, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if target == nil {
		return nil, ErrUserNotFound
	}
	return target, nil
}
