package services

import (
	"context"
	"errors"
	"testing"

	"github.com/gizaedu/exam-service/internal/events"
	"github.com/gizaedu/exam-service/internal/models"
)

func TestUserService_ToggleBan(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	ctx := context.Background()

	admin := env.addUser(t, &models.User{ID: "GIZA-ADMIN", Email: "admin@example.com", Role: models.RoleAdmin})
	env.addUser(t, &models.User{ID: "GIZA-S1", Email: "s1@example.com"})
	env.addUser(t, &models.User{ID: "GIZA-M", Email: privilegedEmail, Role: models.RoleAdmin})

	profile, err := svc.ToggleBan(ctx, admin, "GIZA-S1")
	if err != nil || !profile.IsBanned {
		t.Fatalf("ToggleBan() = %+v, %v", profile, err)
	}
	profile, err = svc.ToggleBan(ctx, admin, "GIZA-S1")
	if err != nil || profile.IsBanned {
		t.Fatalf("ToggleBan() again = %+v, %v", profile, err)
	}
	if n := len(env.publisher.EventsOfType(events.UserBanToggled)); n != 2 {
		t.Errorf("ban events = %d, want 2", n)
	}

	tests := []struct {
		name   string
		target string
		want   error
	}{
		{"privileged target", "GIZA-M", ErrPrivilegedAccount},
		{"self", "GIZA-ADMIN", ErrCannotModifySelf},
		{"missing", "GIZA-NOPE", ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ToggleBan(ctx, admin, tt.target)
			if !errors.Is(err, tt.want) {
				t.Errorf("ToggleBan() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUserService_ToggleRole(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	ctx := context.Background()

	master := env.addUser(t, &models.User{ID: "GIZA-M", Email: privilegedEmail, Role: models.RoleAdmin})
	admin := env.addUser(t, &models.User{ID: "GIZA-ADMIN", Email: "admin@example.com", Role: models.RoleAdmin})
	env.addUser(t, &models.User{ID: "GIZA-S1", Email: "s1@example.com"})

	if _, err := svc.ToggleRole(ctx, admin, "GIZA-S1"); !errors.Is(err, ErrNotPrivileged) {
		t.Errorf("ToggleRole() by regular admin error = %v, want ErrNotPrivileged", err)
	}

	var perr *PermissionError
	_, err := svc.ToggleRole(ctx, admin, "GIZA-S1")
	if !errors.As(err, &perr) || perr.Resource != "user" {
		t.Errorf("error should be a PermissionError, got %T", err)
	}

	profile, err := svc.ToggleRole(ctx, master, "GIZA-S1")
	if err != nil || profile.Role != models.RoleAdmin {
		t.Fatalf("ToggleRole() = %+v, %v", profile, err)
	}
	profile, err = svc.ToggleRole(ctx, master, "GIZA-S1")
	if err != nil || profile.Role != models.RoleStudent {
		t.Fatalf("ToggleRole() again = %+v, %v", profile, err)
	}
}

func TestUserService_SyncPrivilegedAccounts(t *testing.T) {
	ctx := context.Background()

	t.Run("promotes existing", func(t *testing.T) {
		env := newTestEnv(t)
		env.addUser(t, &models.User{ID: "GIZA-M", Email: privilegedEmail})

		n, err := env.userService().SyncPrivilegedAccounts(ctx)
		if err != nil || n != 1 {
			t.Fatalf("SyncPrivilegedAccounts() = %d, %v", n, err)
		}
		u, _ := env.repo.User().GetByID(ctx, "GIZA-M")
		if !u.IsAdmin() {
			t.Error("privileged account was not promoted")
		}
	})

	t.Run("missing without bypass", func(t *testing.T) {
		env := newTestEnv(t)
		n, err := env.userService().SyncPrivilegedAccounts(ctx)
		if err != nil || n != 0 {
			t.Fatalf("SyncPrivilegedAccounts() = %d, %v", n, err)
		}
	})

	t.Run("missing with bypass", func(t *testing.T) {
		env := newTestEnv(t)
		env.auth.BypassAllowed = true
		if _, err := env.userService().SyncPrivilegedAccounts(ctx); err != nil {
			t.Fatalf("SyncPrivilegedAccounts() error = %v", err)
		}
		u, _ := env.repo.User().GetByEmail(ctx, privilegedEmail)
		if u == nil || !u.IsAdmin() || u.PasswordHash != "" {
			t.Errorf("created account = %+v", u)
		}
	})
}

func TestUserService_ListUsersStripsSecrets(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, &models.User{ID: "GIZA-S1", Email: "s1@example.com", PasswordHash: "hash"})

	users, err := env.userService().ListUsers(context.Background())
	if err != nil || len(users) != 1 {
		t.Fatalf("ListUsers() = %v, %v", users, err)
	}
	if users[0].Email != "s1@example.com" {
		t.Errorf("ListUsers() = %+v", users[0])
	}
}
