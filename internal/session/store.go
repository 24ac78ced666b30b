// Package session keeps the signed-in identity behind each bearer token and
// revalidates it against the user collection on every request.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gizaedu/exam-service/internal/kvstore"
	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/repositories"
)

const keyPrefix = "session:"

var ErrSessionInvalid = errors.New("session is invalid or expired")

type Status string

const (
	StatusInit    Status = "init"
	StatusActive  Status = "active"
	StatusCleared Status = "cleared"
)

// Context is the per-request view of a session
type Context struct {
	ID     string
	User   *models.User
	Status Status
}

func (c *Context) IsActive() bool {
	return c != nil && c.Status == StatusActive && c.User != nil
}

// UserLookup fetches the authoritative user record
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type Store struct {
	kv          *kvstore.Helper
	ttl         time.Duration
	credentials repositories.CredentialService
	logger      *slog.Logger
}

// NewStore creates a session store. credentials is nil when the local
// backend is active.
func NewStore(kv *kvstore.Helper, ttl time.Duration, credentials repositories.CredentialService, logger *slog.Logger) *Store {
	return &Store{
		kv:          kv,
		ttl:         ttl,
		credentials: credentials,
		logger:      logger,
	}
}

func (s *Store) key(sid string) string {
	return keyPrefix + sid
}

// Get returns the stored identity, or nil when the session does not exist
func (s *Store) Get(ctx context.Context, sid string) (*models.User, error) {
	if sid == "" {
		return nil, nil
	}

	var user models.User
	if err := s.kv.Get(ctx, s.key(sid), &user); err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return &user, nil
}

// Set stores user under sid, or clears the session when user is nil
func (s *Store) Set(ctx context.Context, sid string, user *models.User) error {
	if user == nil {
		return s.kv.Delete(ctx, s.key(sid))
	}

	stored := *user
	stored.PasswordHash = ""
	stored.TwoFactorSecret = ""
	if err := s.kv.Set(ctx, s.key(sid), stored, s.ttl); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Create opens a new session for user and returns its token
func (s *Store) Create(ctx context.Context, user *models.User) (string, error) {
	sid := uuid.NewString()
	if err := s.Set(ctx, sid, user); err != nil {
		return "", err
	}
	return sid, nil
}

// Logout ends the remote credential session when one exists and always
// clears the stored session
func (s *Store) Logout(ctx context.Context, sid string) error {
	var signOutErr error
	if s.credentials != nil {
		user, err := s.Get(ctx, sid)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to read session before sign out", "error", err)
		}
		if user != nil {
			signOutErr = s.credentials.SignOut(ctx, user.ID)
		}
	}

	if err := s.kv.Delete(ctx, s.key(sid)); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	if signOutErr != nil {
		s.logger.ErrorContext(ctx, "Remote sign out failed", "error", signOutErr)
		return fmt.Errorf("remote sign out failed: %w", signOutErr)
	}
	return nil
}

// Restore loads the session and revalidates it against users. A missing or
// banned account clears the session and yields ErrSessionInvalid.
func (s *Store) Restore(ctx context.Context, sid string, users UserLookup) (*Context, error) {
	sc := &Context{ID: sid, Status: StatusInit}

	stored, err := s.Get(ctx, sid)
	if err != nil {
		return sc, err
	}
	if stored == nil {
		sc.Status = StatusCleared
		return sc, ErrSessionInvalid
	}

	fresh, err := users.GetByID(ctx, stored.ID)
	if err != nil {
		return sc, fmt.Errorf("failed to revalidate session: %w", err)
	}
	if fresh == nil || fresh.IsBanned {
		s.logger.InfoContext(ctx, "Clearing session of unavailable account",
			"user_id", stored.ID, "missing", fresh == nil)
		if s.credentials != nil {
			if err := s.credentials.SignOut(ctx, stored.ID); err != nil {
				s.logger.WarnContext(ctx, "Forced remote sign out failed", "user_id", stored.ID, "error", err)
			}
		}
		kvstore.SafeDelete(ctx, s.kv, s.logger, s.key(sid))
		sc.Status = StatusCleared
		return sc, ErrSessionInvalid
	}

	if err := s.Set(ctx, sid, fresh); err != nil {
		return sc, err
	}
	sc.User = fresh
	sc.Status = StatusActive
	return sc, nil
}
