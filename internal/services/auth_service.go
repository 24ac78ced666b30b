package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gizaedu/exam-service/internal/metrics"
	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/repositories"
	"github.com/gizaedu/exam-service/internal/session"
	"github.com/gizaedu/exam-service/internal/validator"
)

// AuthConfig carries the privileged allowlist and the bypass gate
type AuthConfig struct {
	Privileged    PrivilegedSet
	BypassAllowed bool
}

type authService struct {
	repo        repositories.Repository
	credentials repositories.CredentialService
	sessions    *session.Store
	logger      *slog.Logger
	validator   *validator.Validator
	metrics     *metrics.Metrics
	config      AuthConfig
}

// NewAuthService builds the auth service. credentials is nil for the local
// backend, where passwords are checked against stored bcrypt hashes.
func NewAuthService(
	repo repositories.Repository,
	credentials repositories.CredentialService,
	sessions *session.Store,
	logger *slog.Logger,
	validator *validator.Validator,
	m *metrics.Metrics,
	config AuthConfig,
) AuthService {
	return &authService{
		repo:        repo,
		credentials: credentials,
		sessions:    sessions,
		logger:      logger,
		validator:   validator,
		metrics:     m,
		config:      config,
	}
}

func (s *authService) remote() bool {
	return s.credentials != nil && s.repo.Backend() == repositories.BackendRemote
}

func (s *authService) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveAuth(outcome)
	}
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		s.observe(metrics.OutcomeRejected)
		return nil, err
	}

	var (
		user *models.User
		err  error
	)
	if s.remote() {
		user, err = s.remoteLogin(ctx, req)
	} else {
		user, err = s.localLogin(ctx, req)
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrAccountBanned):
			s.observe(metrics.OutcomeBanned)
		case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrAccountNotFound),
			errors.Is(err, ErrTwoFactorRequired), errors.Is(err, ErrProfileMissing):
			s.observe(metrics.OutcomeFailure)
		}
		return nil, err
	}

	if user, err = s.promoteIfPrivileged(ctx, user); err != nil {
		return nil, err
	}
	return s.openSession(ctx, user)
}

func (s *authService) localLogin(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	user, err := s.repo.User().GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}
	if user.IsBanned {
		s.logger.InfoContext(ctx, "Rejected login of banned account", "user_id", user.ID)
		return nil, ErrAccountBanned
	}
	if user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if user.TwoFactorEnabled {
		return nil, ErrTwoFactorRequired
	}
	return user, nil
}

func (s *authService) remoteLogin(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	userID, err := s.credentials.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("remote sign in failed: %w", err)
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if user == nil || user.IsBanned {
		if signOutErr := s.credentials.SignOut(ctx, userID); signOutErr != nil {
			s.logger.WarnContext(ctx, "Remote sign out failed", "user_id", userID, "error", signOutErr)
		}
		if user == nil {
			return nil, ErrProfileMissing
		}
		s.logger.InfoContext(ctx, "Rejected login of banned account", "user_id", user.ID)
		return nil, ErrAccountBanned
	}
	if user.TwoFactorEnabled {
		return nil, ErrTwoFactorRequired
	}
	return user, nil
}

func (s *authService) BypassLogin(ctx context.Context, email string) (*models.LoginResponse, error) {
	if !s.config.BypassAllowed || s.remote() || !s.config.Privileged.Contains(email) {
		s.observe(metrics.OutcomeRejected)
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.User().GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if user == nil {
		user = newPrivilegedUser(email)
		if err := s.repo.User().Add(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create privileged account: %w", err)
		}
		s.logger.WarnContext(ctx, "Created privileged account through bypass", "user_id", user.ID)
	}
	if user.IsBanned {
		s.observe(metrics.OutcomeBanned)
		s.logger.InfoContext(ctx, "Rejected bypass login of banned account", "user_id", user.ID)
		return nil, ErrAccountBanned
	}
	if user, err = s.promoteIfPrivileged(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WarnContext(ctx, "Privileged bypass login", "user_id", user.ID)
	return s.openSession(ctx, user)
}

func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.LoginResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	email := models.NormalizeEmail(req.Email)

	existing, err := s.repo.User().GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	user := &models.User{
		Role:           models.RoleStudent,
		Email:          email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		UniversityName: req.UniversityName,
		UniversityID:   req.UniversityID,
		PhoneNumber:    req.PhoneNumber,
		AcademicYear:   req.AcademicYear,
		Language:       models.LanguageEnglish,
		Theme:          models.ThemeLight,
		CreatedAt:      time.Now().UTC(),
	}
	if s.config.Privileged.Contains(email) {
		user.Role = models.RoleAdmin
	}

	if s.remote() {
		id, err := s.remoteSignUp(ctx, email, req)
		if err != nil {
			return nil, err
		}
		user.ID = id
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.ID = newID(UserIDPrefix, 9)
		user.PasswordHash = string(hash)
	}

	if err := s.repo.User().Add(ctx, user); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.logger.InfoContext(ctx, "Account registered", "user_id", user.ID, "role", user.Role)
	return s.openSession(ctx, user)
}

// remoteSignUp creates the remote credential. A credential left without a
// profile by an earlier failed registration is reclaimed when the password
// matches, so the profile can be written under its id.
func (s *authService) remoteSignUp(ctx context.Context, email string, req *models.RegisterRequest) (string, error) {
	id, err := s.credentials.SignUp(ctx, repositories.SignUpRequest{
		Email:     email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, repositories.ErrCredentialExists) {
		return "", fmt.Errorf("remote sign up failed: %w", err)
	}

	id, err = s.credentials.SignIn(ctx, email, req.Password)
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidCredentials) {
			return "", ErrEmailTaken
		}
		return "", fmt.Errorf("remote sign in failed: %w", err)
	}
	profile, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to check profile: %w", err)
	}
	if profile != nil {
		return "", ErrEmailTaken
	}

	s.logger.WarnContext(ctx, "Reclaiming credential without profile", "user_id", id)
	return id, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	return s.sessions.Logout(ctx, token)
}

func (s *authService) Restore(ctx context.Context, token string) (*session.Context, error) {
	return s.sessions.Restore(ctx, token, s.repo.User())
}

func (s *authService) UpdatePreferences(ctx context.Context, token, userID string, req *models.PreferencesRequest) (*models.UserProfile, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	updated, err := s.repo.User().Update(ctx, userID, models.UserUpdate{
		Language: req.Language,
		Theme:    req.Theme,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}
	if updated == nil {
		return nil, ErrUserNotFound
	}

	if err := s.sessions.Set(ctx, token, updated); err != nil {
		return nil, err
	}
	return models.NewUserProfile(updated), nil
}

func (s *authService) promoteIfPrivileged(ctx context.Context, user *models.User) (*models.User, error) {
	if user.IsAdmin() || !s.config.Privileged.Contains(user.Email) {
		return user, nil
	}

	admin := models.RoleAdmin
	promoted, err := s.repo.User().Update(ctx, user.ID, models.UserUpdate{Role: &admin})
	if err != nil {
		return nil, fmt.Errorf("failed to promote privileged account: %w", err)
	}
	if promoted == nil {
		return nil, ErrUserNotFound
	}
	s.logger.InfoContext(ctx, "Promoted privileged account", "user_id", user.ID)
	return promoted, nil
}

func (s *authService) openSession(ctx context.Context, user *models.User) (*models.LoginResponse, error) {
	token, err := s.sessions.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	s.observe(metrics.OutcomeSuccess)
	s.logger.InfoContext(ctx, "User signed in", "user_id", user.ID, "role", user.Role)
	return &models.LoginResponse{Token: token, User: models.NewUserProfile(user)}, nil
}

func newPrivilegedUser(email string) *models.User {
	return &models.User{
		ID:        newID(PrivilegedIDPrefix, 5),
		Role:      models.RoleAdmin,
		Email:     models.NormalizeEmail(email),
		FirstName: "Master",
		LastName:  "Admin",
		Language:  models.LanguageEnglish,
		Theme:     models.ThemeLight,
		CreatedAt: time.Now().UTC(),
	}
}
