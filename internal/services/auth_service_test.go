package services

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/gizaedu/exam-service/internal/metrics"
	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/repositories"
	"github.com/gizaedu/exam-service/internal/session"
	"github.com/gizaedu/exam-service/internal/validator"
)

func registerRequest(email string) *models.RegisterRequest {
	return &models.RegisterRequest{
		Email:     email,
		Password:  "secret123",
		FirstName: "Mona",
		LastName:  "Hassan",
	}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerRequest("  Mona@Example.com "))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if resp.Token == "" || resp.User.Role != models.RoleStudent || resp.User.Email != "mona@example.com" {
		t.Fatalf("Register() = %+v", resp.User)
	}
	if len(resp.User.ID) != len("GIZA-")+9 {
		t.Errorf("unexpected user id %q", resp.User.ID)
	}

	stored, _ := env.repo.User().GetByID(ctx, resp.User.ID)
	if stored.PasswordHash == "" || stored.PasswordHash == "secret123" {
		t.Errorf("password not hashed: %q", stored.PasswordHash)
	}

	login, err := svc.Login(ctx, &models.LoginRequest{Email: "mona@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if login.User.ID != resp.User.ID {
		t.Errorf("Login() user = %s, want %s", login.User.ID, resp.User.ID)
	}

	sc, err := svc.Restore(ctx, login.Token)
	if err != nil || !sc.IsActive() {
		t.Fatalf("Restore() = %+v, %v", sc, err)
	}
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerRequest("dup@example.com")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	_, err := svc.Register(ctx, registerRequest("DUP@example.com"))
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("second Register() error = %v, want ErrEmailTaken", err)
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	req := registerRequest("not-an-email")
	req.Password = "123"
	_, err := env.authService().Register(context.Background(), req)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Register() error = %v, want ValidationErrors", err)
	}
	if len(verrs) != 2 {
		t.Errorf("got %d validation errors, want 2: %v", len(verrs), verrs)
	}
	users, _ := env.repo.User().GetAll(context.Background())
	if len(users) != 0 {
		t.Errorf("invalid registration stored %d users", len(users))
	}
}

func TestAuthService_LoginFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
	env.addUser(t, &models.User{ID: "GIZA-OK", Email: "ok@example.com", PasswordHash: string(hash)})
	env.addUser(t, &models.User{ID: "GIZA-BAN", Email: "ban@example.com", PasswordHash: string(hash), IsBanned: true})
	env.addUser(t, &models.User{ID: "GIZA-2FA", Email: "2fa@example.com", PasswordHash: string(hash), TwoFactorEnabled: true})

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"unknown account", "nobody@example.com", "right-password", ErrAccountNotFound},
		{"wrong password", "ok@example.com", "wrong", ErrInvalidCredentials},
		{"banned before password check", "ban@example.com", "wrong", ErrAccountBanned},
		{"two factor refused", "2fa@example.com", "right-password", ErrTwoFactorRequired},
	}

	svc := env.authService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, &models.LoginRequest{Email: tt.email, Password: tt.password})
			if !errors.Is(err, tt.want) {
				t.Errorf("Login() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAuthService_LoginPromotesPrivileged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("pw-123456"), bcrypt.MinCost)
	env.addUser(t, &models.User{ID: "GIZA-M", Email: privilegedEmail, PasswordHash: string(hash)})

	resp, err := env.authService().Login(ctx, &models.LoginRequest{Email: privilegedEmail, Password: "pw-123456"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.User.Role != models.RoleAdmin {
		t.Errorf("role = %s, want ADMIN", resp.User.Role)
	}
}

func TestAuthService_BypassLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.authService().BypassLogin(ctx, privilegedEmail)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("BypassLogin() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("enabled creates account", func(t *testing.T) {
		env := newTestEnv(t)
		env.auth.BypassAllowed = true

		resp, err := env.authService().BypassLogin(ctx, privilegedEmail)
		if err != nil {
			t.Fatalf("BypassLogin() error = %v", err)
		}
		if resp.User.Role != models.RoleAdmin || resp.User.ID[:len("GIZA-MASTER-")] != "GIZA-MASTER-" {
			t.Errorf("BypassLogin() user = %+v", resp.User)
		}
	})

	t.Run("enabled rejects banned account", func(t *testing.T) {
		env := newTestEnv(t)
		env.auth.BypassAllowed = true
		env.addUser(t, &models.User{ID: "GIZA-MASTER-AAAAA", Role: models.RoleAdmin, Email: privilegedEmail, IsBanned: true})

		resp, err := env.authService().BypassLogin(ctx, privilegedEmail)
		if !errors.Is(err, ErrAccountBanned) {
			t.Fatalf("BypassLogin() = %+v, %v; want ErrAccountBanned", resp, err)
		}
		if got := counterValue(t, env.metrics.Registry(), "auth_attempts_total", "outcome", metrics.OutcomeBanned); got != 1 {
			t.Errorf("banned auth attempts = %v, want 1", got)
		}
	})

	t.Run("enabled rejects other emails", func(t *testing.T) {
		env := newTestEnv(t)
		env.auth.BypassAllowed = true
		_, err := env.authService().BypassLogin(ctx, "student@example.com")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("BypassLogin() error = %v, want ErrInvalidCredentials", err)
		}
	})
}

func TestAuthService_BannedSessionIsCleared(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerRequest("soon-banned@example.com"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	banned := true
	if _, err := env.repo.User().Update(ctx, resp.User.ID, models.UserUpdate{IsBanned: &banned}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	sc, err := svc.Restore(ctx, resp.Token)
	if !errors.Is(err, session.ErrSessionInvalid) || sc.Status != session.StatusCleared {
		t.Fatalf("Restore() = %+v, %v", sc, err)
	}
	if user, _ := env.sessions.Get(ctx, resp.Token); user != nil {
		t.Error("session still stored after ban")
	}
}

func TestAuthService_UpdatePreferences(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerRequest("prefs@example.com"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	lang, theme := models.LanguageArabic, models.ThemeDark
	profile, err := svc.UpdatePreferences(ctx, resp.Token, resp.User.ID, &models.PreferencesRequest{Language: &lang, Theme: &theme})
	if err != nil {
		t.Fatalf("UpdatePreferences() error = %v", err)
	}
	if profile.Language != models.LanguageArabic || profile.Theme != models.ThemeDark {
		t.Errorf("UpdatePreferences() = %+v", profile)
	}

	cached, _ := env.sessions.Get(ctx, resp.Token)
	if cached == nil || cached.Theme != models.ThemeDark {
		t.Errorf("session identity not refreshed: %+v", cached)
	}
}

type fakeCredentials struct {
	users     map[string]string
	signedOut []string
	nextID    string
}

func (f *fakeCredentials) SignIn(_ context.Context, email, password string) (string, error) {
	id, ok := f.users[email+":"+password]
	if !ok {
		return "", repositories.ErrInvalidCredentials
	}
	return id, nil
}

func (f *fakeCredentials) SignUp(_ context.Context, req repositories.SignUpRequest) (string, error) {
	for key := range f.users {
		if len(key) > len(req.Email) && key[:len(req.Email)+1] == req.Email+":" {
			return "", repositories.ErrCredentialExists
		}
	}
	f.users[req.Email+":"+req.Password] = f.nextID
	return f.nextID, nil
}

func (f *fakeCredentials) SignOut(_ context.Context, userID string) error {
	f.signedOut = append(f.signedOut, userID)
	return nil
}

func TestAuthService_RemoteLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	repo := &remoteRepository{LocalRepository: env.repo}

	creds := &fakeCredentials{users: map[string]string{
		"ok@example.com:pw":        "uid-ok",
		"banned@example.com:pw":    "uid-banned",
		"noprofile@example.com:pw": "uid-missing",
	}}
	env.addUser(t, &models.User{ID: "uid-ok", Email: "ok@example.com"})
	env.addUser(t, &models.User{ID: "uid-banned", Email: "banned@example.com", IsBanned: true})

	svc := NewAuthService(repo, creds, env.sessions, env.logger, env.validator, env.metrics, env.auth)

	tests := []struct {
		name       string
		email      string
		want       error
		signsOutID string
	}{
		{name: "success", email: "ok@example.com"},
		{name: "wrong password", email: "unknown@example.com", want: ErrInvalidCredentials},
		{name: "banned profile", email: "banned@example.com", want: ErrAccountBanned, signsOutID: "uid-banned"},
		{name: "missing profile", email: "noprofile@example.com", want: ErrProfileMissing, signsOutID: "uid-missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds.signedOut = nil
			resp, err := svc.Login(ctx, &models.LoginRequest{Email: tt.email, Password: "pw"})
			if tt.want == nil {
				if err != nil || resp.User.ID != "uid-ok" {
					t.Fatalf("Login() = %+v, %v", resp, err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Login() error = %v, want %v", err, tt.want)
			}
			if tt.signsOutID != "" && (len(creds.signedOut) != 1 || creds.signedOut[0] != tt.signsOutID) {
				t.Errorf("signed out %v, want [%s]", creds.signedOut, tt.signsOutID)
			}
		})
	}
}

func TestAuthService_RemoteRegisterCreatesProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	repo := &remoteRepository{LocalRepository: env.repo}
	creds := &fakeCredentials{users: map[string]string{}, nextID: "remote-1"}

	svc := NewAuthService(repo, creds, env.sessions, env.logger, env.validator, env.metrics, env.auth)
	resp, err := svc.Register(ctx, registerRequest("new@example.com"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if resp.User.ID != "remote-1" {
		t.Errorf("user id = %s, want remote-1", resp.User.ID)
	}

	profile, _ := env.repo.User().GetByID(ctx, "remote-1")
	if profile == nil || profile.PasswordHash != "" {
		t.Errorf("remote profile = %+v", profile)
	}
}

// flakyUsers fails the first failAdds calls to Add
type flakyUsers struct {
	repositories.UserRepository
	failAdds int
}

func (f *flakyUsers) Add(ctx context.Context, user *models.User) error {
	if f.failAdds > 0 {
		f.failAdds--
		return errors.New("db down")
	}
	return f.UserRepository.Add(ctx, user)
}

type flakyRemoteRepository struct {
	*remoteRepository
	users *flakyUsers
}

func (r *flakyRemoteRepository) User() repositories.UserRepository { return r.users }

func TestAuthService_RemoteRegisterRecoversOrphanedCredential(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	repo := &flakyRemoteRepository{
		remoteRepository: &remoteRepository{LocalRepository: env.repo},
		users:            &flakyUsers{UserRepository: env.repo.User(), failAdds: 1},
	}
	creds := &fakeCredentials{users: map[string]string{}, nextID: "remote-1"}
	svc := NewAuthService(repo, creds, env.sessions, env.logger, env.validator, env.metrics, env.auth)

	if _, err := svc.Register(ctx, registerRequest("new@example.com")); err == nil {
		t.Fatal("Register() succeeded while the profile store was down")
	}
	if len(creds.users) != 1 {
		t.Fatalf("credentials = %v, want the orphaned one", creds.users)
	}

	wrong := registerRequest("new@example.com")
	wrong.Password = "another-password"
	if _, err := svc.Register(ctx, wrong); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Register() with another password error = %v, want ErrEmailTaken", err)
	}

	resp, err := svc.Register(ctx, registerRequest("new@example.com"))
	if err != nil {
		t.Fatalf("retried Register() error = %v", err)
	}
	if resp.User.ID != "remote-1" {
		t.Errorf("user id = %s, want remote-1", resp.User.ID)
	}

	if _, err := svc.Login(ctx, &models.LoginRequest{Email: "new@example.com", Password: "secret123"}); err != nil {
		t.Errorf("Login() after recovery error = %v", err)
	}
	if _, err := svc.Register(ctx, registerRequest("new@example.com")); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("third Register() error = %v, want ErrEmailTaken", err)
	}
}
