package casdoor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/google/uuid"

	"github.com/gizaedu/exam-service/internal/kvstore"
	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/repositories"
)

// CasdoorConfig holds the configuration for Casdoor connection
type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

// client is the subset of the Casdoor SDK used for credentials
type client interface {
	GetUserByEmail(email string) (*casdoorsdk.User, error)
	CheckUserPassword(user *casdoorsdk.User) (bool, error)
	AddUser(user *casdoorsdk.User) (bool, error)
}

// CredentialsCasdoor signs accounts in and up against Casdoor and tracks the
// resulting credential session in the key-value store.
type CredentialsCasdoor struct {
	client       client
	kv           *kvstore.Helper
	organization string

	sessionPrefix string
	sessionTTL    time.Duration
}

func NewCredentialsCasdoor(config CasdoorConfig, kv *kvstore.Helper, sessionTTL time.Duration) repositories.CredentialService {
	c := casdoorsdk.NewClient(
		config.Endpoint,
		config.ClientID,
		config.ClientSecret,
		config.Certificate,
		config.OrganizationName,
		config.ApplicationName,
	)
	return newCredentialsCasdoor(c, kv, config.OrganizationName, sessionTTL)
}

func newCredentialsCasdoor(c client, kv *kvstore.Helper, organization string, sessionTTL time.Duration) *CredentialsCasdoor {
	return &CredentialsCasdoor{
		client:        c,
		kv:            kv,
		organization:  organization,
		sessionPrefix: "remote_session:",
		sessionTTL:    sessionTTL,
	}
}

type remoteSession struct {
	UserID   string    `json:"userId"`
	Email    string    `json:"email"`
	SignedIn time.Time `json:"signedIn"`
}

func (c *CredentialsCasdoor) sessionKey(userID string) string {
	return c.sessionPrefix + userID
}

// SignIn verifies the password with Casdoor and records a credential session
func (c *CredentialsCasdoor) SignIn(ctx context.Context, email, password string) (string, error) {
	email = models.NormalizeEmail(email)

	user, err := c.client.GetUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("failed to get user by email from Casdoor: %w", err)
	}
	if user == nil {
		return "", repositories.ErrInvalidCredentials
	}

	user.Password = password
	ok, err := c.client.CheckUserPassword(user)
	if err != nil {
		return "", fmt.Errorf("failed to check password with Casdoor: %w", err)
	}
	if !ok {
		return "", repositories.ErrInvalidCredentials
	}

	userID := convertCasdoorUserID(user)
	session := remoteSession{UserID: userID, Email: email, SignedIn: time.Now().UTC()}
	if err := c.kv.Set(ctx, c.sessionKey(userID), session, c.sessionTTL); err != nil {
		return "", fmt.Errorf("failed to record credential session: %w", err)
	}

	return userID, nil
}

// SignUp creates a Casdoor user whose id becomes the profile id
func (c *CredentialsCasdoor) SignUp(ctx context.Context, req repositories.SignUpRequest) (string, error) {
	email := models.NormalizeEmail(req.Email)

	existing, err := c.client.GetUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("failed to get user by email from Casdoor: %w", err)
	}
	if existing != nil {
		return "", repositories.ErrCredentialExists
	}

	id := uuid.NewString()
	user := &casdoorsdk.User{
		Owner:       c.organization,
		Name:        id,
		Id:          id,
		Type:        "normal-user",
		Email:       email,
		Password:    req.Password,
		DisplayName: strings.TrimSpace(req.FirstName + " " + req.LastName),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		CreatedTime: time.Now().UTC().Format(time.RFC3339),
	}

	ok, err := c.client.AddUser(user)
	if err != nil {
		return "", fmt.Errorf("failed to create Casdoor user: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("casdoor rejected user creation for %s", email)
	}

	return id, nil
}

// SignOut drops the recorded credential session
func (c *CredentialsCasdoor) SignOut(ctx context.Context, userID string) error {
	if err := c.kv.Delete(ctx, c.sessionKey(userID)); err != nil {
		return fmt.Errorf("failed to end credential session: %w", err)
	}
	return nil
}

// HasSession reports whether the account currently holds a credential session
func (c *CredentialsCasdoor) HasSession(ctx context.Context, userID string) (bool, error) {
	return c.kv.Exists(ctx, c.sessionKey(userID))
}

// convertCasdoorUserID prefers the Casdoor id and falls back to the user name
func convertCasdoorUserID(user *casdoorsdk.User) string {
	if user.Id != "" {
		return user.Id
	}
	return user.Name
}
