package repositories

import (
	"context"
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCredentialExists   = errors.New("credential already exists")
)

// SignUpRequest carries what the identity service needs to create an account
type SignUpRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// CredentialService is the remote identity provider used when the remote
// backend is active. It owns passwords; profiles live in UserRepository.
type CredentialService interface {
	// SignIn verifies the credentials and returns the account id
	SignIn(ctx context.Context, email, password string) (string, error)
	// SignUp creates the credential and returns the new account id
	SignUp(ctx context.Context, req SignUpRequest) (string, error)
	// SignOut ends the remote credential session of the account
	SignOut(ctx context.Context, userID string) error
}
