package services

import (
	"errors"
	"fmt"

	"github.com/gizaedu/exam-service/internal/validator"
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountBanned      = errors.New("account is banned")
	ErrProfileMissing     = errors.New("profile data missing for authenticated account")
	ErrEmailTaken         = errors.New("email already registered")
	ErrTwoFactorRequired  = errors.New("two-factor authentication is not supported for this account")
	ErrUnauthenticated    = errors.New("not authenticated")
)

// User administration errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrPrivilegedAccount = errors.New("privileged accounts cannot be modified")
	ErrNotPrivileged     = errors.New("only privileged administrators may change roles")
	ErrCannotModifySelf  = errors.New("administrators cannot change their own account")
)

// Curation errors
var (
	ErrFolderNotFound       = errors.New("folder not found")
	ErrParentFolderNotFound = errors.New("parent folder not found")
	ErrFolderCycle          = errors.New("folder cannot be moved into itself or a descendant")
	ErrExamNotFound         = errors.New("exam not found")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrLastQuestion         = errors.New("an exam must keep at least one question")
	ErrAnnouncementNotFound = errors.New("announcement not found")
)

// Attempt errors
var (
	ErrAttemptNotFound     = errors.New("attempt not found")
	ErrAttemptAccessDenied = errors.New("attempt belongs to another student")
	ErrAttemptNotActive    = errors.New("attempt is not in progress")
	ErrExamNotAvailable    = errors.New("exam has no questions and cannot be taken")
	ErrUnknownQuestion     = errors.New("question does not belong to the exam")
)

// Backup errors
var (
	ErrConfirmationRequired = errors.New("import replaces all data and must be confirmed")
)

type ValidationError = validator.ValidationError
type ValidationErrors = validator.ValidationErrors

// PermissionError reports an action the caller's role does not allow
type PermissionError struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
	Reason   string `json:"reason"`
	Err      error  `json:"-"`
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: cannot %s %s: %s", e.Action, e.Resource, e.Reason)
}

func (e *PermissionError) Unwrap() error {
	return e.Err
}

func NewPermissionError(resource, action string, err error) *PermissionError {
	return &PermissionError{Resource: resource, Action: action, Reason: err.Error(), Err: err}
}
