package models

import (
	"strings"
	"time"
)

type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleStudent UserRole = "STUDENT"
)

type Language string

const (
	LanguageEnglish Language = "en"
	LanguageArabic  Language = "ar"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// User is the internal account representation shared by both storage backends.
// PasswordHash is only populated by the local backend; the remote backend keeps
// credentials in the external identity service.
type User struct {
	ID               string    `json:"id"`
	Role             UserRole  `json:"role"`
	Email            string    `json:"email"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	UniversityName   string    `json:"universityName,omitempty"`
	UniversityID     string    `json:"universityId,omitempty"`
	PhoneNumber      string    `json:"phoneNumber,omitempty"`
	AcademicYear     string    `json:"academicYear,omitempty"`
	ProfilePic       string    `json:"profilePic,omitempty"`
	IsBanned         bool      `json:"isBanned"`
	PasswordHash     string    `json:"passwordHash,omitempty"`
	TwoFactorEnabled bool      `json:"twoFactorEnabled,omitempty"`
	TwoFactorSecret  string    `json:"twoFactorSecret,omitempty"`
	Language         Language  `json:"language"`
	Theme            Theme     `json:"theme"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserUpdate carries a partial user change. Nil fields are left untouched.
type UserUpdate struct {
	Role             *UserRole `json:"role,omitempty"`
	FirstName        *string   `json:"firstName,omitempty"`
	LastName         *string   `json:"lastName,omitempty"`
	UniversityName   *string   `json:"universityName,omitempty"`
	UniversityID     *string   `json:"universityId,omitempty"`
	PhoneNumber      *string   `json:"phoneNumber,omitempty"`
	AcademicYear     *string   `json:"academicYear,omitempty"`
	ProfilePic       *string   `json:"profilePic,omitempty"`
	IsBanned         *bool     `json:"isBanned,omitempty"`
	TwoFactorEnabled *bool     `json:"twoFactorEnabled,omitempty"`
	Language         *Language `json:"language,omitempty"`
	Theme            *Theme    `json:"theme,omitempty"`
}

// Apply copies every non-nil field of the update onto u.
func (up UserUpdate) Apply(u *User) {
	if up.Role != nil {
		u.Role = *up.Role
	}
	if up.FirstName != nil {
		u.FirstName = *up.FirstName
	}
	if up.LastName != nil {
		u.LastName = *up.LastName
	}
	if up.UniversityName != nil {
		u.UniversityName = *up.UniversityName
	}
	if up.UniversityID != nil {
		u.UniversityID = *up.UniversityID
	}
	if up.PhoneNumber != nil {
		u.PhoneNumber = *up.PhoneNumber
	}
	if up.AcademicYear != nil {
		u.AcademicYear = *up.AcademicYear
	}
	if up.ProfilePic != nil {
		u.ProfilePic = *up.ProfilePic
	}
	if up.IsBanned != nil {
		u.IsBanned = *up.IsBanned
	}
	if up.TwoFactorEnabled != nil {
		u.TwoFactorEnabled = *up.TwoFactorEnabled
	}
	if up.Language != nil {
		u.Language = *up.Language
	}
	if up.Theme != nil {
		u.Theme = *up.Theme
	}
}

// NormalizeEmail returns the canonical form used for uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
