package models

import "time"

// ===== AUTH DTOs =====

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6,max=128"`
	FirstName      string `json:"firstName" validate:"required,max=100"`
	LastName       string `json:"lastName" validate:"required,max=100"`
	UniversityName string `json:"universityName" validate:"omitempty,max=200"`
	UniversityID   string `json:"universityId" validate:"omitempty,max=100"`
	PhoneNumber    string `json:"phoneNumber" validate:"omitempty,max=50"`
	AcademicYear   string `json:"academicYear" validate:"omitempty,max=50"`
}

type PreferencesRequest struct {
	Language *Language `json:"language" validate:"omitempty,oneof=en ar"`
	Theme    *Theme    `json:"theme" validate:"omitempty,oneof=light dark"`
}

// UserProfile is the outward view of a user with credentials stripped.
type UserProfile struct {
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
	TwoFactorEnabled bool      `json:"twoFactorEnabled"`
	Language         Language  `json:"language"`
	Theme            Theme     `json:"theme"`
	CreatedAt        time.Time `json:"createdAt"`
}

func NewUserProfile(u *User) *UserProfile {
	if u == nil {
		return nil
	}
	return &UserProfile{
		ID:               u.ID,
		Role:             u.Role,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		UniversityName:   u.UniversityName,
		UniversityID:     u.UniversityID,
		PhoneNumber:      u.PhoneNumber,
		AcademicYear:     u.AcademicYear,
		ProfilePic:       u.ProfilePic,
		IsBanned:         u.IsBanned,
		TwoFactorEnabled: u.TwoFactorEnabled,
		Language:         u.Language,
		Theme:            u.Theme,
		CreatedAt:        u.CreatedAt,
	}
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *UserProfile `json:"user"`
}

// ===== CURATION DTOs =====

type FolderCreateRequest struct {
	Name     string  `json:"name" validate:"required,max=200"`
	ParentID *string `json:"parentId"`
}

type FolderUpdateRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=200"`
	ParentID   *string `json:"parentId"`
	MoveToRoot bool    `json:"moveToRoot"`
}

// QuestionInput describes a question to create. On an exam update, ID keeps
// the id of the existing question it names.
type QuestionInput struct {
	ID            string       `json:"id,omitempty"`
	Type          QuestionType `json:"type" validate:"required,question_type"`
	Prompt        *string      `json:"prompt" validate:"omitempty,max=5000"`
	Points        *int         `json:"points" validate:"omitempty,min=1,max=1000"`
	Options       []string     `json:"options" validate:"omitempty,dive,max=1000"`
	CorrectAnswer *string      `json:"correctAnswer"`
	ExternalURL   *string      `json:"externalUrl"`
}

type QuestionPatch struct {
	Prompt        *string  `json:"prompt" validate:"omitempty,max=5000"`
	Points        *int     `json:"points" validate:"omitempty,min=1,max=1000"`
	Options       []string `json:"options" validate:"omitempty,dive,max=1000"`
	CorrectAnswer *string  `json:"correctAnswer"`
	ExternalURL   *string  `json:"externalUrl"`
}

// Apply merges the patch into q and drops fields its type does not carry.
func (p QuestionPatch) Apply(q *Question) {
	if p.Prompt != nil {
		q.Prompt = *p.Prompt
	}
	if p.Points != nil {
		q.Points = *p.Points
	}
	if p.Options != nil {
		q.Options = append([]string(nil), p.Options...)
	}
	if p.CorrectAnswer != nil {
		q.CorrectAnswer = *p.CorrectAnswer
	}
	if p.ExternalURL != nil {
		q.ExternalURL = *p.ExternalURL
	}
	q.Normalize()
}

type ExamCreateRequest struct {
	FolderID        string          `json:"folderId"`
	Title           string          `json:"title" validate:"required,max=200"`
	Description     string          `json:"description" validate:"max=5000"`
	DurationMinutes int             `json:"durationMinutes" validate:"omitempty,min=1,max=1440"`
	Questions       []QuestionInput `json:"questions" validate:"required,min=1,dive"`
}

type ExamUpdateRequest struct {
	FolderID        *string          `json:"folderId"`
	Title           *string          `json:"title" validate:"omitempty,min=1,max=200"`
	Description     *string          `json:"description" validate:"omitempty,max=5000"`
	DurationMinutes *int             `json:"durationMinutes" validate:"omitempty,min=1,max=1440"`
	Questions       *[]QuestionInput `json:"questions" validate:"omitempty,min=1,dive"`
}

type AnnouncementCreateRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required,max=10000"`
}

// ===== ATTEMPT DTOs =====

type StartAttemptRequest struct {
	ExamID string `json:"examId" validate:"required"`
}

type AnswerRequest struct {
	QuestionID string `json:"questionId" validate:"required"`
	Value      string `json:"value"`
}

// ===== STATS DTOs =====

type StudentStats struct {
	ExamsCompleted int     `json:"examsCompleted"`
	AverageScore   float64 `json:"averageScore"`
	TopScore       float64 `json:"topScore"`
}

type DashboardStats struct {
	TotalStudents int `json:"totalStudents"`
	TotalAdmins   int `json:"totalAdmins"`
	BannedUsers   int `json:"bannedUsers"`
	TotalExams    int `json:"totalExams"`
	TotalFolders  int `json:"totalFolders"`
	TotalResults  int `json:"totalResults"`
}
