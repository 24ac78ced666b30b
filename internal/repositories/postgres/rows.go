package postgres

import (
	"time"

	"gorm.io/datatypes"

	"github.com/gizaedu/exam-service/internal/models"
)

// Remote tables use snake_case columns; rows convert to and from the internal
// camelCase entities so nothing above this package sees the remote schema.

type profileRow struct {
	ID               string    `gorm:"column:id;primaryKey;size:64"`
	Email            string    `gorm:"column:email;uniqueIndex;not null;size:255"`
	Role             string    `gorm:"column:role;not null;size:16;default:STUDENT"`
	FirstName        string    `gorm:"column:first_name;size:100"`
	LastName         string    `gorm:"column:last_name;size:100"`
	UniversityName   string    `gorm:"column:university_name;size:200"`
	UniversityID     string    `gorm:"column:university_id;size:100"`
	PhoneNumber      string    `gorm:"column:phone_number;size:50"`
	AcademicYear     string    `gorm:"column:academic_year;size:50"`
	ProfilePic       string    `gorm:"column:profile_pic"`
	IsBanned         bool      `gorm:"column:is_banned;not null;default:false"`
	TwoFactorEnabled bool      `gorm:"column:two_factor_enabled;not null;default:false"`
	Language         string    `gorm:"column:language;size:8"`
	Theme            string    `gorm:"column:theme;size:8"`
	CreatedAt        time.Time `gorm:"column:created_at"`
}

func (profileRow) TableName() string { return "profiles" }

type examRow struct {
	ID              string                               `gorm:"column:id;primaryKey;size:64"`
	FolderID        *string                              `gorm:"column:folder_id;index;size:64"`
	Title           string                               `gorm:"column:title;not null;size:200"`
	Description     string                               `gorm:"column:description"`
	Questions       datatypes.JSONSlice[models.Question] `gorm:"column:questions"`
	DurationMinutes int                                  `gorm:"column:duration_minutes;not null"`
	CreatedAt       time.Time                            `gorm:"column:created_at"`
}

func (examRow) TableName() string { return "exams" }

type folderRow struct {
	ID        string    `gorm:"column:id;primaryKey;size:64"`
	ParentID  *string   `gorm:"column:parent_id;index;size:64"`
	Name      string    `gorm:"column:name;not null;size:200"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (folderRow) TableName() string { return "folders" }

type resultRow struct {
	ID             string                                `gorm:"column:id;primaryKey;size:64"`
	StudentID      string                                `gorm:"column:student_id;index;not null;size:64"`
	ExamID         string                                `gorm:"column:exam_id;index;not null;size:64"`
	Score          int                                   `gorm:"column:score"`
	TotalPoints    int                                   `gorm:"column:total_points"`
	CorrectCount   int                                   `gorm:"column:correct_count"`
	IncorrectCount int                                   `gorm:"column:incorrect_count"`
	Answers        datatypes.JSONType[map[string]string] `gorm:"column:answers"`
	SubmittedAt    time.Time                             `gorm:"column:submitted_at"`
}

func (resultRow) TableName() string { return "results" }

type announcementRow struct {
	ID        string    `gorm:"column:id;primaryKey;size:64"`
	Title     string    `gorm:"column:title;not null;size:200"`
	Content   string    `gorm:"column:content"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (announcementRow) TableName() string { return "announcements" }

// ===== CONVERSION METHODS =====

func profileFromModel(u *models.User) *profileRow {
	return &profileRow{
		ID:               u.ID,
		Email:            models.NormalizeEmail(u.Email),
		Role:             string(u.Role),
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		UniversityName:   u.UniversityName,
		UniversityID:     u.UniversityID,
		PhoneNumber:      u.PhoneNumber,
		AcademicYear:     u.AcademicYear,
		ProfilePic:       u.ProfilePic,
		IsBanned:         u.IsBanned,
		TwoFactorEnabled: u.TwoFactorEnabled,
		Language:         string(u.Language),
		Theme:            string(u.Theme),
		CreatedAt:        u.CreatedAt,
	}
}

// toModel converts a profile; credentials live in the identity service so
// PasswordHash stays empty.
func (r *profileRow) toModel() *models.User {
	role := models.UserRole(r.Role)
	if role != models.RoleAdmin {
		role = models.RoleStudent
	}
	lang := models.Language(r.Language)
	if lang == "" {
		lang = models.LanguageEnglish
	}
	theme := models.Theme(r.Theme)
	if theme == "" {
		theme = models.ThemeLight
	}
	return &models.User{
		ID:               r.ID,
		Role:             role,
		Email:            r.Email,
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		UniversityName:   r.UniversityName,
		UniversityID:     r.UniversityID,
		PhoneNumber:      r.PhoneNumber,
		AcademicYear:     r.AcademicYear,
		ProfilePic:       r.ProfilePic,
		IsBanned:         r.IsBanned,
		TwoFactorEnabled: r.TwoFactorEnabled,
		Language:         lang,
		Theme:            theme,
		CreatedAt:        r.CreatedAt,
	}
}

// profileUpdateColumns maps the non-nil fields of an update to column names
func profileUpdateColumns(up models.UserUpdate) map[string]interface{} {
	cols := make(map[string]interface{})
	if up.Role != nil {
		cols["role"] = string(*up.Role)
	}
	if up.FirstName != nil {
		cols["first_name"] = *up.FirstName
	}
	if up.LastName != nil {
		cols["last_name"] = *up.LastName
	}
	if up.UniversityName != nil {
		cols["university_name"] = *up.UniversityName
	}
	if up.UniversityID != nil {
		cols["university_id"] = *up.UniversityID
	}
	if up.PhoneNumber != nil {
		cols["phone_number"] = *up.PhoneNumber
	}
	if up.AcademicYear != nil {
		cols["academic_year"] = *up.AcademicYear
	}
	if up.ProfilePic != nil {
		cols["profile_pic"] = *up.ProfilePic
	}
	if up.IsBanned != nil {
		cols["is_banned"] = *up.IsBanned
	}
	if up.TwoFactorEnabled != nil {
		cols["two_factor_enabled"] = *up.TwoFactorEnabled
	}
	if up.Language != nil {
		cols["language"] = string(*up.Language)
	}
	if up.Theme != nil {
		cols["theme"] = string(*up.Theme)
	}
	return cols
}

// folderColumn stores the root sentinel as NULL
func folderColumn(folderID string) *string {
	if folderID == "" || folderID == models.RootFolderID {
		return nil
	}
	id := folderID
	return &id
}

func examFromModel(e *models.Exam) *examRow {
	questions := e.Questions
	if questions == nil {
		questions = []models.Question{}
	}
	return &examRow{
		ID:              e.ID,
		FolderID:        folderColumn(e.FolderID),
		Title:           e.Title,
		Description:     e.Description,
		Questions:       datatypes.NewJSONSlice(questions),
		DurationMinutes: e.DurationMinutes,
		CreatedAt:       e.CreatedAt,
	}
}

func (r *examRow) toModel() *models.Exam {
	folderID := models.RootFolderID
	if r.FolderID != nil && *r.FolderID != "" {
		folderID = *r.FolderID
	}
	questions := []models.Question(r.Questions)
	if questions == nil {
		questions = []models.Question{}
	}
	return &models.Exam{
		ID:              r.ID,
		FolderID:        folderID,
		Title:           r.Title,
		Description:     r.Description,
		Questions:       questions,
		DurationMinutes: r.DurationMinutes,
		CreatedAt:       r.CreatedAt,
	}
}

func examUpdateColumns(up models.ExamUpdate) map[string]interface{} {
	cols := make(map[string]interface{})
	if up.FolderID != nil {
		cols["folder_id"] = folderColumn(*up.FolderID)
	}
	if up.Title != nil {
		cols["title"] = *up.Title
	}
	if up.Description != nil {
		cols["description"] = *up.Description
	}
	if up.DurationMinutes != nil {
		cols["duration_minutes"] = *up.DurationMinutes
	}
	if up.Questions != nil {
		cols["questions"] = datatypes.NewJSONSlice(*up.Questions)
	}
	return cols
}

func folderFromModel(f *models.Folder) *folderRow {
	return &folderRow{ID: f.ID, ParentID: f.ParentID, Name: f.Name}
}

func (r *folderRow) toModel() *models.Folder {
	return &models.Folder{ID: r.ID, ParentID: r.ParentID, Name: r.Name}
}

func folderUpdateColumns(up models.FolderUpdate) map[string]interface{} {
	cols := make(map[string]interface{})
	if up.Name != nil {
		cols["name"] = *up.Name
	}
	if up.MoveToRoot {
		cols["parent_id"] = nil
	} else if up.ParentID != nil {
		cols["parent_id"] = *up.ParentID
	}
	return cols
}

func resultFromModel(r *models.ExamResult) *resultRow {
	answers := r.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	return &resultRow{
		ID:             r.ID,
		StudentID:      r.StudentID,
		ExamID:         r.ExamID,
		Score:          r.Score,
		TotalPoints:    r.TotalPoints,
		CorrectCount:   r.CorrectCount,
		IncorrectCount: r.IncorrectCount,
		Answers:        datatypes.NewJSONType(answers),
		SubmittedAt:    r.SubmittedAt,
	}
}

func (r *resultRow) toModel() *models.ExamResult {
	answers := r.Answers.Data()
	if answers == nil {
		answers = map[string]string{}
	}
	return &models.ExamResult{
		ID:             r.ID,
		StudentID:      r.StudentID,
		ExamID:         r.ExamID,
		Score:          r.Score,
		TotalPoints:    r.TotalPoints,
		CorrectCount:   r.CorrectCount,
		IncorrectCount: r.IncorrectCount,
		Answers:        answers,
		SubmittedAt:    r.SubmittedAt,
	}
}

func announcementFromModel(a *models.Announcement) *announcementRow {
	return &announcementRow{ID: a.ID, Title: a.Title, Content: a.Content, CreatedAt: a.CreatedAt}
}

func (r *announcementRow) toModel() *models.Announcement {
	return &models.Announcement{ID: r.ID, Title: r.Title, Content: r.Content, CreatedAt: r.CreatedAt}
}
