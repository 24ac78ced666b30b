package models

import "time"

// RootFolderID is the folder id of exams that live at the top of the library.
const RootFolderID = "root"

const DefaultExamDurationMinutes = 60

type Exam struct {
	ID              string     `json:"id"`
	FolderID        string     `json:"folderId"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Questions       []Question `json:"questions"`
	DurationMinutes int        `json:"durationMinutes"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// IsPublishable reports whether students may take the exam.
func (e *Exam) IsPublishable() bool {
	return len(e.Questions) > 0
}

// DurationSeconds is the countdown a new attempt starts with.
func (e *Exam) DurationSeconds() int {
	return e.DurationMinutes * 60
}

// TotalPoints sums the points of every question, including manually graded ones.
func (e *Exam) TotalPoints() int {
	total := 0
	for _, q := range e.Questions {
		total += q.Points
	}
	return total
}

// AutoGradableCount is the number of multiple-choice and true/false questions.
func (e *Exam) AutoGradableCount() int {
	n := 0
	for i := range e.Questions {
		if e.Questions[i].IsAutoGradable() {
			n++
		}
	}
	return n
}

// QuestionIndex returns the position of the question with the given id, or -1.
func (e *Exam) QuestionIndex(id string) int {
	for i := range e.Questions {
		if e.Questions[i].ID == id {
			return i
		}
	}
	return -1
}

// ForStudent returns a copy of the exam with every answer key removed.
func (e *Exam) ForStudent() *Exam {
	cp := *e
	cp.Questions = make([]Question, len(e.Questions))
	for i, q := range e.Questions {
		cp.Questions[i] = q.WithoutAnswerKey()
	}
	return &cp
}

// ExamUpdate carries a partial exam change. Nil fields are left untouched.
type ExamUpdate struct {
	FolderID        *string     `json:"folderId,omitempty"`
	Title           *string     `json:"title,omitempty"`
	Description     *string     `json:"description,omitempty"`
	DurationMinutes *int        `json:"durationMinutes,omitempty"`
	Questions       *[]Question `json:"questions,omitempty"`
}

func (up ExamUpdate) Apply(e *Exam) {
	if up.FolderID != nil {
		e.FolderID = *up.FolderID
	}
	if up.Title != nil {
		e.Title = *up.Title
	}
	if up.Description != nil {
		e.Description = *up.Description
	}
	if up.DurationMinutes != nil {
		e.DurationMinutes = *up.DurationMinutes
	}
	if up.Questions != nil {
		e.Questions = append([]Question(nil), (*up.Questions)...)
	}
}

// Folder groups exams and other folders. A nil ParentID places it at the root.
type Folder struct {
	ID       string  `json:"id"`
	ParentID *string `json:"parentId"`
	Name     string  `json:"name"`
}

func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// FolderUpdate carries a partial folder change. MoveToRoot clears the parent
// and takes precedence over ParentID.
type FolderUpdate struct {
	Name       *string `json:"name,omitempty"`
	ParentID   *string `json:"parentId,omitempty"`
	MoveToRoot bool    `json:"moveToRoot,omitempty"`
}

func (up FolderUpdate) Apply(f *Folder) {
	if up.Name != nil {
		f.Name = *up.Name
	}
	if up.MoveToRoot {
		f.ParentID = nil
	} else if up.ParentID != nil {
		parent := *up.ParentID
		f.ParentID = &parent
	}
}
