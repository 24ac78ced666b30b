package models

import "time"

// ExamResult is the immutable record of one submitted attempt.
type ExamResult struct {
	ID             string            `json:"id"`
	StudentID      string            `json:"studentId"`
	ExamID         string            `json:"examId"`
	Score          int               `json:"score"`
	TotalPoints    int               `json:"totalPoints"`
	CorrectCount   int               `json:"correctCount"`
	IncorrectCount int               `json:"incorrectCount"`
	Answers        map[string]string `json:"answers"`
	SubmittedAt    time.Time         `json:"submittedAt"`
}

// Percentage returns the score as a percentage of total points.
func (r *ExamResult) Percentage() float64 {
	if r.TotalPoints == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.TotalPoints) * 100
}

type Announcement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// BackupVersion tags every exported database document.
const BackupVersion = "GizaEdu-3.0"

// BackupDocument is the full-database export. Users, Exams and Folders are
// required on import; Announcements is optional.
type BackupDocument struct {
	Users         []User         `json:"users"`
	Exams         []Exam         `json:"exams"`
	Folders       []Folder       `json:"folders"`
	Announcements []Announcement `json:"announcements,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
	Version       string         `json:"version"`
}
