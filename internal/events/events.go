// Package events publishes domain events of the exam service.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	eventSource  = "exam-service"
	eventVersion = "1.0"
)

// Event types
const (
	ResultSubmitted = "result.submitted"
	ExamDeleted     = "exam.deleted"
	FolderDeleted   = "folder.deleted"
	UserBanToggled  = "user.ban_toggled"
	UserRoleToggled = "user.role_toggled"
	BackupImported  = "backup.imported"
)

type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

func NewEvent(eventType string, data any) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher delivers events to the configured broker
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

type ResultSubmittedData struct {
	ResultID    string  `json:"resultId"`
	ExamID      string  `json:"examId"`
	StudentID   string  `json:"studentId"`
	Score       int     `json:"score"`
	TotalPoints int     `json:"totalPoints"`
	Percentage  float64 `json:"percentage"`
	Trigger     string  `json:"trigger"`
}

type EntityDeletedData struct {
	ID      string `json:"id"`
	ActorID string `json:"actorId"`
}

type UserToggledData struct {
	UserID   string `json:"userId"`
	ActorID  string `json:"actorId"`
	IsBanned bool   `json:"isBanned"`
	Role     string `json:"role"`
}

type BackupImportedData struct {
	ActorID       string `json:"actorId"`
	Users         int    `json:"users"`
	Exams         int    `json:"exams"`
	Folders       int    `json:"folders"`
	Announcements int    `json:"announcements"`
}
