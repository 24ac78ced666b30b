package services

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/gizaedu/exam-service/internal/events"
	"github.com/gizaedu/exam-service/internal/models"
)

// ID prefixes of generated entity identifiers
const (
	UserIDPrefix         = "GIZA"
	PrivilegedIDPrefix   = "GIZA-MASTER"
	FolderIDPrefix       = "FOLDER"
	ExamIDPrefix         = "EXAM"
	QuestionIDPrefix     = "Q"
	AnnouncementIDPrefix = "ANN"
)

// newID returns prefix-XXXXXXXXX with n uppercase characters taken from a uuid
func newID(prefix string, n int) string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	if n > len(raw) {
		n = len(raw)
	}
	return prefix + "-" + raw[:n]
}

// PrivilegedSet is the configured allowlist of privileged email addresses
type PrivilegedSet map[string]struct{}

func NewPrivilegedSet(emails []string) PrivilegedSet {
	set := make(PrivilegedSet, len(emails))
	for _, e := range emails {
		if e = models.NormalizeEmail(e); e != "" {
			set[e] = struct{}{}
		}
	}
	return set
}

func (p PrivilegedSet) Contains(email string) bool {
	_, ok := p[models.NormalizeEmail(email)]
	return ok
}

// publishEvent sends an event and only logs a failure
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, eventType string, data any) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "event_type", eventType, "error", err)
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
