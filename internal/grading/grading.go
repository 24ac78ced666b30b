// Package grading scores a submitted answer set against an exam definition.
package grading

import (
	"time"

	"github.com/gizaedu/exam-service/internal/models"
)

// Outcome is the tally of one scoring run
type Outcome struct {
	Score          int `json:"score"`
	TotalPoints    int `json:"totalPoints"`
	CorrectCount   int `json:"correctCount"`
	IncorrectCount int `json:"incorrectCount"`
}

// Score grades answers against exam. Every question adds its points to
// TotalPoints; only multiple-choice and true/false questions are compared,
// by exact string equality, and counted as correct or incorrect. Essay and
// external-link questions are left ungraded.
func Score(exam *models.Exam, answers map[string]string) Outcome {
	var out Outcome
	if exam == nil {
		return out
	}

	for i := range exam.Questions {
		q := &exam.Questions[i]
		out.TotalPoints += q.Points

		if !q.IsAutoGradable() {
			continue
		}

		if answer, ok := answers[q.ID]; ok && answer == q.CorrectAnswer {
			out.Score += q.Points
			out.CorrectCount++
		} else {
			out.IncorrectCount++
		}
	}

	return out
}

// NewResult builds the immutable result record of one attempt. The answer
// map is copied so later edits by the caller cannot leak into the record.
func NewResult(id, studentID string, exam *models.Exam, answers map[string]string, submittedAt time.Time) *models.ExamResult {
	frozen := make(map[string]string, len(answers))
	for k, v := range answers {
		frozen[k] = v
	}

	out := Score(exam, frozen)
	return &models.ExamResult{
		ID:             id,
		StudentID:      studentID,
		ExamID:         exam.ID,
		Score:          out.Score,
		TotalPoints:    out.TotalPoints,
		CorrectCount:   out.CorrectCount,
		IncorrectCount: out.IncorrectCount,
		Answers:        frozen,
		SubmittedAt:    submittedAt.UTC(),
	}
}
