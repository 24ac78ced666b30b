package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gizaedu/exam-service/internal/events"
	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/validator"
)

func TestCurationService_FolderLifecycle(t *testing.T) {
	env := newTestEnv(t)
	svc := env.curationService()
	ctx := context.Background()

	year, err := svc.CreateFolder(ctx, &models.FolderCreateRequest{Name: "  Year 1  "})
	if err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}
	if year.Name != "Year 1" || year.ParentID != nil {
		t.Errorf("CreateFolder() = %+v", year)
	}

	term, err := svc.CreateFolder(ctx, &models.FolderCreateRequest{Name: "Term 1", ParentID: &year.ID})
	if err != nil {
		t.Fatalf("CreateFolder(child) error = %v", err)
	}

	if _, err := svc.CreateFolder(ctx, &models.FolderCreateRequest{Name: "x", ParentID: strPtr("FOLDER-NOPE")}); !errors.Is(err, ErrParentFolderNotFound) {
		t.Errorf("CreateFolder(missing parent) error = %v", err)
	}

	renamed, err := svc.UpdateFolder(ctx, term.ID, &models.FolderUpdateRequest{Name: strPtr("Term One")})
	if err != nil || renamed.Name != "Term One" || renamed.ParentID == nil {
		t.Fatalf("UpdateFolder(rename) = %+v, %v", renamed, err)
	}

	moved, err := svc.UpdateFolder(ctx, term.ID, &models.FolderUpdateRequest{MoveToRoot: true})
	if err != nil || moved.ParentID != nil {
		t.Fatalf("UpdateFolder(root) = %+v, %v", moved, err)
	}
}

func TestCurationService_FolderCycleRejected(t *testing.T) {
	env := newTestEnv(t)
	svc := env.curationService()
	ctx := context.Background()

	a, _ := svc.CreateFolder(ctx, &models.FolderCreateRequest{Name: "A"})
	b, _ := svc.CreateFolder(ctx, &models.FolderCreateRequest{Name: "B", ParentID: &a.ID})
	c, _ := svc.CreateFolder(ctx, &models.FolderCreateRequest{Name: "C", ParentID: &b.ID})

	tests := []struct {
		name     string
		id       string
		parentID string
		want     error
	}{
		{"self", a.ID, a.ID, ErrFolderCycle},
		{"grandchild", a.ID, c.ID, ErrFolderCycle},
		{"child", b.ID, c.ID, ErrFolderCycle},
		{"sibling move", c.ID, a.ID, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateFolder(ctx, tt.id, &models.FolderUpdateRequest{ParentID: strPtr(tt.parentID)})
			if !errors.Is(err, tt.want) {
				t.Errorf("UpdateFolder() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCurationService_DeleteFolderOrphansExams(t *testing.T) {
	env := newTestEnv(t)
	svc := env.curationService()
	ctx := context.Background()

	folder, _ := svc.CreateFolder(ctx, &models.FolderCreateRequest{Name: "Cardio"})
	exam := sampleExam("EXAM-1")
	exam.FolderID = folder.ID
	env.addExam(t, exam)

	if err := svc.DeleteFolder(ctx, folder.ID, "admin-1"); err != nil {
		t.Fatalf("DeleteFolder() error = %v", err)
	}

	got, _ := env.repo.Exam().GetByID(ctx, "EXAM-1")
	if got == nil || got.FolderID != folder.ID {
		t.Errorf("exam should keep its folder reference, got %+v", got)
	}
	if evts := env.publisher.EventsOfType(events.FolderDeleted); len(evts) != 1 {
		t.Errorf("expected one folder.deleted event, got %d", len(evts))
	}
	if err := svc.DeleteFolder(ctx, folder.ID, "admin-1"); !errors.Is(err, ErrFolderNotFound) {
		t.Errorf("second DeleteFolder() error = %v", err)
	}
}

func TestCurationService_CreateExam(t *testing.T) {
	env := newTestEnv(t)
	svc := env.curationService()
	ctx := context.Background()

	req := &models.ExamCreateRequest{
		Title: "Anatomy",
		Questions: []models.QuestionInput{
			{Type: models.MultipleChoice},
			{Type: models.TrueFalse, CorrectAnswer: strPtr(models.AnswerFalse), Points: intPtr(3)},
			{Type: models.ExternalLink, ExternalURL: strPtr("https://forms.example.com/x")},
		},
	}
	exam, err := svc.CreateExam(ctx, req)
	if err != nil {
		t.Fatalf("CreateExam() error = %v", err)
	}
	if exam.FolderID != models.RootFolderID || exam.DurationMinutes != models.DefaultExamDurationMinutes {
		t.Errorf("defaults not applied: %+v", exam)
	}
	mc := exam.Questions[0]
	if len(mc.Options) != 2 || mc.CorrectAnswer != "Option A" || mc.Prompt != models.DefaultQuestionPrompt {
		t.Errorf("multiple choice defaults = %+v", mc)
	}
	if exam.Questions[1].Points != 3 || exam.TotalPoints() != 5 {
		t.Errorf("points = %d total = %d", exam.Questions[1].Points, exam.TotalPoints())
	}
}

func TestCurationService_CreateExamRejectsInvalid(t *testing.T) {
	env := newTestEnv(t)
	svc := env.curationService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  *models.ExamCreateRequest
		want error
	}{
		{
			name: "no questions",
			req:  &models.ExamCreateRequest{Title: "Empty"},
		},
		{
			name: "true false without answer",
			req: &models.ExamCreateRequest{Title: "TF", Questions: []models.QuestionInput{
				{Type: models.TrueFalse},
			}},
		},
		{
			name: "correct answer outside options",
			req: &models.ExamCreateRequest{Title: "MC", Questions: []models.QuestionInput{
				{Type: models.MultipleChoice, Options: []string{"x", "y"}, CorrectAnswer: strPtr("z")},
			}},
		},
		{
			name: "unknown folder",
			req: &models.ExamCreateRequest{Title: "F", FolderID: "FOLDER-X", Questions: []models.QuestionInput{
				{Type: models.Essay},
			}},
			want: ErrFolderNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateExam(ctx, tt.req)
			if tt.want != nil {
				if !errors.Is(err, tt.want) {
					t.Errorf("CreateExam() error = %v, want %v", err, tt.want)
				}
				return
			}
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Errorf("CreateExam() error = %v, want ValidationErrors", err)
			}
		})
	}

	exams, _ := env.repo.Exam().GetAll(ctx)
	if len(exams) != 0 {
		t.Errorf("invalid exams were stored: %d", len(exams))
	}
}

func TestCurationService_QuestionEditing(t *testing.T) {
	env := newTestEnv(t)
	svc := env.curationService()
	ctx := context.Background()
	env.addExam(t, sampleExam("EXAM-1"))

	exam, err := svc.AddQuestion(ctx, "EXAM-1", &models.QuestionInput{Type: models.Essay, Points: intPtr(4)})
	if err != nil {
		t.Fatalf("AddQuestion() error = %v", err)
	}
	if len(exam.Questions) != 4 || exam.Questions[3].Type != models.Essay {
		t.Fatalf("AddQuestion() = %+v", exam.Questions)
	}

	exam, err = svc.UpdateQuestion(ctx, "EXAM-1", "q1", &models.QuestionPatch{CorrectAnswer: strPtr("B")})
	if err != nil || exam.Questions[0].CorrectAnswer != "B" {
		t.Fatalf("UpdateQuestion() = %+v, %v", exam, err)
	}

	if _, err := svc.UpdateQuestion(ctx, "EXAM-1", "q1", &models.QuestionPatch{CorrectAnswer: strPtr("C")}); err == nil {
		t.Error("UpdateQuestion() accepted an answer outside the options")
	}
	stored, _ := env.repo.Exam().GetByID(ctx, "EXAM-1")
	if stored.Questions[0].CorrectAnswer != "B" {
		t.Errorf("rejected patch was written: %+v", stored.Questions[0])
	}

	if _, err := svc.UpdateQuestion(ctx, "EXAM-1", "missing", &models.QuestionPatch{}); !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("UpdateQuestion(missing) error = %v", err)
	}

	for _, id := range []string{"q1", "q2", "q3"} {
		if _, err := svc.RemoveQuestion(ctx, "EXAM-1", id); err != nil {
			t.Fatalf("RemoveQuestion(%s) error = %v", id, err)
		}
	}
	if _, err := svc.RemoveQuestion(ctx, "EXAM-1", exam.Questions[3].ID); !errors.Is(err, ErrLastQuestion) {
		t.Errorf("RemoveQuestion(last) error = %v, want ErrLastQuestion", err)
	}
}

func TestCurationService_UngradedQuestionsCarryNoKey(t *testing.T) {
	env := newTestEnv(t)
	svc := env.curationService()
	ctx := context.Background()
	env.addExam(t, sampleExam("EXAM-1"))

	tests := []struct {
		name  string
		input models.QuestionInput
	}{
		{"essay", models.QuestionInput{Type: models.Essay, Options: []string{"A", "B"}, CorrectAnswer: strPtr("A"), ExternalURL: strPtr("https://example.com")}},
		{"external link", models.QuestionInput{Type: models.ExternalLink, Options: []string{"A"}, CorrectAnswer: strPtr("A"), ExternalURL: strPtr("https://example.com/task")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exam, err := svc.AddQuestion(ctx, "EXAM-1", &tt.input)
			if err != nil {
				t.Fatalf("AddQuestion() error = %v", err)
			}
			q := exam.Questions[len(exam.Questions)-1]
			if q.Options != nil || q.CorrectAnswer != "" {
				t.Errorf("%s kept options %v and key %q", q.Type, q.Options, q.CorrectAnswer)
			}
			if tt.input.Type == models.Essay && q.ExternalURL != "" {
				t.Errorf("essay kept external url %q", q.ExternalURL)
			}
			if tt.input.Type == models.ExternalLink && q.ExternalURL != "https://example.com/task" {
				t.Errorf("external url = %q", q.ExternalURL)
			}
		})
	}

	exam, err := svc.UpdateQuestion(ctx, "EXAM-1", "q3", &models.QuestionPatch{Options: []string{"x"}, CorrectAnswer: strPtr("x")})
	if err != nil {
		t.Fatalf("UpdateQuestion() error = %v", err)
	}
	if q := exam.Questions[2]; q.Options != nil || q.CorrectAnswer != "" {
		t.Errorf("patched essay = %+v", q)
	}
}

func TestCurationService_UpdateExamKeepsQuestionIDs(t *testing.T) {
	env := newTestEnv(t)
	svc := env.curationService()
	ctx := context.Background()
	env.addExam(t, sampleExam("EXAM-1"))

	questions := []models.QuestionInput{
		{ID: "q2", Type: models.TrueFalse, Prompt: strPtr("Still true?"), CorrectAnswer: strPtr(models.AnswerTrue)},
		{ID: "q2", Type: models.Essay},
		{ID: "unknown", Type: models.Essay},
		{Type: models.MultipleChoice},
	}
	exam, err := svc.UpdateExam(ctx, "EXAM-1", &models.ExamUpdateRequest{Questions: &questions})
	if err != nil {
		t.Fatalf("UpdateExam() error = %v", err)
	}
	if len(exam.Questions) != 4 {
		t.Fatalf("questions = %d, want 4", len(exam.Questions))
	}
	if exam.Questions[0].ID != "q2" || exam.Questions[0].Prompt != "Still true?" {
		t.Errorf("first question = %+v, want id q2 kept", exam.Questions[0])
	}

	seen := map[string]bool{}
	for i, q := range exam.Questions {
		if seen[q.ID] {
			t.Errorf("duplicate question id %s", q.ID)
		}
		seen[q.ID] = true
		if i > 0 && !strings.HasPrefix(q.ID, QuestionIDPrefix+"-") {
			t.Errorf("question %d id = %s, want a fresh %s id", i, q.ID, QuestionIDPrefix)
		}
	}
}

func TestCurationService_StudentViewHidesAnswerKeys(t *testing.T) {
	env := newTestEnv(t)
	svc := env.curationService()
	ctx := context.Background()
	env.addExam(t, sampleExam("EXAM-1"))
	env.addExam(t, &models.Exam{ID: "EXAM-EMPTY", FolderID: models.RootFolderID, Title: "Draft", DurationMinutes: 10})

	exams, err := svc.ListExams(ctx, false)
	if err != nil {
		t.Fatalf("ListExams() error = %v", err)
	}
	if len(exams) != 1 {
		t.Fatalf("students should only see publishable exams, got %d", len(exams))
	}
	for _, q := range exams[0].Questions {
		if q.CorrectAnswer != "" {
			t.Errorf("answer key leaked for %s", q.ID)
		}
	}

	admin, _ := svc.GetExam(ctx, "EXAM-1", true)
	if admin.Questions[0].CorrectAnswer != "A" {
		t.Error("admin view lost the answer key")
	}
}

func TestCurationService_DeleteExam(t *testing.T) {
	env := newTestEnv(t)
	svc := env.curationService()
	ctx := context.Background()
	env.addExam(t, sampleExam("EXAM-1"))

	if err := svc.DeleteExam(ctx, "EXAM-1", "admin-1"); err != nil {
		t.Fatalf("DeleteExam() error = %v", err)
	}
	if _, err := svc.GetExam(ctx, "EXAM-1", true); !errors.Is(err, ErrExamNotFound) {
		t.Errorf("GetExam() after delete error = %v", err)
	}
	evts := env.publisher.EventsOfType(events.ExamDeleted)
	if len(evts) != 1 || evts[0].Data.(events.EntityDeletedData).ID != "EXAM-1" {
		t.Errorf("exam.deleted events = %+v", evts)
	}
}
