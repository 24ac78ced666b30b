package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gizaedu/exam-service/internal/events"
	"github.com/gizaedu/exam-service/internal/examsession"
	"github.com/gizaedu/exam-service/internal/models"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func resultsByTrigger(t *testing.T, reg *prometheus.Registry, trigger string) float64 {
	t.Helper()
	return counterValue(t, reg, "exam_results_submitted_total", "trigger", trigger)
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestAttemptService_ManualFlow(t *testing.T) {
	env := newTestEnv(t)
	env.addExam(t, sampleExam("EXAM-1"))
	svc := env.attemptService(t, &tickerSource{})
	ctx := context.Background()

	view, err := svc.Start(ctx, "student-1", "EXAM-1")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if view.Resumed || view.Index != 0 || view.RemainingSeconds != 60 || view.QuestionCount != 3 {
		t.Fatalf("Start() = %+v", view)
	}
	if view.Question == nil || view.Question.CorrectAnswer != "" {
		t.Errorf("current question should be served without its answer key: %+v", view.Question)
	}

	id := view.AttemptID
	if _, err := svc.Answer(ctx, id, "student-1", &models.AnswerRequest{QuestionID: "q1", Value: "A"}); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if view, _ = svc.Next(ctx, id, "student-1"); view.Index != 1 {
		t.Errorf("Next() index = %d", view.Index)
	}
	if _, err := svc.Answer(ctx, id, "student-1", &models.AnswerRequest{QuestionID: "q2", Value: "False"}); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if view, _ = svc.Previous(ctx, id, "student-1"); view.Index != 0 {
		t.Errorf("Previous() index = %d", view.Index)
	}

	result, err := svc.Submit(ctx, id, "student-1")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.Score != 5 || result.TotalPoints != 17 || result.CorrectCount != 1 || result.IncorrectCount != 1 {
		t.Errorf("Submit() = %+v", result)
	}

	again, err := svc.Submit(ctx, id, "student-1")
	if err != nil || again.ID != result.ID {
		t.Errorf("second Submit() = %+v, %v", again, err)
	}
	stored, _ := env.repo.Result().GetByStudent(ctx, "student-1")
	if len(stored) != 1 {
		t.Errorf("persisted %d results, want 1", len(stored))
	}

	evts := env.publisher.EventsOfType(events.ResultSubmitted)
	if len(evts) != 1 || evts[0].Data.(events.ResultSubmittedData).Trigger != string(examsession.TriggerManual) {
		t.Errorf("result.submitted events = %+v", evts)
	}
	if got := resultsByTrigger(t, env.metrics.Registry(), "manual"); got != 1 {
		t.Errorf("manual results metric = %v, want 1", got)
	}

	if _, err := svc.Answer(ctx, id, "student-1", &models.AnswerRequest{QuestionID: "q1", Value: "B"}); !errors.Is(err, ErrAttemptNotActive) {
		t.Errorf("Answer() after submit error = %v, want ErrAttemptNotActive", err)
	}
}

func TestAttemptService_Timeout(t *testing.T) {
	env := newTestEnv(t)
	env.addExam(t, sampleExam("EXAM-1"))
	tickers := &tickerSource{}
	svc := env.attemptService(t, tickers)
	ctx := context.Background()

	view, err := svc.Start(ctx, "student-1", "EXAM-1")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := svc.Answer(ctx, view.AttemptID, "student-1", &models.AnswerRequest{QuestionID: "q2", Value: "True"}); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	ticker := tickers.tickers[0]
	for i := 0; i < 60; i++ {
		ticker.ch <- time.Now()
	}

	waitFor(t, func() bool { return len(env.publisher.EventsOfType(events.ResultSubmitted)) == 1 })

	got, err := svc.Get(ctx, view.AttemptID, "student-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != examsession.StatusFinished || got.Result == nil || got.Result.Score != 2 {
		t.Errorf("Get() after timeout = %+v", got)
	}
	if n := resultsByTrigger(t, env.metrics.Registry(), "timeout"); n != 1 {
		t.Errorf("timeout results metric = %v, want 1", n)
	}
	if svc.ActiveSessions() != 0 {
		t.Errorf("ActiveSessions() = %d, want 0", svc.ActiveSessions())
	}
}

func TestAttemptService_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.addExam(t, sampleExam("EXAM-1"))
	env.addExam(t, &models.Exam{ID: "EXAM-EMPTY", FolderID: models.RootFolderID, Title: "Draft", DurationMinutes: 5})
	svc := env.attemptService(t, &tickerSource{})
	ctx := context.Background()

	if _, err := svc.Start(ctx, "s1", "EXAM-NOPE"); !errors.Is(err, ErrExamNotFound) {
		t.Errorf("Start(missing) error = %v", err)
	}
	if _, err := svc.Start(ctx, "s1", "EXAM-EMPTY"); !errors.Is(err, ErrExamNotAvailable) {
		t.Errorf("Start(empty) error = %v", err)
	}

	view, err := svc.Start(ctx, "s1", "EXAM-1")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	resumed, err := svc.Start(ctx, "s1", "EXAM-1")
	if err != nil || !resumed.Resumed || resumed.AttemptID != view.AttemptID {
		t.Errorf("Start() again = %+v, %v; want resumed attempt", resumed, err)
	}

	if _, err := svc.Get(ctx, view.AttemptID, "s2"); !errors.Is(err, ErrAttemptAccessDenied) {
		t.Errorf("Get(other student) error = %v", err)
	}
	if _, err := svc.Get(ctx, "missing", "s1"); !errors.Is(err, ErrAttemptNotFound) {
		t.Errorf("Get(missing) error = %v", err)
	}
	if _, err := svc.Answer(ctx, view.AttemptID, "s1", &models.AnswerRequest{QuestionID: "zz", Value: "x"}); !errors.Is(err, ErrUnknownQuestion) {
		t.Errorf("Answer(unknown question) error = %v", err)
	}

	if err := svc.Cancel(ctx, view.AttemptID, "s1"); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if _, err := svc.Submit(ctx, view.AttemptID, "s1"); !errors.Is(err, ErrAttemptNotActive) {
		t.Errorf("Submit() after cancel error = %v", err)
	}
	results, _ := env.repo.Result().GetAll(ctx)
	if len(results) != 0 {
		t.Errorf("cancelled attempt stored %d results", len(results))
	}
}
