package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gizaedu/exam-service/internal/models"
)

func seedResults(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()
	env.addUser(t, &models.User{ID: "GIZA-S1", Email: "s1@example.com", FirstName: "Sara", LastName: "Adel"})
	env.addUser(t, &models.User{ID: "GIZA-S2", Email: "s2@example.com", IsBanned: true})
	env.addUser(t, &models.User{ID: "GIZA-A", Email: "a@example.com", Role: models.RoleAdmin})
	env.addExam(t, sampleExam("EXAM-1"))

	now := time.Now().UTC()
	for _, r := range []*models.ExamResult{
		{ID: "r1", StudentID: "GIZA-S1", ExamID: "EXAM-1", Score: 5, TotalPoints: 17, SubmittedAt: now},
		{ID: "r2", StudentID: "GIZA-S1", ExamID: "EXAM-1", Score: 7, TotalPoints: 17, SubmittedAt: now},
		{ID: "r3", StudentID: "GIZA-S2", ExamID: "EXAM-1", Score: 0, TotalPoints: 17, SubmittedAt: now},
	} {
		if err := env.repo.Result().Add(ctx, r); err != nil {
			t.Fatalf("Add(result) error = %v", err)
		}
	}
}

func TestResultService_StudentStats(t *testing.T) {
	env := newTestEnv(t)
	seedResults(t, env)
	svc := NewResultService(env.repo, env.logger)

	stats, err := svc.StudentStats(context.Background(), "GIZA-S1")
	if err != nil {
		t.Fatalf("StudentStats() error = %v", err)
	}
	// 5/17 = 29.41%, 7/17 = 41.18%
	if stats.ExamsCompleted != 2 || stats.AverageScore != 35.3 || stats.TopScore != 41.2 {
		t.Errorf("StudentStats() = %+v", stats)
	}

	empty, err := svc.StudentStats(context.Background(), "nobody")
	if err != nil || empty.ExamsCompleted != 0 || empty.AverageScore != 0 {
		t.Errorf("StudentStats(nobody) = %+v, %v", empty, err)
	}
}

func TestResultService_ListResultsJoinsNames(t *testing.T) {
	env := newTestEnv(t)
	seedResults(t, env)
	svc := NewResultService(env.repo, env.logger)

	list, err := svc.ListResults(context.Background())
	if err != nil || len(list) != 3 {
		t.Fatalf("ListResults() = %v, %v", list, err)
	}
	if list[0].StudentName != "Sara Adel" || list[0].ExamTitle != "Physiology Midterm" {
		t.Errorf("ListResults()[0] = %+v", list[0])
	}

	mine, _ := svc.StudentResults(context.Background(), "GIZA-S1")
	if len(mine) != 2 || mine[1].Percentage != 41.2 {
		t.Errorf("StudentResults() = %+v", mine)
	}
}

func TestReportService_ExportResults(t *testing.T) {
	env := newTestEnv(t)
	seedResults(t, env)
	svc := NewReportService(NewResultService(env.repo, env.logger), env.logger)

	data, err := svc.ExportResults(context.Background())
	if err != nil {
		t.Fatalf("ExportResults() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook is not readable: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(resultsSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want header plus 3", len(rows))
	}
	if rows[0][0] != "Result ID" || rows[1][1] != "Sara Adel" {
		t.Errorf("unexpected rows %v", rows[:2])
	}
}

func TestDashboardService_Stats(t *testing.T) {
	env := newTestEnv(t)
	seedResults(t, env)

	stats, err := NewDashboardService(env.repo, env.logger).Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	want := models.DashboardStats{TotalStudents: 2, TotalAdmins: 1, BannedUsers: 1, TotalExams: 1, TotalResults: 3}
	if *stats != want {
		t.Errorf("Stats() = %+v, want %+v", *stats, want)
	}
}

func TestAnnouncementService(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAnnouncementService(env.repo, env.logger, env.validator)
	ctx := context.Background()

	first, err := svc.Create(ctx, &models.AnnouncementCreateRequest{Title: "Welcome", Content: "Term starts Sunday"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	time.Sleep(time.Millisecond)
	second, _ := svc.Create(ctx, &models.AnnouncementCreateRequest{Title: "Exam", Content: "Midterm next week"})

	list, err := svc.List(ctx)
	if err != nil || len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("List() = %+v, %v; want newest first", list, err)
	}

	if _, err := svc.Create(ctx, &models.AnnouncementCreateRequest{Title: "No content"}); err == nil {
		t.Error("Create() accepted an empty content")
	}

	if err := svc.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, first.ID); !errors.Is(err, ErrAnnouncementNotFound) {
		t.Errorf("Delete() again error = %v", err)
	}
}
