package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

const resultsSheet = "Results"

var resultColumns = []string{
	"Result ID", "Student", "Email", "Exam", "Score", "Total Points",
	"Percentage", "Correct", "Incorrect", "Submitted At",
}

type reportService struct {
	results ResultService
	logger  *slog.Logger
}

func NewReportService(results ResultService, logger *slog.Logger) ReportService {
	return &reportService{
		results: results,
		logger:  logger,
	}
}

func (s *reportService) ExportResults(ctx context.Context) ([]byte, error) {
	summaries, err := s.results.ListResults(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.WarnContext(ctx, "Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(resultColumns))
	for i, c := range resultColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range summaries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			r.ID,
			r.StudentName,
			r.StudentEmail,
			r.ExamTitle,
			r.Score,
			r.TotalPoints,
			r.Percentage,
			r.CorrectCount,
			r.IncorrectCount,
			r.SubmittedAt.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write result row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.InfoContext(ctx, "Results exported", "rows", len(summaries))
	return buf.Bytes(), nil
}
