package services

import (
	"context"
	"fmt"

	"github.com/prepworks/scoring-service/internal/models"
	"github.com/prepworks/scoring-service/internal/utils"
	"github.com/xuri/excelize/v2"
)

// ExportService renders a user's test history as a spreadsheet.
type ExportService interface {
	ExportHistoryToExcel(ctx context.Context, userID string) ([]byte, error)
}

type exportService struct {
	history HistoryService
	logger  utils.Logger
}

func NewExportService(history HistoryService, logger utils.Logger) ExportService {
	return &exportService{
		history: history,
		logger:  logger,
	}
}

var historyExportHeaders = []string{
	"Completed At", "Test Type", "Practice Set", "Test Name",
	"Correct", "Total", "Percentage", "Time Spent (s)", "Scaled Scores",
}

func (s *exportService) ExportHistoryToExcel(ctx context.Context, userID string) ([]byte, error) {
	s.logger.Info("Exporting test history", "user_id", userID)

	history, err := s.history.GetHistory(ctx, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Test History"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, header := range historyExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, entry := range history {
		values := []interface{}{
			entry.CompletedAt.Format("2006-01-02 15:04:05"),
			entry.TestType,
			entry.PracticeSet,
			entry.TestName,
			entry.Results.CorrectCount,
			entry.Results.TotalQuestions,
			entry.Results.Percentage,
			entry.Results.TimeSpent,
			scaledScoresCell(entry),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write spreadsheet: %w", err)
	}

	return buf.Bytes(), nil
}

func scaledScoresCell(entry models.TestHistoryEntry) string {
	if len(entry.ScaledScores) == 0 {
		return ""
	}
	return string(entry.ScaledScores)
}
