package services

import (
	"bytes"
	"fmt"
	"log"

	"github.com/xuri/excelize/v2"

	"github.com/EoghannIrving/echo-journal/internal/models"
)

// ExportService builds the mood log workbook: one row per observation
// with both the raw and normalized values, plus a summary sheet carrying
// the current snapshot.
type ExportService struct {
	moodLog *MoodLogService
}

// NewExportService creates a new export service
func NewExportService(moodLog *MoodLogService) *ExportService {
	return &ExportService{moodLog: moodLog}
}

var observationHeader = []string{
	"Date", "Recorded At", "Mood", "Mood (normalized)", "Energy", "Energy (normalized)",
}

// MoodWorkbook renders the full observation log as an xlsx workbook.
// Returns an error only when the log is disabled or unreadable; an empty
// log still exports a workbook with just the header row.
func (s *ExportService) MoodWorkbook() ([]byte, error) {
	if !s.moodLog.Enabled() {
		return nil, fmt.Errorf("mood tracking is not configured")
	}
	observations, available := s.moodLog.Observations()
	if !available {
		return nil, fmt.Errorf("mood log is not readable")
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Observations"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range observationHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to place header: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, o := range observations {
		row := i + 2

		normalizedMood := ""
		if mood, ok := models.NormalizeMood(o.Mood); ok {
			normalizedMood = string(mood)
		}
		normalizedEnergy := ""
		if value, ok := models.NormalizeEnergy(o.Energy); ok {
			if category, catOK := models.EnergyCategoryForValue(value); catOK {
				normalizedEnergy = string(category)
			}
		}

		values := []any{o.Date, o.RecordedAt, o.Mood, normalizedMood, o.Energy, normalizedEnergy}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("failed to place row %d: %w", row, err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "F", 20); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}

	if err := s.writeSummarySheet(f); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	log.Printf("📤 [EXPORT] Built mood workbook with %d observations", len(observations))
	if m := GetMetrics(); m != nil {
		m.RecordExport()
	}
	return buf.Bytes(), nil
}

// writeSummarySheet adds the snapshot view to the workbook.
func (s *ExportService) writeSummarySheet(f *excelize.File) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	snapshot := s.moodLog.GetSnapshot()
	rows := [][]any{
		{"Mood", string(snapshot.Mood)},
		{"Energy", string(snapshot.Energy)},
		{"Last entry", snapshot.LastEntryDate},
		{"Has today's entry", snapshot.HasTodayEntry},
		{"Available", snapshot.Available},
	}

	for i, pair := range rows {
		for col, value := range pair {
			cell, err := excelize.CoordinatesToCellName(col+1, i+1)
			if err != nil {
				return fmt.Errorf("failed to place summary row: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write summary row: %w", err)
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "B", 24); err != nil {
		return fmt.Errorf("failed to size summary columns: %w", err)
	}
	return nil
}
