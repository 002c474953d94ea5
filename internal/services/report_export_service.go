package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/eduboost-lms/analytics-service/internal/events"
)

// ReportExportService renders the admin analytics snapshot as an xlsx
// workbook, one sheet per aggregate.
type ReportExportService interface {
	ExportAnalyticsWorkbook(ctx context.Context, requestedBy string) ([]byte, error)
}

type reportExportService struct {
	analytics AnalyticsService
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewReportExportService(analytics AnalyticsService, publisher events.EventPublisher, logger *slog.Logger) ReportExportService {
	return &reportExportService{
		analytics: analytics,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *reportExportService) ExportAnalyticsWorkbook(ctx context.Context, requestedBy string) ([]byte, error) {
	analytics, err := s.analytics.GetAdminAnalytics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load analytics for export: %w", err)
	}
	if reportIsEmpty(analytics) {
		return nil, ErrReportEmpty
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := s.writeWorkbook(f, analytics); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	data := buf.Bytes()

	if s.publisher != nil {
		event := events.NewReportExportedEvent(requestedBy, "xlsx", len(data))
		if err := s.publisher.PublishAnalyticsEvent(ctx, event); err != nil {
			s.logger.Warn("Failed to publish report exported event", "error", err)
		}
	}

	return data, nil
}

// reportIsEmpty reports whether the snapshot carries any rows worth
// exporting. The trend skeleton alone does not count: it is always five
// months, zero-filled when there is no data behind it.
func reportIsEmpty(analytics *AdminAnalytics) bool {
	return len(analytics.AssessmentCompletion) == 0 &&
		len(analytics.AttendanceLogs) == 0 &&
		len(analytics.RepeatAnalysis) == 0 &&
		len(analytics.StudentProgressSnapshot) == 0 &&
		analytics.RiskDistribution == (RiskDistribution{})
}

func (s *reportExportService) writeWorkbook(f *excelize.File, analytics *AdminAnalytics) error {
	if err := s.writeTrendSheet(f, analytics); err != nil {
		return err
	}
	if err := s.writeCompletionSheet(f, analytics); err != nil {
		return err
	}
	if err := s.writeAttendanceSheet(f, analytics); err != nil {
		return err
	}
	if err := s.writeRepeatSheet(f, analytics); err != nil {
		return err
	}
	if err := s.writeRiskSheet(f, analytics); err != nil {
		return err
	}
	return s.writeSnapshotSheet(f, analytics)
}

// writeTrendSheet renames the default sheet, the rest are created fresh.
func (s *reportExportService) writeTrendSheet(f *excelize.File, analytics *AdminAnalytics) error {
	const sheet = "Progress Trend"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name trend sheet: %w", err)
	}
	rows := [][]interface{}{{"Month", "Average Marks"}}
	for _, point := range analytics.ProgressTrend {
		rows = append(rows, []interface{}{point.Month, point.Avg})
	}
	return writeRows(f, sheet, rows)
}

func (s *reportExportService) writeCompletionSheet(f *excelize.File, analytics *AdminAnalytics) error {
	const sheet = "Assessment Completion"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create completion sheet: %w", err)
	}
	rows := [][]interface{}{{"Module", "Completion %", "Simulated"}}
	for _, entry := range analytics.AssessmentCompletion {
		rows = append(rows, []interface{}{entry.Module, entry.Completed, entry.Simulated})
	}
	return writeRows(f, sheet, rows)
}

func (s *reportExportService) writeAttendanceSheet(f *excelize.File, analytics *AdminAnalytics) error {
	const sheet = "Attendance"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create attendance sheet: %w", err)
	}
	rows := [][]interface{}{{"Module", "Total", "Attended"}}
	for _, log := range analytics.AttendanceLogs {
		rows = append(rows, []interface{}{log.Module, log.Total, log.Attended})
	}
	return writeRows(f, sheet, rows)
}

func (s *reportExportService) writeRepeatSheet(f *excelize.File, analytics *AdminAnalytics) error {
	const sheet = "Repeat Analysis"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create repeat sheet: %w", err)
	}
	rows := [][]interface{}{{"Module", "Repeats"}}
	for _, stat := range analytics.RepeatAnalysis {
		rows = append(rows, []interface{}{stat.Module, stat.Repeats})
	}
	return writeRows(f, sheet, rows)
}

func (s *reportExportService) writeRiskSheet(f *excelize.File, analytics *AdminAnalytics) error {
	const sheet = "Risk Distribution"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create risk sheet: %w", err)
	}
	rows := [][]interface{}{
		{"Risk Level", "Students"},
		{"Low", analytics.RiskDistribution.Low},
		{"Medium", analytics.RiskDistribution.Medium},
		{"High", analytics.RiskDistribution.High},
	}
	return writeRows(f, sheet, rows)
}

func (s *reportExportService) writeSnapshotSheet(f *excelize.File, analytics *AdminAnalytics) error {
	const sheet = "Student Snapshot"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create snapshot sheet: %w", err)
	}
	rows := [][]interface{}{{"Student ID", "Name", "Average", "Risk"}}
	for _, snap := range analytics.StudentProgressSnapshot {
		rows = append(rows, []interface{}{snap.ID, snap.Name, snap.Avg, string(snap.Risk)})
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to compute cell for sheet %s: %w", sheet, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row to sheet %s: %w", sheet, err)
		}
	}
	return nil
}
