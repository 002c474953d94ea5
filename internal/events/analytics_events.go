package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of analytics events
type EventType string

const (
	// Emitted when a dashboard snapshot classifies one or more students as
	// High risk, so the notification service can alert educators.
	EventStudentsAtRisk EventType = "analytics.students_at_risk"

	// Report events
	EventReportExported EventType = "analytics.report_exported"
)

// AnalyticsEvent is the base event structure for all analytics events
type AnalyticsEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// StudentsAtRiskEvent carries the students a snapshot flagged as High risk.
type StudentsAtRiskEvent struct {
	StudentIDs  []string  `json:"student_ids"`
	HighCount   int       `json:"high_count"`
	TotalCount  int       `json:"total_count"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ReportExportedEvent records an admin exporting the analytics workbook.
type ReportExportedEvent struct {
	RequestedBy string    `json:"requested_by"`
	Format      string    `json:"format"`
	SizeBytes   int       `json:"size_bytes"`
	ExportedAt  time.Time `json:"exported_at"`
}

// Event factory functions

func NewStudentsAtRiskEvent(studentIDs []string, totalCount int, generatedAt time.Time) *AnalyticsEvent {
	return &AnalyticsEvent{
		ID:        generateEventID(),
		Type:      EventStudentsAtRisk,
		Timestamp: time.Now(),
		Source:    "analytics-service",
		Version:   "1.0",
		Data: StudentsAtRiskEvent{
			StudentIDs:  studentIDs,
			HighCount:   len(studentIDs),
			TotalCount:  totalCount,
			GeneratedAt: generatedAt,
		},
	}
}

func NewReportExportedEvent(requestedBy, format string, sizeBytes int) *AnalyticsEvent {
	return &AnalyticsEvent{
		ID:        generateEventID(),
		Type:      EventReportExported,
		Timestamp: time.Now(),
		Source:    "analytics-service",
		Version:   "1.0",
		Data: ReportExportedEvent{
			RequestedBy: requestedBy,
			Format:      format,
			SizeBytes:   sizeBytes,
			ExportedAt:  time.Now(),
		},
	}
}

func generateEventID() string {
	return uuid.NewString()
}
