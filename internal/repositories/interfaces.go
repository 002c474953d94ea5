package repositories

import (
	"context"

	"github.com/eduboost-lms/analytics-service/internal/models"
)

// Repository aggregates the data-access interfaces the service layer needs.
type Repository interface {
	Analytics() AnalyticsRepository
	Stats() StatsRepository
}

// AnalyticsRepository exposes the read-only collection scans the dashboard
// aggregation consumes. The analytics layer never writes through it.
type AnalyticsRepository interface {
	ListStudents(ctx context.Context) ([]models.User, error)
	ListModules(ctx context.Context) ([]models.Module, error)
	ListProgress(ctx context.Context) ([]models.StudentProgress, error)
	ListSubmissions(ctx context.Context) ([]models.Submission, error)
	ListEnrollments(ctx context.Context) ([]models.Enrollment, error)
}

// StatsRepository provides the server-side counts behind the overview stats
// endpoint, so it does not have to scan whole collections per request.
type StatsRepository interface {
	CountUsersByRole(ctx context.Context, role models.UserRole) (int64, error)
	CountPendingApprovals(ctx context.Context) (int64, error)
	CountModules(ctx context.Context) (int64, error)
	CountEnrollments(ctx context.Context) (int64, error)
	CountActiveStudents(ctx context.Context) (int64, error)
	CountSubmissions(ctx context.Context) (int64, error)
	CountGradedSubmissions(ctx context.Context) (int64, error)
	AverageMarks(ctx context.Context) (float64, error)
}

// ===== SHARED STATISTICS STRUCTS =====

type OverviewStats struct {
	TotalStudents    int64 `json:"totalStudents"`
	TotalEducators   int64 `json:"totalEducators"`
	TotalModules     int64 `json:"totalModules"`
	PendingApprovals int64 `json:"pendingApprovals"`
}

type ParticipationStats struct {
	ActiveStudents    int64   `json:"activeStudents"`
	TotalEnrollments  int64   `json:"totalEnrollments"`
	ParticipationRate float64 `json:"participationRate"`
}

type AcademicStats struct {
	AverageMarks     float64 `json:"averageMarks"`
	CompletionRate   float64 `json:"completionRate"`
	TotalSubmissions int64   `json:"totalSubmissions"`
	GradedSubmission int64   `json:"gradedSubmissions"`
}

type PerformanceStats struct {
	PassRate       float64 `json:"passRate"`
	AtRiskStudents int     `json:"atRiskStudents"`
	TopModule      string  `json:"topModule"`
}
