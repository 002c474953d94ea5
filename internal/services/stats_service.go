package services

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/eduboost-lms/analytics-service/internal/models"
	"github.com/eduboost-lms/analytics-service/internal/repositories"
)

// StatsService computes the condensed numbers behind GET /api/admin/stats.
type StatsService interface {
	GetAdminStats(ctx context.Context) (*AdminStats, error)
}

// AdminStats groups the overview figures the admin landing page renders.
type AdminStats struct {
	Overview      repositories.OverviewStats      `json:"overview"`
	Participation repositories.ParticipationStats `json:"participation"`
	Academic      repositories.AcademicStats      `json:"academic"`
	Performance   repositories.PerformanceStats   `json:"performance"`
	GeneratedAt   time.Time                       `json:"generatedAt"`
}

type statsService struct {
	repo   repositories.Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewStatsService(repo repositories.Repository, logger *slog.Logger) StatsService {
	return &statsService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *statsService) GetAdminStats(ctx context.Context) (*AdminStats, error) {
	stats := &AdminStats{GeneratedAt: s.now()}

	s.fillOverview(ctx, stats)
	s.fillParticipation(ctx, stats)
	s.fillAcademicAndPerformance(ctx, stats)

	return stats, nil
}

// count wraps a repository count so a failed query degrades to zero instead of
// failing the whole stats request.
func (s *statsService) count(name string, value int64, err error) int64 {
	if err != nil {
		s.logger.Warn("Failed to load stat, defaulting to zero", "stat", name, "error", err)
		return 0
	}
	return value
}

func (s *statsService) fillOverview(ctx context.Context, stats *AdminStats) {
	repo := s.repo.Stats()

	students, err := repo.CountUsersByRole(ctx, models.RoleStudent)
	stats.Overview.TotalStudents = s.count("total_students", students, err)

	educators, err := repo.CountUsersByRole(ctx, models.RoleEducator)
	stats.Overview.TotalEducators = s.count("total_educators", educators, err)

	modules, err := repo.CountModules(ctx)
	stats.Overview.TotalModules = s.count("total_modules", modules, err)

	pending, err := repo.CountPendingApprovals(ctx)
	stats.Overview.PendingApprovals = s.count("pending_approvals", pending, err)
}

func (s *statsService) fillParticipation(ctx context.Context, stats *AdminStats) {
	repo := s.repo.Stats()

	active, err := repo.CountActiveStudents(ctx)
	stats.Participation.ActiveStudents = s.count("active_students", active, err)

	enrollments, err := repo.CountEnrollments(ctx)
	stats.Participation.TotalEnrollments = s.count("total_enrollments", enrollments, err)

	if stats.Overview.TotalStudents > 0 {
		rate := 100 * float64(stats.Participation.ActiveStudents) / float64(stats.Overview.TotalStudents)
		stats.Participation.ParticipationRate = roundToOne(rate)
	}
}

// fillAcademicAndPerformance derives the academic rollup from the same raw
// collections the dashboard uses, so both endpoints agree on thresholds.
func (s *statsService) fillAcademicAndPerformance(ctx context.Context, stats *AdminStats) {
	statsRepo := s.repo.Stats()

	avgMarks, err := statsRepo.AverageMarks(ctx)
	if err != nil {
		s.logger.Warn("Failed to load average marks, defaulting to zero", "error", err)
		avgMarks = 0
	}
	stats.Academic.AverageMarks = roundToOne(avgMarks)

	submissions, err := statsRepo.CountSubmissions(ctx)
	stats.Academic.TotalSubmissions = s.count("total_submissions", submissions, err)

	graded, err := statsRepo.CountGradedSubmissions(ctx)
	stats.Academic.GradedSubmission = s.count("graded_submissions", graded, err)

	analyticsRepo := s.repo.Analytics()

	modules, err := analyticsRepo.ListModules(ctx)
	if err != nil {
		s.logger.Warn("Failed to fetch modules for stats, using empty set", "error", err)
	}
	progress, err := analyticsRepo.ListProgress(ctx)
	if err != nil {
		s.logger.Warn("Failed to fetch progress for stats, using empty set", "error", err)
	}
	allSubmissions, err := analyticsRepo.ListSubmissions(ctx)
	if err != nil {
		s.logger.Warn("Failed to fetch submissions for stats, using empty set", "error", err)
	}
	students, err := analyticsRepo.ListStudents(ctx)
	if err != nil {
		s.logger.Warn("Failed to fetch students for stats, using empty set", "error", err)
	}

	completion := CalculateAssessmentCompletion(modules, progress, allSubmissions)
	measured := 0
	rateSum := 0
	for _, entry := range completion {
		if entry.Simulated {
			continue
		}
		if measured == 0 {
			stats.Performance.TopModule = entry.Module
		}
		measured++
		rateSum += entry.Completed
	}
	if measured > 0 {
		stats.Academic.CompletionRate = roundToOne(float64(rateSum) / float64(measured))
	}

	gradedCount := 0
	passedCount := 0
	for _, sub := range allSubmissions {
		if !sub.IsGraded || sub.FinalGrade == nil {
			continue
		}
		gradedCount++
		if *sub.FinalGrade >= completionThreshold {
			passedCount++
		}
	}
	if gradedCount > 0 {
		stats.Performance.PassRate = roundToOne(100 * float64(passedCount) / float64(gradedCount))
	}

	stats.Performance.AtRiskStudents = len(highRiskStudentIDs(students, progress))
}

func roundToOne(value float64) float64 {
	return math.Round(value*10) / 10
}
