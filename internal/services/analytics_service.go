package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eduboost-lms/analytics-service/internal/cache"
	"github.com/eduboost-lms/analytics-service/internal/events"
	"github.com/eduboost-lms/analytics-service/internal/models"
	"github.com/eduboost-lms/analytics-service/internal/repositories"
)

const (
	analyticsCacheKey     = "analytics:admin:summary"
	analyticsCachePattern = "analytics:*"
)

// AnalyticsService assembles the admin dashboard aggregates.
type AnalyticsService interface {
	GetAdminAnalytics(ctx context.Context) (*AdminAnalytics, error)
	InvalidateCache(ctx context.Context) error
}

// AdminAnalytics is the payload behind GET /api/admin/analytics.
type AdminAnalytics struct {
	ProgressTrend           []TrendPoint       `json:"progressTrend"`
	AssessmentCompletion    []ModuleCompletion `json:"assessmentCompletion"`
	AttendanceLogs          []AttendanceLog    `json:"attendanceLogs"`
	RepeatAnalysis          []RepeatStat       `json:"repeatAnalysis"`
	RiskDistribution        RiskDistribution   `json:"riskDistribution"`
	StudentProgressSnapshot []StudentSnapshot  `json:"studentProgressSnapshot"`
	GeneratedAt             time.Time          `json:"generatedAt"`
}

type analyticsService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	cacheTTL  time.Duration
	publisher events.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewAnalyticsService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	cacheTTL time.Duration,
	publisher events.EventPublisher,
	logger *slog.Logger,
) AnalyticsService {
	return &analyticsService{
		repo:      repo,
		cache:     cacheService,
		cacheTTL:  cacheTTL,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// dataset holds one request's worth of raw collections. Each field is filled
// by exactly one goroutine of the fan-out, so no locking is needed.
type dataset struct {
	students    []models.User
	modules     []models.Module
	progress    []models.StudentProgress
	submissions []models.Submission
	enrollments []models.Enrollment
}

func (s *analyticsService) GetAdminAnalytics(ctx context.Context) (*AdminAnalytics, error) {
	if s.cache != nil {
		var cached AdminAnalytics
		err := s.cache.Get(ctx, analyticsCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			// Evict the entry so a corrupt payload does not fail every request
			// until its TTL runs out.
			s.logger.Warn("Failed to read analytics cache, evicting entry", "error", err)
			if derr := s.cache.Delete(ctx, analyticsCacheKey); derr != nil {
				s.logger.Warn("Failed to evict analytics cache entry", "error", derr)
			}
		}
	}

	ds := s.fetchDataset(ctx)
	analytics := s.buildAnalytics(ds)

	if s.cache != nil {
		if err := s.cache.Set(ctx, analyticsCacheKey, analytics, s.cacheTTL); err != nil {
			s.logger.Warn("Failed to store analytics cache", "error", err)
		}
	}

	s.publishAtRiskEvent(ctx, ds, analytics)

	return analytics, nil
}

// InvalidateCache drops every cached analytics summary. Called at startup so
// summaries computed by a previous build never outlive a deploy.
func (s *analyticsService) InvalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.DeletePattern(ctx, analyticsCachePattern); err != nil {
		return fmt.Errorf("failed to invalidate analytics cache: %w", err)
	}
	return nil
}

// fetchDataset issues all collection scans in parallel and waits for the
// batch. A failed scan is logged and degrades to an empty slice; the request
// carries on with whatever data arrived.
func (s *analyticsService) fetchDataset(ctx context.Context) *dataset {
	ds := &dataset{}
	repo := s.repo.Analytics()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		students, err := repo.ListStudents(gctx)
		if err != nil {
			s.logger.Warn("Failed to fetch students, using empty set", "error", err)
			return nil
		}
		ds.students = students
		return nil
	})
	g.Go(func() error {
		modules, err := repo.ListModules(gctx)
		if err != nil {
			s.logger.Warn("Failed to fetch modules, using empty set", "error", err)
			return nil
		}
		ds.modules = modules
		return nil
	})
	g.Go(func() error {
		progress, err := repo.ListProgress(gctx)
		if err != nil {
			s.logger.Warn("Failed to fetch student progress, using empty set", "error", err)
			return nil
		}
		ds.progress = progress
		return nil
	})
	g.Go(func() error {
		submissions, err := repo.ListSubmissions(gctx)
		if err != nil {
			s.logger.Warn("Failed to fetch submissions, using empty set", "error", err)
			return nil
		}
		ds.submissions = submissions
		return nil
	})
	g.Go(func() error {
		enrollments, err := repo.ListEnrollments(gctx)
		if err != nil {
			s.logger.Warn("Failed to fetch enrollments, using empty set", "error", err)
			return nil
		}
		ds.enrollments = enrollments
		return nil
	})

	// Fetch closures never return errors; Wait only synchronizes the batch.
	_ = g.Wait()
	return ds
}

func (s *analyticsService) buildAnalytics(ds *dataset) *AdminAnalytics {
	now := s.now()
	return &AdminAnalytics{
		ProgressTrend:           CalculateProgressTrend(ds.progress, now),
		AssessmentCompletion:    CalculateAssessmentCompletion(ds.modules, ds.progress, ds.submissions),
		AttendanceLogs:          CalculateAttendanceLogs(ds.modules, ds.enrollments, ds.progress),
		RepeatAnalysis:          CalculateRepeatAnalysis(ds.modules, ds.progress),
		RiskDistribution:        CalculateRiskDistribution(ds.students, ds.progress),
		StudentProgressSnapshot: BuildStudentSnapshots(ds.students, ds.progress),
		GeneratedAt:             now,
	}
}

// publishAtRiskEvent notifies downstream consumers about students classified
// High risk. Publish failures never fail the dashboard request.
func (s *analyticsService) publishAtRiskEvent(ctx context.Context, ds *dataset, analytics *AdminAnalytics) {
	if s.publisher == nil {
		return
	}

	atRisk := highRiskStudentIDs(ds.students, ds.progress)
	if len(atRisk) == 0 {
		return
	}

	event := events.NewStudentsAtRiskEvent(atRisk, len(ds.students), analytics.GeneratedAt)
	if err := s.publisher.PublishAnalyticsEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish at-risk event", "error", err, "students", len(atRisk))
	}
}

func highRiskStudentIDs(students []models.User, progress []models.StudentProgress) []string {
	byStudent := groupProgressByStudent(progress)

	var ids []string
	for _, student := range students {
		avg, hasScores := studentAverage(byStudent[student.ID])
		if classifyRisk(avg, hasScores) == RiskHigh {
			ids = append(ids, student.ID)
		}
	}
	return ids
}
