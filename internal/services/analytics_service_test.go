package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/eduboost-lms/analytics-service/internal/cache"
	"github.com/eduboost-lms/analytics-service/internal/events"
	"github.com/eduboost-lms/analytics-service/internal/models"
	"github.com/eduboost-lms/analytics-service/internal/repositories"
)

// ===== TEST FIXTURES =====

type fakeAnalyticsRepo struct {
	students    []models.User
	modules     []models.Module
	progress    []models.StudentProgress
	submissions []models.Submission
	enrollments []models.Enrollment

	listErr error
}

func (f *fakeAnalyticsRepo) ListStudents(ctx context.Context) ([]models.User, error) {
	return f.students, f.listErr
}

func (f *fakeAnalyticsRepo) ListModules(ctx context.Context) ([]models.Module, error) {
	return f.modules, f.listErr
}

func (f *fakeAnalyticsRepo) ListProgress(ctx context.Context) ([]models.StudentProgress, error) {
	return f.progress, f.listErr
}

func (f *fakeAnalyticsRepo) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	return f.submissions, f.listErr
}

func (f *fakeAnalyticsRepo) ListEnrollments(ctx context.Context) ([]models.Enrollment, error) {
	return f.enrollments, f.listErr
}

type fakeStatsRepo struct {
	counts   map[string]int64
	avgMarks float64
	err      error
}

func (f *fakeStatsRepo) CountUsersByRole(ctx context.Context, role models.UserRole) (int64, error) {
	return f.counts[string(role)], f.err
}

func (f *fakeStatsRepo) CountPendingApprovals(ctx context.Context) (int64, error) {
	return f.counts["pending"], f.err
}

func (f *fakeStatsRepo) CountModules(ctx context.Context) (int64, error) {
	return f.counts["modules"], f.err
}

func (f *fakeStatsRepo) CountEnrollments(ctx context.Context) (int64, error) {
	return f.counts["enrollments"], f.err
}

func (f *fakeStatsRepo) CountActiveStudents(ctx context.Context) (int64, error) {
	return f.counts["active"], f.err
}

func (f *fakeStatsRepo) CountSubmissions(ctx context.Context) (int64, error) {
	return f.counts["submissions"], f.err
}

func (f *fakeStatsRepo) CountGradedSubmissions(ctx context.Context) (int64, error) {
	return f.counts["graded"], f.err
}

func (f *fakeStatsRepo) AverageMarks(ctx context.Context) (float64, error) {
	return f.avgMarks, f.err
}

type fakeRepository struct {
	analytics *fakeAnalyticsRepo
	stats     *fakeStatsRepo
}

func (f *fakeRepository) Analytics() repositories.AnalyticsRepository { return f.analytics }
func (f *fakeRepository) Stats() repositories.StatsRepository        { return f.stats }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeCache struct {
	store  map[string][]byte
	getErr error

	deletedKeys     []string
	deletedPatterns []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]byte)}
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.store[key] = payload
	return nil
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	if f.getErr != nil {
		return f.getErr
	}
	payload, ok := f.store[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	f.deletedKeys = append(f.deletedKeys, key)
	delete(f.store, key)
	return nil
}

func (f *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	f.deletedPatterns = append(f.deletedPatterns, pattern)
	f.store = make(map[string][]byte)
	return nil
}

// ===== ANALYTICS SERVICE TESTS =====

func TestGetAdminAnalytics(t *testing.T) {
	fixedNow := time.Date(2026, time.May, 15, 12, 0, 0, 0, time.UTC)

	newService := func(repo *fakeRepository, publisher events.EventPublisher) *analyticsService {
		return &analyticsService{
			repo:      repo,
			cache:     nil,
			cacheTTL:  time.Minute,
			publisher: publisher,
			logger:    testLogger(),
			now:       func() time.Time { return fixedNow },
		}
	}

	t.Run("assembles all six aggregates", func(t *testing.T) {
		repo := &fakeRepository{
			analytics: &fakeAnalyticsRepo{
				students: []models.User{
					{ID: "s1", Email: "one@eduboost.io", Role: models.RoleStudent},
					{ID: "s2", Email: "two@eduboost.io", Role: models.RoleStudent},
				},
				modules: []models.Module{{ID: "m1", Title: "Algorithms"}},
				progress: []models.StudentProgress{
					progressRecord("s1", "m1", "a1", marks(85), models.ProgressCompleted, fixedNow),
				},
				enrollments: []models.Enrollment{{ID: "e1", StudentID: "s1"}},
			},
			stats: &fakeStatsRepo{},
		}

		svc := newService(repo, nil)
		analytics, err := svc.GetAdminAnalytics(context.Background())
		if err != nil {
			t.Fatalf("GetAdminAnalytics returned error: %v", err)
		}

		if len(analytics.ProgressTrend) != 5 {
			t.Errorf("expected 5 trend points, got %d", len(analytics.ProgressTrend))
		}
		if len(analytics.AssessmentCompletion) != 1 {
			t.Errorf("expected 1 completion entry, got %d", len(analytics.AssessmentCompletion))
		}
		total := analytics.RiskDistribution.Low + analytics.RiskDistribution.Medium + analytics.RiskDistribution.High
		if total != 2 {
			t.Errorf("risk buckets sum to %d, want 2", total)
		}
		if len(analytics.StudentProgressSnapshot) != 2 {
			t.Errorf("expected 2 snapshots, got %d", len(analytics.StudentProgressSnapshot))
		}
		if !analytics.GeneratedAt.Equal(fixedNow) {
			t.Errorf("GeneratedAt = %v, want %v", analytics.GeneratedAt, fixedNow)
		}
	})

	t.Run("degrades to empty aggregates when fetches fail", func(t *testing.T) {
		repo := &fakeRepository{
			analytics: &fakeAnalyticsRepo{listErr: errors.New("connection refused")},
			stats:     &fakeStatsRepo{},
		}

		svc := newService(repo, nil)
		analytics, err := svc.GetAdminAnalytics(context.Background())
		if err != nil {
			t.Fatalf("GetAdminAnalytics returned error: %v", err)
		}

		if len(analytics.ProgressTrend) != 5 {
			t.Errorf("expected trend skeleton even with no data, got %d points", len(analytics.ProgressTrend))
		}
		if len(analytics.AssessmentCompletion) != 0 {
			t.Errorf("expected no completion entries, got %d", len(analytics.AssessmentCompletion))
		}
		if analytics.RiskDistribution != (RiskDistribution{}) {
			t.Errorf("expected empty distribution, got %+v", analytics.RiskDistribution)
		}
	})

	t.Run("publishes at-risk event when high risk students exist", func(t *testing.T) {
		repo := &fakeRepository{
			analytics: &fakeAnalyticsRepo{
				students: []models.User{
					{ID: "s1", Email: "one@eduboost.io", Role: models.RoleStudent},
					{ID: "s2", Email: "two@eduboost.io", Role: models.RoleStudent},
				},
				progress: []models.StudentProgress{
					progressRecord("s1", "m1", "a1", marks(30), models.ProgressInProgress, fixedNow),
					progressRecord("s2", "m1", "a1", marks(95), models.ProgressCompleted, fixedNow),
				},
			},
			stats: &fakeStatsRepo{},
		}
		publisher := events.NewMockEventPublisher(testLogger())

		svc := newService(repo, publisher)
		if _, err := svc.GetAdminAnalytics(context.Background()); err != nil {
			t.Fatalf("GetAdminAnalytics returned error: %v", err)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("expected 1 published event, got %d", len(published))
		}
		if published[0].Type != events.EventStudentsAtRisk {
			t.Errorf("event type = %s, want %s", published[0].Type, events.EventStudentsAtRisk)
		}
		data, ok := published[0].Data.(events.StudentsAtRiskEvent)
		if !ok {
			t.Fatalf("unexpected event payload type %T", published[0].Data)
		}
		if len(data.StudentIDs) != 1 || data.StudentIDs[0] != "s1" {
			t.Errorf("at-risk students = %v, want [s1]", data.StudentIDs)
		}
	})

	t.Run("serves the cached summary without refetching", func(t *testing.T) {
		repo := &fakeRepository{
			analytics: &fakeAnalyticsRepo{
				students: []models.User{{ID: "s1", Email: "one@eduboost.io", Role: models.RoleStudent}},
				progress: []models.StudentProgress{
					progressRecord("s1", "m1", "a1", marks(85), models.ProgressCompleted, fixedNow),
				},
			},
			stats: &fakeStatsRepo{},
		}
		cacheSvc := newFakeCache()
		svc := newService(repo, nil)
		svc.cache = cacheSvc

		first, err := svc.GetAdminAnalytics(context.Background())
		if err != nil {
			t.Fatalf("first call returned error: %v", err)
		}

		// Break the repository; a cache hit must not notice.
		repo.analytics.listErr = errors.New("connection refused")
		second, err := svc.GetAdminAnalytics(context.Background())
		if err != nil {
			t.Fatalf("second call returned error: %v", err)
		}
		if len(second.StudentProgressSnapshot) != len(first.StudentProgressSnapshot) {
			t.Errorf("cached snapshot has %d rows, want %d",
				len(second.StudentProgressSnapshot), len(first.StudentProgressSnapshot))
		}
	})

	t.Run("evicts a corrupt cache entry", func(t *testing.T) {
		repo := &fakeRepository{analytics: &fakeAnalyticsRepo{}, stats: &fakeStatsRepo{}}
		cacheSvc := newFakeCache()
		cacheSvc.getErr = errors.New("unexpected payload")
		svc := newService(repo, nil)
		svc.cache = cacheSvc

		if _, err := svc.GetAdminAnalytics(context.Background()); err != nil {
			t.Fatalf("GetAdminAnalytics returned error: %v", err)
		}
		if len(cacheSvc.deletedKeys) != 1 || cacheSvc.deletedKeys[0] != analyticsCacheKey {
			t.Errorf("deleted keys = %v, want [%s]", cacheSvc.deletedKeys, analyticsCacheKey)
		}
	})

	t.Run("invalidate drops every analytics key", func(t *testing.T) {
		cacheSvc := newFakeCache()
		svc := newService(&fakeRepository{analytics: &fakeAnalyticsRepo{}, stats: &fakeStatsRepo{}}, nil)
		svc.cache = cacheSvc

		if err := svc.InvalidateCache(context.Background()); err != nil {
			t.Fatalf("InvalidateCache returned error: %v", err)
		}
		if len(cacheSvc.deletedPatterns) != 1 || cacheSvc.deletedPatterns[0] != analyticsCachePattern {
			t.Errorf("deleted patterns = %v, want [%s]", cacheSvc.deletedPatterns, analyticsCachePattern)
		}
	})

	t.Run("invalidate without a cache is a no-op", func(t *testing.T) {
		svc := newService(&fakeRepository{analytics: &fakeAnalyticsRepo{}, stats: &fakeStatsRepo{}}, nil)
		if err := svc.InvalidateCache(context.Background()); err != nil {
			t.Errorf("InvalidateCache returned error: %v", err)
		}
	})

	t.Run("skips event when nobody is at risk", func(t *testing.T) {
		repo := &fakeRepository{
			analytics: &fakeAnalyticsRepo{
				students: []models.User{{ID: "s1", Email: "one@eduboost.io", Role: models.RoleStudent}},
				progress: []models.StudentProgress{
					progressRecord("s1", "m1", "a1", marks(95), models.ProgressCompleted, fixedNow),
				},
			},
			stats: &fakeStatsRepo{},
		}
		publisher := events.NewMockEventPublisher(testLogger())

		svc := newService(repo, publisher)
		if _, err := svc.GetAdminAnalytics(context.Background()); err != nil {
			t.Fatalf("GetAdminAnalytics returned error: %v", err)
		}
		if got := len(publisher.GetPublishedEvents()); got != 0 {
			t.Errorf("expected no published events, got %d", got)
		}
	})
}
