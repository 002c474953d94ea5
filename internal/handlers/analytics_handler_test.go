package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eduboost-lms/analytics-service/internal/auth"
	"github.com/eduboost-lms/analytics-service/internal/models"
	"github.com/eduboost-lms/analytics-service/internal/services"
	"github.com/eduboost-lms/analytics-service/internal/utils"
)

type stubAnalyticsService struct {
	analytics *services.AdminAnalytics
	err       error
}

func (s *stubAnalyticsService) GetAdminAnalytics(ctx context.Context) (*services.AdminAnalytics, error) {
	return s.analytics, s.err
}

func (s *stubAnalyticsService) InvalidateCache(ctx context.Context) error {
	return nil
}

type stubStatsService struct {
	stats *services.AdminStats
	err   error
}

func (s *stubStatsService) GetAdminStats(ctx context.Context) (*services.AdminStats, error) {
	return s.stats, s.err
}

type stubExportService struct {
	data []byte
	err  error
}

func (s *stubExportService) ExportAnalyticsWorkbook(ctx context.Context, requestedBy string) ([]byte, error) {
	return s.data, s.err
}

type allowAllVerifier struct{}

func (allowAllVerifier) Verify(token string) (*auth.Identity, error) {
	return &auth.Identity{UID: "admin-1", Role: models.RoleAdmin}, nil
}

func setupRouter(analytics services.AnalyticsService, stats services.StatsService, export services.ReportExportService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	hm := NewHandlerManager(analytics, stats, export, allowAllVerifier{}, utils.NewValidator(), utils.NewDefaultLogger())
	hm.SetupRoutes(router)
	return router
}

func doGet(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetAnalyticsEndpoint(t *testing.T) {
	t.Run("wraps aggregates in success envelope", func(t *testing.T) {
		analytics := &services.AdminAnalytics{
			ProgressTrend: []services.TrendPoint{{Month: "May", Avg: 72}},
			GeneratedAt:   time.Now(),
		}
		router := setupRouter(&stubAnalyticsService{analytics: analytics}, &stubStatsService{}, &stubExportService{})

		rec := doGet(router, "/api/admin/analytics")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var body struct {
			Success   bool                     `json:"success"`
			Analytics *services.AdminAnalytics `json:"analytics"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !body.Success {
			t.Error("expected success=true")
		}
		if body.Analytics == nil || len(body.Analytics.ProgressTrend) != 1 {
			t.Errorf("unexpected analytics payload: %+v", body.Analytics)
		}
	})

	t.Run("maps permission errors to 403", func(t *testing.T) {
		router := setupRouter(&stubAnalyticsService{err: services.ErrForbidden}, &stubStatsService{}, &stubExportService{})

		rec := doGet(router, "/api/admin/analytics")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}

		var body ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Success {
			t.Error("expected success=false")
		}
	})

	t.Run("maps service failure to error envelope", func(t *testing.T) {
		router := setupRouter(&stubAnalyticsService{err: errors.New("datastore down")}, &stubStatsService{}, &stubExportService{})

		rec := doGet(router, "/api/admin/analytics")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}

		var body ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Success {
			t.Error("expected success=false")
		}
		if body.Error == "" {
			t.Error("expected an error message")
		}
	})
}

func TestGetStatsEndpoint(t *testing.T) {
	stats := &services.AdminStats{GeneratedAt: time.Now()}
	stats.Overview.TotalStudents = 40

	router := setupRouter(&stubAnalyticsService{}, &stubStatsService{stats: stats}, &stubExportService{})

	rec := doGet(router, "/api/admin/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Success bool                 `json:"success"`
		Stats   *services.AdminStats `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !body.Success || body.Stats == nil || body.Stats.Overview.TotalStudents != 40 {
		t.Errorf("unexpected response: %+v", body)
	}
}

func TestExportEndpoint(t *testing.T) {
	t.Run("streams workbook as attachment", func(t *testing.T) {
		router := setupRouter(&stubAnalyticsService{}, &stubStatsService{}, &stubExportService{data: []byte("workbook-bytes")})

		rec := doGet(router, "/api/admin/analytics/export")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got := rec.Header().Get("Content-Disposition"); got == "" {
			t.Error("expected a Content-Disposition header")
		}
		if rec.Body.String() != "workbook-bytes" {
			t.Errorf("unexpected body %q", rec.Body.String())
		}
	})

	t.Run("rejects unsupported format", func(t *testing.T) {
		router := setupRouter(&stubAnalyticsService{}, &stubStatsService{}, &stubExportService{})

		rec := doGet(router, "/api/admin/analytics/export?format=pdf")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("maps empty report to 404", func(t *testing.T) {
		router := setupRouter(&stubAnalyticsService{}, &stubStatsService{}, &stubExportService{err: services.ErrReportEmpty})

		rec := doGet(router, "/api/admin/analytics/export")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}

		var body ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Success || body.Error == "" {
			t.Errorf("unexpected error envelope: %+v", body)
		}
	})
}

func TestHealthEndpoint(t *testing.T) {
	router := setupRouter(&stubAnalyticsService{}, &stubStatsService{}, &stubExportService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	router := setupRouter(&stubAnalyticsService{}, &stubStatsService{}, &stubExportService{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/analytics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
