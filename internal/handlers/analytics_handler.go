package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eduboost-lms/analytics-service/internal/auth"
	apperrors "github.com/eduboost-lms/analytics-service/internal/errors"
	"github.com/eduboost-lms/analytics-service/internal/services"
	"github.com/eduboost-lms/analytics-service/internal/utils"
)

type AnalyticsHandler struct {
	BaseHandler
	analyticsService services.AnalyticsService
	statsService     services.StatsService
	exportService    services.ReportExportService
	validator        *utils.Validator
}

// ExportReportRequest carries the optional export parameters.
type ExportReportRequest struct {
	Format string `form:"format" json:"format" validate:"omitempty,report_format"`
}

func NewAnalyticsHandler(
	analyticsService services.AnalyticsService,
	statsService services.StatsService,
	exportService services.ReportExportService,
	validator *utils.Validator,
	logger utils.Logger,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      NewBaseHandler(logger),
		analyticsService: analyticsService,
		statsService:     statsService,
		exportService:    exportService,
		validator:        validator,
	}
}

// GetAnalytics returns the admin dashboard aggregates
// @Summary Get admin analytics
// @Description Returns the aggregated dashboard data: progress trend, assessment completion, attendance, repeats, risk distribution and student snapshot
// @Tags analytics
// @Produce json
// @Success 200 {object} AnalyticsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/analytics [get]
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	h.LogRequest(c, "Fetching admin analytics")

	analytics, err := h.analyticsService.GetAdminAnalytics(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err, "Failed to fetch analytics data")
		return
	}

	c.JSON(http.StatusOK, AnalyticsResponse{
		Success:   true,
		Analytics: analytics,
	})
}

// GetStats returns the admin overview statistics
// @Summary Get admin stats
// @Description Returns overview, participation, academic and performance statistics
// @Tags analytics
// @Produce json
// @Success 200 {object} StatsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/stats [get]
func (h *AnalyticsHandler) GetStats(c *gin.Context) {
	h.LogRequest(c, "Fetching admin stats")

	stats, err := h.statsService.GetAdminStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err, "Failed to fetch statistics")
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		Success: true,
		Stats:   stats,
	})
}

// ExportReport streams the analytics snapshot as an xlsx workbook
// @Summary Export analytics report
// @Description Renders the current analytics snapshot as an Excel workbook
// @Tags analytics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/analytics/export [get]
func (h *AnalyticsHandler) ExportReport(c *gin.Context) {
	var req ExportReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid export parameters", err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.handleServiceError(c, apperrors.ToValidationErrors(err), "Unsupported report format")
		return
	}

	requestedBy := "unknown"
	if identity, ok := auth.IdentityFromContext(c); ok {
		requestedBy = identity.UID
	}

	h.LogRequest(c, "Exporting analytics report", "requested_by", requestedBy)

	data, err := h.exportService.ExportAnalyticsWorkbook(c.Request.Context(), requestedBy)
	if err != nil {
		h.handleServiceError(c, err, "Failed to export analytics report")
		return
	}

	filename := fmt.Sprintf("analytics-report-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
