package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduboost-lms/analytics-service/internal/auth"
	"github.com/eduboost-lms/analytics-service/internal/services"
	"github.com/eduboost-lms/analytics-service/internal/utils"
)

type HandlerManager struct {
	analyticsHandler *AnalyticsHandler
	verifier         auth.TokenVerifier
	authorizer       auth.Authorizer
	logger           utils.Logger
}

func NewHandlerManager(
	analyticsService services.AnalyticsService,
	statsService services.StatsService,
	exportService services.ReportExportService,
	verifier auth.TokenVerifier,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		analyticsHandler: NewAnalyticsHandler(analyticsService, statsService, exportService, validator, logger),
		verifier:         verifier,
		authorizer:       auth.NewAdminAuthorizer(),
		logger:           logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "analytics-service",
		})
	})

	admin := router.Group("/api/admin")
	{
		admin.GET("/analytics",
			hm.guard(auth.ResourceAdminAnalytics),
			hm.analyticsHandler.GetAnalytics)
		admin.GET("/analytics/export",
			hm.guard(auth.ResourceAdminExport),
			hm.analyticsHandler.ExportReport)
		admin.GET("/stats",
			hm.guard(auth.ResourceAdminStats),
			hm.analyticsHandler.GetStats)
	}
}

func (hm *HandlerManager) guard(resource string) gin.HandlerFunc {
	return auth.RequireRole(hm.verifier, hm.authorizer, resource, hm.logger)
}
