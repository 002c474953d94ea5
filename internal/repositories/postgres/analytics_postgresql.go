package postgres

import (
	"context"
	"fmt"

	"github.com/eduboost-lms/analytics-service/internal/models"
	"github.com/eduboost-lms/analytics-service/internal/repositories"
	"gorm.io/gorm"
)

type AnalyticsPostgreSQL struct {
	db *gorm.DB
}

func NewAnalyticsPostgreSQL(db *gorm.DB) repositories.AnalyticsRepository {
	return &AnalyticsPostgreSQL{db: db}
}

// ListStudents returns every approved student account. Full scan per request;
// the dashboard dataset is small enough that rollup tables are not worth it yet.
func (a *AnalyticsPostgreSQL) ListStudents(ctx context.Context) ([]models.User, error) {
	var students []models.User
	err := a.db.WithContext(ctx).
		Where("role = ?", models.RoleStudent).
		Order("created_at ASC").
		Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

func (a *AnalyticsPostgreSQL) ListModules(ctx context.Context) ([]models.Module, error) {
	var modules []models.Module
	err := a.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&modules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	return modules, nil
}

func (a *AnalyticsPostgreSQL) ListProgress(ctx context.Context) ([]models.StudentProgress, error) {
	var progress []models.StudentProgress
	err := a.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&progress).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list student progress: %w", err)
	}
	return progress, nil
}

func (a *AnalyticsPostgreSQL) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	var submissions []models.Submission
	err := a.db.WithContext(ctx).
		Order("submitted_at ASC").
		Find(&submissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

func (a *AnalyticsPostgreSQL) ListEnrollments(ctx context.Context) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := a.db.WithContext(ctx).
		Order("enrolled_at ASC").
		Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}
