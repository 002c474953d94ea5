package postgres

import (
	"context"
	"fmt"

	"github.com/eduboost-lms/analytics-service/internal/models"
	"github.com/eduboost-lms/analytics-service/internal/repositories"
	"gorm.io/gorm"
)

type StatsPostgreSQL struct {
	db *gorm.DB
}

func NewStatsPostgreSQL(db *gorm.DB) repositories.StatsRepository {
	return &StatsPostgreSQL{db: db}
}

func (s *StatsPostgreSQL) CountUsersByRole(ctx context.Context, role models.UserRole) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", role).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count users with role %s: %w", role, err)
	}
	return count, nil
}

func (s *StatsPostgreSQL) CountPendingApprovals(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("is_approved = ?", false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending approvals: %w", err)
	}
	return count, nil
}

func (s *StatsPostgreSQL) CountModules(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Module{}).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count modules: %w", err)
	}
	return count, nil
}

func (s *StatsPostgreSQL) CountEnrollments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count enrollments: %w", err)
	}
	return count, nil
}

// CountActiveStudents counts distinct students with at least one progress record.
func (s *StatsPostgreSQL) CountActiveStudents(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.StudentProgress{}).
		Distinct("student_id").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active students: %w", err)
	}
	return count, nil
}

func (s *StatsPostgreSQL) CountSubmissions(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

func (s *StatsPostgreSQL) CountGradedSubmissions(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("is_graded = ?", true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count graded submissions: %w", err)
	}
	return count, nil
}

// AverageMarks averages all scored progress records. NULL marks are skipped by
// the aggregate itself; an empty table yields 0.
func (s *StatsPostgreSQL) AverageMarks(ctx context.Context) (float64, error) {
	var avg *float64
	err := s.db.WithContext(ctx).
		Model(&models.StudentProgress{}).
		Select("AVG(marks)").
		Where("marks IS NOT NULL").
		Scan(&avg).Error
	if err != nil {
		return 0, fmt.Errorf("failed to average marks: %w", err)
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
