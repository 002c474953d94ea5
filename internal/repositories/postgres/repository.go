package postgres

import (
	"github.com/eduboost-lms/analytics-service/internal/repositories"
	"gorm.io/gorm"
)

type gormRepository struct {
	analytics repositories.AnalyticsRepository
	stats     repositories.StatsRepository
}

// NewRepository wires the gorm-backed implementations behind the Repository
// aggregate. The *gorm.DB handle is constructed by the caller and injected.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &gormRepository{
		analytics: NewAnalyticsPostgreSQL(db),
		stats:     NewStatsPostgreSQL(db),
	}
}

func (r *gormRepository) Analytics() repositories.AnalyticsRepository {
	return r.analytics
}

func (r *gormRepository) Stats() repositories.StatsRepository {
	return r.stats
}
