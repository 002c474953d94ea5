package models

import (
	"time"

	"gorm.io/gorm"
)

type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

// Module is a unit of academic content (roughly a course topic).
type Module struct {
	ID             string          `json:"id" gorm:"primaryKey;size:255"`
	Title          string          `json:"title" gorm:"not null;size:200"`
	Code           string          `json:"code" gorm:"uniqueIndex;size:50"`
	Difficulty     DifficultyLevel `json:"difficulty" gorm:"size:20"`
	EstimatedHours int             `json:"estimated_hours"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Module) TableName() string {
	return "modules"
}
