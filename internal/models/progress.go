package models

import (
	"time"
)

type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

// StudentProgress is a scored attempt by a student at a module's assessment.
// The analytics layer reads these records; it never writes them.
type StudentProgress struct {
	ID             string         `json:"id" gorm:"primaryKey;size:255"`
	StudentID      string         `json:"student_id" gorm:"not null;size:255;index"`
	ModuleID       string         `json:"module_id" gorm:"not null;size:255;index"`
	AssessmentID   string         `json:"assessment_id" gorm:"size:255"`
	AssessmentType string         `json:"assessment_type" gorm:"size:50"`
	Marks          *float64       `json:"marks"` // nil when the attempt was never scored
	Status         ProgressStatus `json:"status" gorm:"size:20;default:not_started"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StudentProgress) TableName() string {
	return "student_progress"
}

// HasValidMarks reports whether the record carries a usable score in [0,100].
func (p *StudentProgress) HasValidMarks() bool {
	return p.Marks != nil && *p.Marks >= 0 && *p.Marks <= 100
}
