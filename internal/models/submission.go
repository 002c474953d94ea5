package models

import (
	"time"
)

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionGraded   SubmissionStatus = "graded"
	SubmissionRejected SubmissionStatus = "rejected"
)

// Submission is a student's uploaded artifact for a graded assignment,
// distinct from a progress record but overlapping in purpose.
type Submission struct {
	ID           string           `json:"id" gorm:"primaryKey;size:255"`
	StudentID    string           `json:"student_id" gorm:"not null;size:255;index"`
	ModuleID     string           `json:"module_id" gorm:"not null;size:255;index"`
	AssignmentID string           `json:"assignment_id" gorm:"size:255"`
	FinalGrade   *float64         `json:"final_grade"` // nil until graded
	IsGraded     bool             `json:"is_graded" gorm:"default:false"`
	Status       SubmissionStatus `json:"status" gorm:"size:20;default:pending"`

	SubmittedAt time.Time  `json:"submitted_at"`
	GradedAt    *time.Time `json:"graded_at"`
}

func (Submission) TableName() string {
	return "submissions"
}

// IsPassing reports whether the submission counts toward module completion.
func (s *Submission) IsPassing(threshold float64) bool {
	return s.IsGraded && s.FinalGrade != nil && *s.FinalGrade >= threshold
}
