package models

import (
	"time"
)

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentWithdrawn EnrollmentStatus = "withdrawn"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

// Enrollment links a student to a course or batch. Stored per user in the
// source system; flattened to one table here.
type Enrollment struct {
	ID        string           `json:"id" gorm:"primaryKey;size:255"`
	StudentID string           `json:"student_id" gorm:"not null;size:255;index"`
	CourseID  string           `json:"course_id" gorm:"size:255"`
	BatchID   string           `json:"batch_id" gorm:"size:255"`
	Status    EnrollmentStatus `json:"status" gorm:"size:20;default:active"`

	EnrolledAt time.Time `json:"enrolled_at"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
