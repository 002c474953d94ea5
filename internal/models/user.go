package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent  UserRole = "student"
	RoleEducator UserRole = "educator"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	ID        string   `json:"id" gorm:"primaryKey;size:255"`
	FirstName string   `json:"first_name" gorm:"size:100"`
	LastName  string   `json:"last_name" gorm:"size:100"`
	Email     string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role      UserRole `json:"role" gorm:"size:20;index"`

	// Student-only fields
	StudentID      *string `json:"student_id" gorm:"size:50"`
	CurrentBatchID *string `json:"current_batch_id" gorm:"size:255"`

	// Settings
	Preferences datatypes.JSON `json:"preferences"`

	// Status
	IsApproved  bool       `json:"is_approved" gorm:"default:false"`
	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// FullName joins first and last name, falling back to the email local part
// when both are empty.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}

// DisplayID prefers the institutional student number over the document ID.
func (u *User) DisplayID() string {
	if u.StudentID != nil && *u.StudentID != "" {
		return *u.StudentID
	}
	return u.ID
}
