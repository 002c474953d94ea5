package utils

import (
	"reflect"
	"strings"

	"github.com/eduboost-lms/analytics-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps a go-playground validator instance with the custom rules
// the analytics service uses for request and config validation.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with all custom rules registered.
func NewValidator() *Validator {
	validate := validator.New()
	RegisterCustomValidators(validate)
	return &Validator{validate: validate}
}

// ValidateStruct validates struct tags.
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// Custom validation functions

func ValidateUserRole(fl validator.FieldLevel) bool {
	validRoles := []models.UserRole{
		models.RoleStudent,
		models.RoleEducator,
		models.RoleAdmin,
	}

	value := fl.Field().String()
	for _, validRole := range validRoles {
		if string(validRole) == value {
			return true
		}
	}
	return false
}

func ValidateProgressStatus(fl validator.FieldLevel) bool {
	validStatuses := []models.ProgressStatus{
		models.ProgressNotStarted,
		models.ProgressInProgress,
		models.ProgressCompleted,
	}

	value := fl.Field().String()
	for _, validStatus := range validStatuses {
		if string(validStatus) == value {
			return true
		}
	}
	return false
}

func ValidateMarksRange(fl validator.FieldLevel) bool {
	value := fl.Field().Float()
	return value >= 0 && value <= 100
}

func ValidateReportFormat(fl validator.FieldLevel) bool {
	return fl.Field().String() == "xlsx"
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("user_role", ValidateUserRole)
	validate.RegisterValidation("progress_status", ValidateProgressStatus)
	validate.RegisterValidation("marks_range", ValidateMarksRange)
	validate.RegisterValidation("report_format", ValidateReportFormat)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
