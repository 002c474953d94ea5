package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roleFixture struct {
	Role string `json:"role" validate:"required,user_role"`
}

type statusFixture struct {
	Status string `json:"status" validate:"required,progress_status"`
}

type marksFixture struct {
	Marks float64 `json:"marks" validate:"marks_range"`
}

type formatFixture struct {
	Format string `json:"format" validate:"omitempty,report_format"`
}

func TestCustomValidators(t *testing.T) {
	v := NewValidator()

	t.Run("user_role", func(t *testing.T) {
		for _, role := range []string{"student", "educator", "admin"} {
			assert.NoError(t, v.ValidateStruct(&roleFixture{Role: role}), "role %s should be valid", role)
		}
		assert.Error(t, v.ValidateStruct(&roleFixture{Role: "superuser"}))
		assert.Error(t, v.ValidateStruct(&roleFixture{}))
	})

	t.Run("progress_status", func(t *testing.T) {
		for _, status := range []string{"not_started", "in_progress", "completed"} {
			assert.NoError(t, v.ValidateStruct(&statusFixture{Status: status}), "status %s should be valid", status)
		}
		assert.Error(t, v.ValidateStruct(&statusFixture{Status: "paused"}))
	})

	t.Run("marks_range", func(t *testing.T) {
		assert.NoError(t, v.ValidateStruct(&marksFixture{Marks: 0}))
		assert.NoError(t, v.ValidateStruct(&marksFixture{Marks: 100}))
		assert.Error(t, v.ValidateStruct(&marksFixture{Marks: -1}))
		assert.Error(t, v.ValidateStruct(&marksFixture{Marks: 100.5}))
	})

	t.Run("report_format", func(t *testing.T) {
		require.NoError(t, v.ValidateStruct(&formatFixture{}))
		require.NoError(t, v.ValidateStruct(&formatFixture{Format: "xlsx"}))
		require.Error(t, v.ValidateStruct(&formatFixture{Format: "pdf"}))
	})
}
