package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Role     string `json:"role" validate:"omitempty,is-user-role"`
	Status   string `json:"status" validate:"is-content-status"`
	Target   string `json:"target_type" validate:"required,is-target-type"`
	Date     string `json:"date" validate:"is-date"`
}

func TestValidate_OK(t *testing.T) {
	v := New()
	err := v.Validate(&sampleRequest{Username: "alice", Role: "admin", Status: "draft", Target: "work", Date: "2024-01-15"})
	assert.NoError(t, err)
}

func TestValidate_JSONFieldNames(t *testing.T) {
	v := New()
	err := v.Validate(&sampleRequest{Username: "al", Role: "root", Status: "deleted", Target: "video", Date: "15.01.2024"})
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Errors, "username")
	assert.Equal(t, "Must be one of: admin, user", vErr.Errors["role"])
	assert.Contains(t, vErr.Errors, "status")
	assert.Equal(t, "Must be one of: article, moment, work", vErr.Errors["target_type"])
	assert.Equal(t, "Must be a date in YYYY-MM-DD format", vErr.Errors["date"])
}

func TestValidate_EmptyEnumSkipped(t *testing.T) {
	v := New()
	err := v.Validate(&sampleRequest{Username: "alice", Target: "article"})
	assert.NoError(t, err)
}
