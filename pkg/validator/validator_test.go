package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type activityInput struct {
	ActivityType    string `validate:"required,activity_type"`
	DurationMinutes int    `validate:"gt=0"`
}

func newValidator(t *testing.T) *validator.Validate {
	v := validator.New()
	require.NoError(t, RegisterOn(v))
	return v
}

func TestActivityTypeRule(t *testing.T) {
	v := newValidator(t)

	assert.NoError(t, v.Struct(activityInput{ActivityType: "Yoga", DurationMinutes: 30}))
	assert.Error(t, v.Struct(activityInput{ActivityType: "   ", DurationMinutes: 30}))
	assert.Error(t, v.Struct(activityInput{ActivityType: "run\x00", DurationMinutes: 30}))
	assert.Error(t, v.Struct(activityInput{ActivityType: "walk", DurationMinutes: -5}))
}

func TestFormatValidationError(t *testing.T) {
	v := newValidator(t)

	err := v.Struct(activityInput{ActivityType: "", DurationMinutes: 0})
	require.Error(t, err)

	msg := FormatValidationError(err)
	assert.Contains(t, msg, "Activity type is required")
	assert.Contains(t, msg, "Duration must be greater than 0")
}
