package errors

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("test_type", "must be a valid test type (shsat, sat, psat, statetest)", "gre")

	assert.Equal(t, "test_type", err.Field)
	assert.Equal(t, "gre", err.Value)
	assert.Equal(t, "validation error on field 'test_type': must be a valid test type (shsat, sat, psat, statetest)", err.Error())
}

func TestValidationErrors_ErrorMessage(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())

	errs = append(errs, *NewValidationError("practice_set", "is required", nil))
	assert.Equal(t, "validation failed: practice_set is required", errs.Error())

	errs = append(errs, *NewValidationError("answers", "must be at least 1", nil))
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("answers", "must be at least 1", "min", nil)

	assert.Equal(t, "min", err.Rule)
	assert.Equal(t, "answers", err.Field)
}

func TestToValidationErrors(t *testing.T) {
	type payload struct {
		PracticeSet string `json:"practice_set" validate:"required"`
		TimeSpent   int    `json:"time_spent" validate:"min=0"`
	}

	v := validator.New()
	err := v.Struct(payload{TimeSpent: -5})
	require.Error(t, err)

	converted := ToValidationErrors(err)
	require.Len(t, converted, 2)
	assert.Equal(t, "required", converted[0].Rule)
	assert.Equal(t, "is required", converted[0].Message)
	assert.Equal(t, "min", converted[1].Rule)
	assert.Equal(t, "must be at least 0", converted[1].Message)
}

func TestToValidationErrors_NonValidatorError(t *testing.T) {
	converted := ToValidationErrors(assert.AnError)
	assert.Empty(t, converted)
}
