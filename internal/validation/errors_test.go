package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Error(t *testing.T) {
	ve := NewValidationError()
	assert.Equal(t, "validation error", ve.Error())
	assert.False(t, ve.HasErrors())

	ve.AddRequiredError("start_time")
	assert.True(t, ve.HasErrors())
	assert.Equal(t, "validation error for field 'start_time': start_time is required", ve.Error())

	ve.AddInvalidValueError("id", 0, "must be a positive integer")
	assert.Contains(t, ve.Error(), "multiple validation errors")
	assert.Contains(t, ve.Error(), "start_time")
	assert.Contains(t, ve.Error(), "id")
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(NewValidationError()))
	assert.False(t, IsValidationError(errors.New("plain error")))
	assert.False(t, IsValidationError(nil))
}

func TestFieldErrorTypes(t *testing.T) {
	ve := NewValidationError()
	ve.AddRequiredError("a")
	ve.AddInvalidFormatError("b", "x", "RFC3339")
	ve.AddInvalidLengthError("c", "x", 0, 10)
	ve.AddInvalidValueError("d", -1, "negative")
	ve.AddInvalidRangeError("e", 99, "too large")

	types := []ValidationErrorType{
		ErrorTypeRequired,
		ErrorTypeInvalidFormat,
		ErrorTypeInvalidLength,
		ErrorTypeInvalidValue,
		ErrorTypeInvalidRange,
	}
	assert.Len(t, ve.Errors, len(types))
	for i, fe := range ve.Errors {
		assert.Equal(t, types[i], fe.Type)
	}
}
