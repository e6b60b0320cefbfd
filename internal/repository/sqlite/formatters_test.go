package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimeForDB(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{
			name:     "UTC time",
			input:    time.Date(2026, 1, 15, 10, 30, 45, 0, time.UTC),
			expected: "2026-01-15T10:30:45Z",
		},
		{
			name:     "Non-UTC time is normalized to UTC",
			input:    time.Date(2026, 6, 15, 14, 30, 0, 0, time.FixedZone("EST", -5*3600)),
			expected: "2026-06-15T19:30:00Z",
		},
		{
			name:     "Nanoseconds are truncated",
			input:    time.Date(2026, 3, 10, 9, 15, 30, 123456789, time.UTC),
			expected: "2026-03-10T09:15:30Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatTimeForDB(tt.input))
		})
	}
}

func TestFormatTimePtrForDB(t *testing.T) {
	assert.Nil(t, FormatTimePtrForDB(nil))

	end := time.Date(2026, 1, 15, 17, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-01-15T17:00:00Z", FormatTimePtrForDB(&end))
}

func TestParseTimeFromDB(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    time.Time
		expectError bool
	}{
		{
			name:     "Valid RFC3339 time",
			input:    "2026-01-15T10:30:45Z",
			expected: time.Date(2026, 1, 15, 10, 30, 45, 0, time.UTC),
		},
		{
			name:     "Valid RFC3339 time with offset",
			input:    "2026-06-15T14:30:00-05:00",
			expected: time.Date(2026, 6, 15, 14, 30, 0, 0, time.FixedZone("", -5*3600)),
		},
		{
			name:        "Invalid time format",
			input:       "2026-01-15 10:30:45",
			expectError: true,
		},
		{
			name:        "Empty string",
			input:       "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseTimeFromDB(tt.input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.True(t, tt.expected.Equal(result))
			}
		})
	}
}

func TestFormatTimeForDB_RoundTrip(t *testing.T) {
	// RFC3339 text has second precision; whole-second times round-trip exactly
	original := time.Date(2026, 1, 15, 10, 30, 45, 0, time.UTC)

	parsed, err := ParseTimeFromDB(FormatTimeForDB(original))
	assert.NoError(t, err)
	assert.True(t, original.Equal(parsed))
}
