package validation

import (
	"time"
)

// MaxNoteLength caps the free-text note attached to a session.
const MaxNoteLength = 1024

// SessionValidator provides validation for session operations
type SessionValidator struct{}

// NewSessionValidator creates a new session validator
func NewSessionValidator() *SessionValidator {
	return &SessionValidator{}
}

// ValidateSessionID validates a session identifier
func (sv *SessionValidator) ValidateSessionID(id int64) error {
	validationError := NewValidationError()

	if id <= 0 {
		validationError.AddInvalidValueError("id", id, "must be a positive integer")
		return validationError
	}

	return nil
}

// ValidateNote validates a session note for creation
func (sv *SessionValidator) ValidateNote(note string) error {
	validationError := NewValidationError()

	if len(note) > MaxNoteLength {
		validationError.AddInvalidLengthError("note", note, 0, MaxNoteLength)
		return validationError
	}

	return nil
}

// ValidateSessionForUpdate validates a full correction update. Both
// timestamps must be present; the end must not precede the start.
func (sv *SessionValidator) ValidateSessionForUpdate(id int64, start, end time.Time, note string) error {
	validationError := NewValidationError()

	if id <= 0 {
		validationError.AddInvalidValueError("id", id, "must be a positive integer")
	}
	if start.IsZero() {
		validationError.AddRequiredError("start_time")
	}
	if end.IsZero() {
		validationError.AddRequiredError("end_time")
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		validationError.AddInvalidRangeError("end_time", end, "must not be before start_time")
	}
	if len(note) > MaxNoteLength {
		validationError.AddInvalidLengthError("note", note, 0, MaxNoteLength)
	}

	if validationError.HasErrors() {
		return validationError
	}

	return nil
}
