package domain

import (
	"time"
)

// Session represents a deep work session in the domain model.
// This is a pure domain model without database-specific concerns.
type Session struct {
	ID        int64      `json:"id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Duration  *int64     `json:"duration"`
	Note      string     `json:"note"`
}

// NewSession creates a new open Session with the given start time and note.
func NewSession(startTime time.Time, note string) Session {
	return Session{
		StartTime: startTime,
		Note:      note,
	}
}

// IsOpen returns true if the session is still running (no end time).
func (s Session) IsOpen() bool {
	return s.EndTime == nil
}

// Close sets the end time and the derived duration on the session.
func (s Session) Close(endTime time.Time) Session {
	d := ComputeDuration(s.StartTime, endTime)
	s.EndTime = &endTime
	s.Duration = &d
	return s
}

// DurationSeconds returns the recorded duration, or zero for an open session.
func (s Session) DurationSeconds() int64 {
	if s.Duration == nil {
		return 0
	}
	return *s.Duration
}

// IsValid checks if the session has valid data.
func (s Session) IsValid() bool {
	if s.StartTime.IsZero() {
		return false
	}
	if s.EndTime != nil && s.EndTime.Before(s.StartTime) {
		return false
	}
	return true
}

// ComputeDuration returns the whole seconds between start and end,
// rounded down. Duration is always derived from the two timestamps,
// never supplied independently.
func ComputeDuration(start, end time.Time) int64 {
	return int64(end.Sub(start) / time.Second)
}
