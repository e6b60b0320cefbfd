package sqlite

import "time"

// Session represents a single deep work session row.
// EndTime and Duration are NULL while the session is open.
type Session struct {
	ID        int64
	StartTime time.Time
	EndTime   *time.Time
	Duration  *int64 // whole seconds, set when the session is closed
	Note      string
}
