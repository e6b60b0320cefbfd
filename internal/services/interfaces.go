package services

import (
	"context"
	"time"

	"deepwork/internal/domain"
)

// SessionService owns the session lifecycle: at most one open session
// exists at any time, and closed sessions carry a derived duration.
type SessionService interface {
	// Current returns the open session, or nil if nothing is running.
	Current(ctx context.Context) (*domain.Session, error)

	// Start opens a new session with the given note. Fails with a
	// conflict error if a session is already running.
	Start(ctx context.Context, note string) (*domain.Session, error)

	// Stop closes the running session and returns it with its duration
	// set. Fails with a not found error if nothing is running.
	Stop(ctx context.Context) (*domain.Session, error)

	// List returns all closed sessions ordered by start time descending.
	List(ctx context.Context) ([]*domain.Session, error)

	// Update overwrites a session's timestamps and note, recomputing the
	// duration from the supplied pair.
	Update(ctx context.Context, id int64, startTime, endTime time.Time, note string) (*domain.Session, error)

	// Delete removes a session. Deleting an unknown id succeeds.
	Delete(ctx context.Context, id int64) error
}

// HeatmapCell is one day in the heatmap grid.
type HeatmapCell struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Seconds int64  `json:"seconds"`
	Band    int    `json:"band"` // 0..4 intensity band
}

// MonthLabel marks the week column where a new calendar month begins.
type MonthLabel struct {
	Label string `json:"label"`
	Week  int    `json:"week"`
}

// Heatmap is a 53-week by 7-day activity grid ending today.
type Heatmap struct {
	StartDate string        `json:"start_date"` // first cell, always a Sunday
	Weeks     int           `json:"weeks"`
	Cells     []HeatmapCell `json:"cells"` // column-major: 7 days per week
	Months    []MonthLabel  `json:"months"`
}

// LogEntry is one row of the recent activity log.
type LogEntry struct {
	ID           int64     `json:"id"`
	DurationText string    `json:"duration_text"`
	TimeAgo      string    `json:"time_ago"`
	Note         string    `json:"note"`
	EndTime      time.Time `json:"end_time"`
}

// HistoryService derives the heatmap and display log from closed sessions.
type HistoryService interface {
	Heatmap(ctx context.Context) (*Heatmap, error)
	RecentLog(ctx context.Context) ([]*LogEntry, error)
}
