package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"deepwork/internal/domain"
)

const (
	// HeatmapWeeks is the number of week columns in the grid.
	HeatmapWeeks = 53

	// RecentLogLimit caps the display log at the N most recent sessions.
	RecentLogLimit = 20
)

// Fixed unit thresholds, in seconds, for relative time strings.
const (
	secondsPerYear   = 31536000
	secondsPerMonth  = 2592000
	secondsPerDay    = 86400
	secondsPerHour   = 3600
	secondsPerMinute = 60
)

// historyServiceImpl implements the HistoryService interface
type historyServiceImpl struct {
	sessions SessionService
	clock    Clock
}

// NewHistoryService creates a new HistoryService instance
func NewHistoryService(sessions SessionService) HistoryService {
	return NewHistoryServiceWithClock(sessions, RealClock{})
}

// NewHistoryServiceWithClock creates a HistoryService with an injected clock
func NewHistoryServiceWithClock(sessions SessionService, clock Clock) HistoryService {
	return &historyServiceImpl{
		sessions: sessions,
		clock:    clock,
	}
}

// Heatmap builds the activity grid from all closed sessions
func (h *historyServiceImpl) Heatmap(ctx context.Context) (*Heatmap, error) {
	sessions, err := h.sessions.List(ctx)
	if err != nil {
		return nil, err
	}

	return BuildHeatmap(sessions, h.clock.Now()), nil
}

// RecentLog builds the display log from the most recent closed sessions
func (h *historyServiceImpl) RecentLog(ctx context.Context) ([]*LogEntry, error) {
	sessions, err := h.sessions.List(ctx)
	if err != nil {
		return nil, err
	}

	return BuildRecentLog(sessions, h.clock.Now(), RecentLogLimit), nil
}

// DailyTotals buckets closed-session durations by UTC calendar date of
// the start time. Multiple sessions on the same date sum.
func DailyTotals(sessions []*domain.Session) map[string]int64 {
	totals := make(map[string]int64)
	for _, session := range sessions {
		date := session.StartTime.UTC().Format("2006-01-02")
		totals[date] += session.DurationSeconds()
	}
	return totals
}

// Band classifies a day's total seconds into an intensity band 0..4.
// Bands drive visual intensity only.
func Band(seconds int64) int {
	switch {
	case seconds == 0:
		return 0
	case seconds < secondsPerHour:
		return 1
	case seconds < 2*secondsPerHour:
		return 2
	case seconds < 4*secondsPerHour:
		return 3
	default:
		return 4
	}
}

// BuildHeatmap produces the 53-week grid ending on the given day. The
// grid start is 52 full weeks before today, rounded back to the most
// recent Sunday, so every column is one full Sunday-aligned week. Cells
// are column-major: 7 days top to bottom, then the next week.
func BuildHeatmap(sessions []*domain.Session, today time.Time) *Heatmap {
	totals := DailyTotals(sessions)

	today = today.UTC()
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	start = start.AddDate(0, 0, -52*7)
	for start.Weekday() != time.Sunday {
		start = start.AddDate(0, 0, -1)
	}

	cells := make([]HeatmapCell, 0, HeatmapWeeks*7)
	var months []MonthLabel
	var prevMonth time.Month

	current := start
	for week := 0; week < HeatmapWeeks; week++ {
		// A label is emitted whenever the month of a column's first day
		// differs from the previous column's, which yields the ragged
		// spacing of real calendar month boundaries.
		if current.Month() != prevMonth {
			months = append(months, MonthLabel{
				Label: current.Month().String()[:3],
				Week:  week,
			})
			prevMonth = current.Month()
		}

		for day := 0; day < 7; day++ {
			date := current.Format("2006-01-02")
			seconds := totals[date]
			cells = append(cells, HeatmapCell{
				Date:    date,
				Seconds: seconds,
				Band:    Band(seconds),
			})
			current = current.AddDate(0, 0, 1)
		}
	}

	return &Heatmap{
		StartDate: start.Format("2006-01-02"),
		Weeks:     HeatmapWeeks,
		Cells:     cells,
		Months:    months,
	}
}

// BuildRecentLog renders the limit most recent closed sessions. Sessions
// are expected in start_time descending order already.
func BuildRecentLog(sessions []*domain.Session, now time.Time, limit int) []*LogEntry {
	if len(sessions) > limit {
		sessions = sessions[:limit]
	}

	entries := make([]*LogEntry, 0, len(sessions))
	for _, session := range sessions {
		anchor := session.StartTime
		if session.EndTime != nil {
			anchor = *session.EndTime
		}

		entries = append(entries, &LogEntry{
			ID:           session.ID,
			DurationText: FormatDurationVerbose(session.DurationSeconds()),
			TimeAgo:      TimeAgo(anchor, now),
			Note:         session.Note,
			EndTime:      anchor,
		})
	}
	return entries
}

// FormatDurationVerbose renders whole seconds as "X hours and Y minutes".
// The hour term is omitted when zero; minutes always appear when hours is
// zero. Unit names are not singularized ("1 hours"), matching the wire
// format clients already parse.
func FormatDurationVerbose(seconds int64) string {
	hours := seconds / secondsPerHour
	minutes := (seconds % secondsPerHour) / secondsPerMinute

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d hours", hours))
	}
	if minutes > 0 || hours == 0 {
		parts = append(parts, fmt.Sprintf("%d minutes", minutes))
	}

	return strings.Join(parts, " and ")
}

// TimeAgo renders a relative time string using fixed unit thresholds,
// picking the largest unit whose ratio exceeds one.
func TimeAgo(t, now time.Time) string {
	seconds := now.Sub(t).Seconds()

	if interval := seconds / secondsPerYear; interval > 1 {
		return fmt.Sprintf("%d years ago", int64(interval))
	}
	if interval := seconds / secondsPerMonth; interval > 1 {
		return fmt.Sprintf("%d months ago", int64(interval))
	}
	if interval := seconds / secondsPerDay; interval > 1 {
		return fmt.Sprintf("%d days ago", int64(interval))
	}
	if interval := seconds / secondsPerHour; interval > 1 {
		return fmt.Sprintf("%d hours ago", int64(interval))
	}
	if interval := seconds / secondsPerMinute; interval > 1 {
		return fmt.Sprintf("%d minutes ago", int64(interval))
	}
	return "just now"
}
