package sqlite

import (
	"database/sql"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// ScanSession scans a single session from a database row
func ScanSession(scanner Scanner) (*Session, error) {
	session := &Session{}
	var startTime string
	var endTime sql.NullString
	var duration sql.NullInt64
	var note sql.NullString

	err := scanner.Scan(
		&session.ID,
		&startTime,
		&endTime,
		&duration,
		&note,
	)
	if err != nil {
		return nil, err
	}

	session.StartTime, err = ParseTimeFromDB(startTime)
	if err != nil {
		return nil, err
	}

	if endTime.Valid {
		t, err := ParseTimeFromDB(endTime.String)
		if err != nil {
			return nil, err
		}
		session.EndTime = &t
	}

	if duration.Valid {
		d := duration.Int64
		session.Duration = &d
	}

	if note.Valid {
		session.Note = note.String
	}

	return session, nil
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// ScanSessions scans multiple sessions from database rows
func ScanSessions(rows Rows) ([]*Session, error) {
	var sessions []*Session
	for rows.Next() {
		session, err := ScanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}
