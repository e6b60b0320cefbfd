package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"deepwork/internal/errors"
	"deepwork/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Repository defines the interface for session store operations
type Repository interface {
	// StartSession atomically inserts a new open session if and only if
	// no open session exists. Returns a conflict error otherwise.
	StartSession(ctx context.Context, startTime time.Time, note string) (*Session, error)

	// GetOpenSession returns the most recent session without an end time,
	// or a not found error if no session is running.
	GetOpenSession(ctx context.Context) (*Session, error)

	// CloseSession sets the end time and duration on the open session
	// with the given id. Returns a not found error if the session does
	// not exist or is already closed.
	CloseSession(ctx context.Context, id int64, endTime time.Time, duration int64) error

	// Read operations
	GetSession(ctx context.Context, id int64) (*Session, error)
	ListClosedSessions(ctx context.Context) ([]*Session, error)

	// UpdateSession overwrites start time, end time, duration and note.
	UpdateSession(ctx context.Context, session *Session) error

	// DeleteSession removes a session. Deleting an id that does not
	// exist is not an error.
	DeleteSession(ctx context.Context, id int64) error

	// Utility
	Close() error
}

// SQLiteRepository implements the Repository interface
type SQLiteRepository struct {
	db *sql.DB
}

// New creates a new SQLite repository instance
func New(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}

	// Run migrations
	if err := migrations.RunMigrations(db); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// StartSession inserts a new open session unless one is already open.
// The existence check and the insert are a single statement, so two
// near-simultaneous starts cannot both succeed.
func (r *SQLiteRepository) StartSession(ctx context.Context, startTime time.Time, note string) (*Session, error) {
	query := `
	INSERT INTO sessions (start_time, note)
	SELECT ?, ?
	WHERE NOT EXISTS (SELECT 1 FROM sessions WHERE end_time IS NULL)`

	result, err := r.db.ExecContext(ctx, query, FormatTimeForDB(startTime), note)
	if err != nil {
		return nil, HandleDatabaseError("start session", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, HandleDatabaseError("get rows affected", err)
	}
	if rows == 0 {
		return nil, errors.NewConflictError("Session already running")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, HandleDatabaseError("get last insert ID", err)
	}

	return &Session{
		ID:        id,
		StartTime: startTime,
		Note:      note,
	}, nil
}

// GetOpenSession returns the newest open session. Ordering by id descending
// is defensive: if the single-open invariant were ever violated, the most
// recent open session wins.
func (r *SQLiteRepository) GetOpenSession(ctx context.Context) (*Session, error) {
	query := `
	SELECT id, start_time, end_time, duration, note
	FROM sessions
	WHERE end_time IS NULL
	ORDER BY id DESC
	LIMIT 1`

	return QuerySingle(ctx, r.db, query, ScanSession, "open session", "current")
}

// CloseSession closes the session with the given id. The end_time IS NULL
// guard makes this a compare-and-swap on open-ness: a session that was
// closed concurrently reports not found instead of being overwritten.
func (r *SQLiteRepository) CloseSession(ctx context.Context, id int64, endTime time.Time, duration int64) error {
	query := `
	UPDATE sessions
	SET end_time = ?, duration = ?
	WHERE id = ? AND end_time IS NULL`

	return ExecuteWithRowsAffected(ctx, r.db, query, "open session", fmt.Sprintf("%d", id), FormatTimeForDB(endTime), duration, id)
}

// GetSession retrieves a session by ID
func (r *SQLiteRepository) GetSession(ctx context.Context, id int64) (*Session, error) {
	query := `
	SELECT id, start_time, end_time, duration, note
	FROM sessions
	WHERE id = ?`

	return QuerySingle(ctx, r.db, query, ScanSession, "session", fmt.Sprintf("%d", id), id)
}

// ListClosedSessions retrieves all closed sessions, most recent first.
// Open sessions are excluded so an in-progress session never shows up in
// history or aggregation.
func (r *SQLiteRepository) ListClosedSessions(ctx context.Context) ([]*Session, error) {
	query := `
	SELECT id, start_time, end_time, duration, note
	FROM sessions
	WHERE end_time IS NOT NULL
	ORDER BY start_time DESC`

	return QueryMultiple(ctx, r.db, query, ScanSessions, "sessions")
}

// UpdateSession overwrites an existing session record
func (r *SQLiteRepository) UpdateSession(ctx context.Context, session *Session) error {
	query := `
	UPDATE sessions
	SET start_time = ?, end_time = ?, duration = ?, note = ?
	WHERE id = ?`

	var duration interface{}
	if session.Duration != nil {
		duration = *session.Duration
	}

	return ExecuteWithRowsAffected(ctx, r.db, query, "session", fmt.Sprintf("%d", session.ID),
		FormatTimeForDB(session.StartTime), FormatTimePtrForDB(session.EndTime), duration, session.Note, session.ID)
}

// DeleteSession deletes a session by ID. Deletes are idempotent: removing
// an id that is already gone succeeds.
func (r *SQLiteRepository) DeleteSession(ctx context.Context, id int64) error {
	query := `DELETE FROM sessions WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return HandleDatabaseError("delete session", err)
	}
	return nil
}
