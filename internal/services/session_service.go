package services

import (
	"context"
	"time"

	"deepwork/internal/domain"
	"deepwork/internal/errors"
	"deepwork/internal/repository/sqlite"
	"deepwork/internal/validation"
)

// sessionServiceImpl implements the SessionService interface
type sessionServiceImpl struct {
	repo      sqlite.Repository
	mapper    *domain.Mapper
	clock     Clock
	validator *validation.SessionValidator
}

// NewSessionService creates a new SessionService instance
func NewSessionService(repo sqlite.Repository) SessionService {
	return NewSessionServiceWithClock(repo, RealClock{})
}

// NewSessionServiceWithClock creates a SessionService with an injected clock
func NewSessionServiceWithClock(repo sqlite.Repository, clock Clock) SessionService {
	return &sessionServiceImpl{
		repo:      repo,
		mapper:    domain.NewMapper(),
		clock:     clock,
		validator: validation.NewSessionValidator(),
	}
}

// Current returns the open session, or nil when nothing is running.
// Running state lives in the store, never in process memory, so multiple
// server instances observe the same session.
func (s *sessionServiceImpl) Current(ctx context.Context) (*domain.Session, error) {
	dbSession, err := s.repo.GetOpenSession(ctx)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil, nil
		}
		return nil, err
	}

	session := s.mapper.Session.FromDatabase(*dbSession)
	return &session, nil
}

// Start opens a new session at the current time
func (s *sessionServiceImpl) Start(ctx context.Context, note string) (*domain.Session, error) {
	if err := s.validator.ValidateNote(note); err != nil {
		return nil, err
	}

	// Whole-second UTC timestamps round-trip the RFC3339 text column
	// without loss.
	startTime := s.clock.Now().UTC().Truncate(time.Second)

	dbSession, err := s.repo.StartSession(ctx, startTime, note)
	if err != nil {
		return nil, err
	}

	session := s.mapper.Session.FromDatabase(*dbSession)
	return &session, nil
}

// Stop closes the running session, deriving duration from the recorded
// start time and the current time, rounded down to whole seconds.
func (s *sessionServiceImpl) Stop(ctx context.Context) (*domain.Session, error) {
	dbSession, err := s.repo.GetOpenSession(ctx)
	if err != nil {
		return nil, err
	}

	endTime := s.clock.Now().UTC().Truncate(time.Second)
	duration := domain.ComputeDuration(dbSession.StartTime, endTime)

	if err := s.repo.CloseSession(ctx, dbSession.ID, endTime, duration); err != nil {
		return nil, err
	}

	session := s.mapper.Session.FromDatabase(*dbSession)
	closed := session.Close(endTime)
	closed.Duration = &duration
	return &closed, nil
}

// List returns all closed sessions, most recent first
func (s *sessionServiceImpl) List(ctx context.Context) ([]*domain.Session, error) {
	dbSessions, err := s.repo.ListClosedSessions(ctx)
	if err != nil {
		return nil, err
	}

	return s.mapper.Session.FromDatabaseSlice(dbSessions), nil
}

// Update overwrites a session record with corrected timestamps and note.
// Duration is always recomputed from the supplied pair; it cannot be set
// independently. No invariant re-check is done against other sessions.
func (s *sessionServiceImpl) Update(ctx context.Context, id int64, startTime, endTime time.Time, note string) (*domain.Session, error) {
	if err := s.validator.ValidateSessionForUpdate(id, startTime, endTime, note); err != nil {
		return nil, err
	}

	// Truncate before deriving duration so it always equals the stored
	// whole-second pair, even for fractional-second input.
	startTime = startTime.UTC().Truncate(time.Second)
	endTime = endTime.UTC().Truncate(time.Second)

	duration := domain.ComputeDuration(startTime, endTime)
	dbSession := &sqlite.Session{
		ID:        id,
		StartTime: startTime,
		EndTime:   &endTime,
		Duration:  &duration,
		Note:      note,
	}

	if err := s.repo.UpdateSession(ctx, dbSession); err != nil {
		return nil, err
	}

	session := s.mapper.Session.FromDatabase(*dbSession)
	return &session, nil
}

// Delete removes a session by id. Retried deletes succeed.
func (s *sessionServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.validator.ValidateSessionID(id); err != nil {
		return err
	}

	return s.repo.DeleteSession(ctx, id)
}
