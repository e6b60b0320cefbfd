package domain

import (
	"deepwork/internal/repository/sqlite"
)

// SessionMapper handles conversion between domain and database Session models.
type SessionMapper struct{}

// NewSessionMapper creates a new SessionMapper instance.
func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

// ToDatabase converts a domain Session to a database Session.
func (m *SessionMapper) ToDatabase(domainSession Session) sqlite.Session {
	return sqlite.Session{
		ID:        domainSession.ID,
		StartTime: domainSession.StartTime,
		EndTime:   domainSession.EndTime,
		Duration:  domainSession.Duration,
		Note:      domainSession.Note,
	}
}

// FromDatabase converts a database Session to a domain Session.
func (m *SessionMapper) FromDatabase(dbSession sqlite.Session) Session {
	return Session{
		ID:        dbSession.ID,
		StartTime: dbSession.StartTime,
		EndTime:   dbSession.EndTime,
		Duration:  dbSession.Duration,
		Note:      dbSession.Note,
	}
}

// FromDatabaseSlice converts a slice of database Sessions to domain Sessions.
func (m *SessionMapper) FromDatabaseSlice(dbSessions []*sqlite.Session) []*Session {
	domainSessions := make([]*Session, len(dbSessions))
	for i, dbSession := range dbSessions {
		domainSession := m.FromDatabase(*dbSession)
		domainSessions[i] = &domainSession
	}
	return domainSessions
}

// Mapper provides a unified interface for all mapping operations.
type Mapper struct {
	Session *SessionMapper
}

// NewMapper creates a new Mapper instance with all sub-mappers.
func NewMapper() *Mapper {
	return &Mapper{
		Session: NewSessionMapper(),
	}
}
