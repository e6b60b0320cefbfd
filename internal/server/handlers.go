package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"deepwork/internal/domain"
	"deepwork/internal/errors"
	"deepwork/internal/metrics"
	"deepwork/internal/services"
	"deepwork/internal/validation"

	"github.com/gorilla/mux"
)

// errorResponse is the wire shape for all error replies.
type errorResponse struct {
	Error string `json:"error"`
}

// statusResponse reports whether a session is running.
type statusResponse struct {
	Running bool            `json:"running"`
	Session *domain.Session `json:"session,omitempty"`
}

// startRequest carries the optional note for a new session.
type startRequest struct {
	Note string `json:"note"`
}

// startResponse confirms a started session.
type startResponse struct {
	Success   bool   `json:"success"`
	ID        int64  `json:"id"`
	StartTime string `json:"start_time"`
}

// stopResponse confirms a stopped session and its duration in seconds.
type stopResponse struct {
	Success  bool  `json:"success"`
	Duration int64 `json:"duration"`
}

// updateRequest carries a full session correction.
type updateRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Note      string `json:"note"`
}

// successResponse is the generic success reply.
type successResponse struct {
	Success bool `json:"success"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}

// writeBadRequest maps a client error to a 400 with its user-facing message.
func writeBadRequest(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, errors.GetUserMessage(err))
}

// writeInternalError logs errors that indicate a system problem and replies
// with a sanitized message; database internals never reach the wire.
func (s *Server) writeInternalError(w http.ResponseWriter, err error, msg string) {
	if errors.ShouldLogError(err) {
		s.logger.Error().Err(err).Msg(msg)
	}
	writeError(w, http.StatusInternalServerError, errors.GetUserMessage(err))
}

// parseSessionID extracts the id path variable.
func parseSessionID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.NewInvalidInputError("id", raw, "must be a positive integer")
	}
	return id, nil
}

// handleStatus reports the open session, if any.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Current(r.Context())
	if err != nil {
		s.writeInternalError(w, err, "Failed to fetch status")
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Running: session != nil,
		Session: session,
	})
}

// handleStart opens a new session.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	// An absent body means an empty note; a malformed one is rejected.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeBadRequest(w, errors.NewInvalidInputError("body", nil, "must be valid JSON"))
		return
	}

	session, err := s.sessions.Start(r.Context(), req.Note)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeConflict) || validation.IsValidationError(err) {
			writeBadRequest(w, err)
			return
		}
		s.writeInternalError(w, err, "Failed to start session")
		return
	}

	metrics.SessionsStarted.Inc()
	s.logger.Info().Int64("id", session.ID).Msg("Session started")

	writeJSON(w, http.StatusOK, startResponse{
		Success:   true,
		ID:        session.ID,
		StartTime: session.StartTime.Format(time.RFC3339),
	})
}

// handleStop closes the running session.
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Stop(r.Context())
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			writeError(w, http.StatusBadRequest, "No running session")
			return
		}
		s.writeInternalError(w, err, "Failed to stop session")
		return
	}

	duration := session.DurationSeconds()
	metrics.SessionsStopped.Inc()
	metrics.SessionDuration.Observe(float64(duration))
	s.logger.Info().Int64("id", session.ID).Int64("duration", duration).Msg("Session stopped")

	writeJSON(w, http.StatusOK, stopResponse{
		Success:  true,
		Duration: duration,
	})
}

// handleListSessions returns all closed sessions, most recent first.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessions.List(r.Context())
	if err != nil {
		s.writeInternalError(w, err, "Failed to list sessions")
		return
	}

	if sessions == nil {
		sessions = []*domain.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

// handleUpdateSession overwrites a session's timestamps and note.
func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	id, err := parseSessionID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, errors.NewInvalidInputError("body", nil, "must be valid JSON"))
		return
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeBadRequest(w, errors.NewInvalidInputError("start_time", req.StartTime, "expected RFC3339 timestamp"))
		return
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		writeBadRequest(w, errors.NewInvalidInputError("end_time", req.EndTime, "expected RFC3339 timestamp"))
		return
	}

	if _, err := s.sessions.Update(r.Context(), id, startTime, endTime, req.Note); err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		if validation.IsValidationError(err) {
			writeBadRequest(w, err)
			return
		}
		s.writeInternalError(w, err, "Failed to update session")
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// handleDeleteSession removes a session. Deleting an id that does not
// exist still reports success, so client retries are harmless.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := parseSessionID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	if err := s.sessions.Delete(r.Context(), id); err != nil {
		if validation.IsValidationError(err) {
			writeBadRequest(w, err)
			return
		}
		s.writeInternalError(w, err, "Failed to delete session")
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// handleHeatmap returns the 53-week activity grid.
func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	heatmap, err := s.history.Heatmap(r.Context())
	if err != nil {
		s.writeInternalError(w, err, "Failed to build heatmap")
		return
	}

	writeJSON(w, http.StatusOK, heatmap)
}

// handleRecentLog returns the recent activity log.
func (s *Server) handleRecentLog(w http.ResponseWriter, r *http.Request) {
	entries, err := s.history.RecentLog(r.Context())
	if err != nil {
		s.writeInternalError(w, err, "Failed to build recent log")
		return
	}

	if entries == nil {
		entries = []*services.LogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
