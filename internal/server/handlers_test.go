package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"deepwork/internal/repository/sqlite"
	"deepwork/internal/services"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T) (http.Handler, *services.TestClock) {
	dbPath := filepath.Join(t.TempDir(), "deepwork.db")
	repo, err := sqlite.New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	clock := &services.TestClock{CurrentTime: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	sessions := services.NewSessionServiceWithClock(repo, clock)
	history := services.NewHistoryServiceWithClock(sessions, clock)

	srv := NewServer(Config{ListenAddr: "127.0.0.1:0"}, sessions, history, zerolog.Nop())
	return srv.Router(), clock
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestStatusEndpoint(t *testing.T) {
	handler, _ := setupTestServer(t)

	rec := doRequest(t, handler, "GET", "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]interface{}
	decodeBody(t, rec, &status)
	assert.Equal(t, false, status["running"])
	assert.NotContains(t, status, "session")
}

func TestStartEndpoint(t *testing.T) {
	handler, _ := setupTestServer(t)

	rec := doRequest(t, handler, "POST", "/api/start", map[string]string{"note": "writing"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	decodeBody(t, rec, &resp)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(1), resp["id"])
	assert.Equal(t, "2026-03-02T09:00:00Z", resp["start_time"])

	// Status now reports the running session
	rec = doRequest(t, handler, "GET", "/api/status", nil)
	var status map[string]interface{}
	decodeBody(t, rec, &status)
	assert.Equal(t, true, status["running"])
	session := status["session"].(map[string]interface{})
	assert.Equal(t, "writing", session["note"])
}

func TestStartEndpoint_EmptyBody(t *testing.T) {
	handler, _ := setupTestServer(t)

	rec := doRequest(t, handler, "POST", "/api/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestStartEndpoint_MalformedBody(t *testing.T) {
	handler, _ := setupTestServer(t)

	req := httptest.NewRequest("POST", "/api/start", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp["error"], "body")

	// No session was started
	rec = doRequest(t, handler, "GET", "/api/status", nil)
	var status map[string]interface{}
	decodeBody(t, rec, &status)
	assert.Equal(t, false, status["running"])
}

func TestStartEndpoint_Conflict(t *testing.T) {
	handler, _ := setupTestServer(t)

	rec := doRequest(t, handler, "POST", "/api/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, handler, "POST", "/api/start", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Equal(t, "Session already running", resp["error"])
}

func TestStopEndpoint(t *testing.T) {
	handler, clock := setupTestServer(t)

	rec := doRequest(t, handler, "POST", "/api/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	clock.CurrentTime = clock.CurrentTime.Add(125 * time.Second)
	rec = doRequest(t, handler, "POST", "/api/stop", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	decodeBody(t, rec, &resp)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(125), resp["duration"])
}

func TestStopEndpoint_NoRunningSession(t *testing.T) {
	handler, _ := setupTestServer(t)

	rec := doRequest(t, handler, "POST", "/api/stop", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Equal(t, "No running session", resp["error"])
}

func TestListSessionsEndpoint(t *testing.T) {
	handler, clock := setupTestServer(t)

	// Empty store returns an empty array, not null
	rec := doRequest(t, handler, "GET", "/api/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", string(bytes.TrimSpace(rec.Body.Bytes())))

	doRequest(t, handler, "POST", "/api/start", map[string]string{"note": "focus"})
	clock.CurrentTime = clock.CurrentTime.Add(time.Hour)
	doRequest(t, handler, "POST", "/api/stop", nil)

	rec = doRequest(t, handler, "GET", "/api/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var sessions []map[string]interface{}
	decodeBody(t, rec, &sessions)
	require.Len(t, sessions, 1)
	assert.Equal(t, "focus", sessions[0]["note"])
	assert.Equal(t, float64(3600), sessions[0]["duration"])
}

func TestUpdateSessionEndpoint(t *testing.T) {
	handler, clock := setupTestServer(t)

	doRequest(t, handler, "POST", "/api/start", nil)
	clock.CurrentTime = clock.CurrentTime.Add(time.Hour)
	doRequest(t, handler, "POST", "/api/stop", nil)

	rec := doRequest(t, handler, "PUT", "/api/sessions/1", map[string]string{
		"start_time": "2026-03-02T08:00:00Z",
		"end_time":   "2026-03-02T10:30:00Z",
		"note":       "corrected",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	decodeBody(t, rec, &resp)
	assert.Equal(t, true, resp["success"])

	// The list reflects the recomputed duration
	rec = doRequest(t, handler, "GET", "/api/sessions", nil)
	var sessions []map[string]interface{}
	decodeBody(t, rec, &sessions)
	require.Len(t, sessions, 1)
	assert.Equal(t, float64(9000), sessions[0]["duration"])
	assert.Equal(t, "corrected", sessions[0]["note"])
}

func TestUpdateSessionEndpoint_NotFound(t *testing.T) {
	handler, _ := setupTestServer(t)

	rec := doRequest(t, handler, "PUT", "/api/sessions/999", map[string]string{
		"start_time": "2026-03-02T08:00:00Z",
		"end_time":   "2026-03-02T10:00:00Z",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Equal(t, "Session not found", resp["error"])
}

func TestUpdateSessionEndpoint_BadTimestamps(t *testing.T) {
	handler, _ := setupTestServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{
			name: "malformed start_time",
			body: map[string]string{"start_time": "yesterday", "end_time": "2026-03-02T10:00:00Z"},
		},
		{
			name: "missing end_time",
			body: map[string]string{"start_time": "2026-03-02T08:00:00Z"},
		},
		{
			name: "end before start",
			body: map[string]string{"start_time": "2026-03-02T10:00:00Z", "end_time": "2026-03-02T08:00:00Z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, handler, "PUT", "/api/sessions/1", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestUpdateSessionEndpoint_MalformedBody(t *testing.T) {
	handler, _ := setupTestServer(t)

	req := httptest.NewRequest("PUT", "/api/sessions/1", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp["error"], "body")
}

func TestDeleteSessionEndpoint_IDOverflow(t *testing.T) {
	handler, _ := setupTestServer(t)

	// Matches the numeric route pattern but overflows int64
	rec := doRequest(t, handler, "DELETE", "/api/sessions/99999999999999999999", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp["error"], "id")
}

func TestDatabaseErrorIsSanitized(t *testing.T) {
	repo, err := sqlite.New(filepath.Join(t.TempDir(), "deepwork.db"))
	require.NoError(t, err)

	clock := &services.TestClock{CurrentTime: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	sessions := services.NewSessionServiceWithClock(repo, clock)
	history := services.NewHistoryServiceWithClock(sessions, clock)
	srv := NewServer(Config{ListenAddr: "127.0.0.1:0"}, sessions, history, zerolog.Nop())

	// A closed database makes every query fail
	require.NoError(t, repo.Close())

	rec := doRequest(t, srv.Router(), "GET", "/api/status", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Equal(t, "A database error occurred. Please try again.", resp["error"])
	assert.NotContains(t, resp["error"], "sql")
}

func TestDeleteSessionEndpoint(t *testing.T) {
	handler, clock := setupTestServer(t)

	doRequest(t, handler, "POST", "/api/start", nil)
	clock.CurrentTime = clock.CurrentTime.Add(time.Hour)
	doRequest(t, handler, "POST", "/api/stop", nil)

	rec := doRequest(t, handler, "DELETE", "/api/sessions/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Deleting the same id again still succeeds
	rec = doRequest(t, handler, "DELETE", "/api/sessions/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, handler, "GET", "/api/sessions", nil)
	assert.Equal(t, "[]", string(bytes.TrimSpace(rec.Body.Bytes())))
}

func TestHeatmapEndpoint(t *testing.T) {
	handler, clock := setupTestServer(t)

	doRequest(t, handler, "POST", "/api/start", nil)
	clock.CurrentTime = clock.CurrentTime.Add(90 * time.Minute)
	doRequest(t, handler, "POST", "/api/stop", nil)

	rec := doRequest(t, handler, "GET", "/api/heatmap", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var heatmap struct {
		StartDate string `json:"start_date"`
		Weeks     int    `json:"weeks"`
		Cells     []struct {
			Date    string `json:"date"`
			Seconds int64  `json:"seconds"`
			Band    int    `json:"band"`
		} `json:"cells"`
	}
	decodeBody(t, rec, &heatmap)
	assert.Equal(t, services.HeatmapWeeks, heatmap.Weeks)
	require.Len(t, heatmap.Cells, services.HeatmapWeeks*7)

	var found bool
	for _, cell := range heatmap.Cells {
		if cell.Date == "2026-03-02" {
			found = true
			assert.Equal(t, int64(5400), cell.Seconds)
			assert.Equal(t, 2, cell.Band)
		}
	}
	assert.True(t, found)
}

func TestRecentLogEndpoint(t *testing.T) {
	handler, clock := setupTestServer(t)

	// Empty store returns an empty array
	rec := doRequest(t, handler, "GET", "/api/log", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", string(bytes.TrimSpace(rec.Body.Bytes())))

	doRequest(t, handler, "POST", "/api/start", map[string]string{"note": "reading"})
	clock.CurrentTime = clock.CurrentTime.Add(30 * time.Minute)
	doRequest(t, handler, "POST", "/api/stop", nil)
	clock.CurrentTime = clock.CurrentTime.Add(2 * time.Hour)

	rec = doRequest(t, handler, "GET", "/api/log", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []map[string]interface{}
	decodeBody(t, rec, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "30 minutes", entries[0]["duration_text"])
	assert.Equal(t, "2 hours ago", entries[0]["time_ago"])
	assert.Equal(t, "reading", entries[0]["note"])
}

func TestMethodNotAllowed(t *testing.T) {
	handler, _ := setupTestServer(t)

	rec := doRequest(t, handler, "GET", "/api/start", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	handler, _ := setupTestServer(t)

	rec := doRequest(t, handler, "GET", "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	handler, _ := setupTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/api/start", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSessionLifecycle(t *testing.T) {
	handler, clock := setupTestServer(t)

	// Start, stop and restart over three days
	for day := 0; day < 3; day++ {
		rec := doRequest(t, handler, "POST", "/api/start", map[string]string{
			"note": fmt.Sprintf("day %d", day),
		})
		require.Equal(t, http.StatusOK, rec.Code)

		clock.CurrentTime = clock.CurrentTime.Add(time.Hour)
		rec = doRequest(t, handler, "POST", "/api/stop", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		clock.CurrentTime = clock.CurrentTime.Add(23 * time.Hour)
	}

	rec := doRequest(t, handler, "GET", "/api/sessions", nil)
	var sessions []map[string]interface{}
	decodeBody(t, rec, &sessions)
	require.Len(t, sessions, 3)

	// Most recent first
	assert.Equal(t, "day 2", sessions[0]["note"])
	assert.Equal(t, "day 0", sessions[2]["note"])
}
