package server

import (
	"context"
	"net/http"
	"time"

	"deepwork/internal/metrics"
	"deepwork/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Config holds the HTTP server configuration.
type Config struct {
	ListenAddr     string
	AllowedOrigins []string
}

// Server exposes the session store and history aggregator over HTTP/JSON.
type Server struct {
	config   Config
	sessions services.SessionService
	history  services.HistoryService
	server   *http.Server
	router   *mux.Router
	logger   zerolog.Logger
}

// NewServer creates a new API server.
func NewServer(cfg Config, sessions services.SessionService, history services.HistoryService, logger zerolog.Logger) *Server {
	router := mux.NewRouter()

	s := &Server{
		config:   cfg,
		sessions: sessions,
		history:  history,
		router:   router,
		logger:   logger.With().Str("component", "server").Logger(),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Use(LoggingMiddleware(s.logger))
	s.router.Use(MetricsMiddleware())
	s.router.Use(CORSMiddleware(s.config.AllowedOrigins))

	s.router.HandleFunc("/api/status", s.handleStatus).Methods("GET")
	s.router.HandleFunc("/api/start", s.handleStart).Methods("POST", "OPTIONS")
	s.router.HandleFunc("/api/stop", s.handleStop).Methods("POST", "OPTIONS")
	s.router.HandleFunc("/api/sessions", s.handleListSessions).Methods("GET")
	s.router.HandleFunc("/api/sessions/{id:[0-9]+}", s.handleUpdateSession).Methods("PUT", "OPTIONS")
	s.router.HandleFunc("/api/sessions/{id:[0-9]+}", s.handleDeleteSession).Methods("DELETE", "OPTIONS")
	s.router.HandleFunc("/api/heatmap", s.handleHeatmap).Methods("GET")
	s.router.HandleFunc("/api/log", s.handleRecentLog).Methods("GET")

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", metrics.Handler()).Methods("GET")
}

// Router returns the configured router, for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins listening for requests. It blocks until the server is
// shut down or fails.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.config.ListenAddr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
