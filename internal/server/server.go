package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/user/moviedash-go/internal/dashboard"
	"github.com/user/moviedash-go/internal/metrics"
	"github.com/user/moviedash-go/internal/pipeline"
	"github.com/user/moviedash-go/internal/store"
)

// Dashboards builds dashboards for HTTP requests
type Dashboards interface {
	Build(req dashboard.Request) (*pipeline.Dashboard, error)
	Options() dashboard.Options
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status       string `json:"status"`
	Database     string `json:"database"`
	MoviesLoaded int    `json:"movies_loaded"`
	Uptime       string `json:"uptime"`
}

// ErrorResponse is the body of a failed API request
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server serves the dashboard API, the HTML report, health checks and metrics
type Server struct {
	store      store.Store
	dashboards Dashboards
	router     *http.ServeMux
	server     *http.Server
	startTime  time.Time
}

// NewServer creates a new HTTP server instance. store may be nil when no
// database is configured.
func NewServer(store store.Store, dashboards Dashboards) *Server {
	s := &Server{
		store:      store,
		dashboards: dashboards,
		router:     http.NewServeMux(),
		startTime:  time.Now(),
	}

	s.setupRoutes()
	return s
}

// Handler returns the server's root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.HandleFunc("/api/options", s.handleOptions)
	s.router.HandleFunc("/api/dashboard", s.handleDashboard)
	s.router.HandleFunc("/api/movies.csv", s.handleMoviesCSV)
	s.router.HandleFunc("/", s.handleReport)
}

// Start begins listening on the specified port
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Int("port", port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	log.Info().Msg("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// handleHealth reports database connectivity, loaded movies and uptime
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dbStatus := "disabled"
	if s.store != nil {
		dbStatus = "healthy"
		if err := s.store.Ping(ctx); err != nil {
			dbStatus = fmt.Sprintf("unhealthy: %v", err)
		}
	}

	status := "healthy"
	if dbStatus != "healthy" && dbStatus != "disabled" {
		status = "unhealthy"
	}

	response := HealthResponse{
		Status:       status,
		Database:     dbStatus,
		MoviesLoaded: s.dashboards.Options().Total,
		Uptime:       time.Since(s.startTime).Round(time.Second).String(),
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, response)
}

// handleOptions returns the filter controls of the loaded table
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dashboards.Options())
}

// handleDashboard returns every table of one pipeline run as JSON
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, ok := s.build(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleMoviesCSV returns the filtered data table as CSV
func (s *Server) handleMoviesCSV(w http.ResponseWriter, r *http.Request) {
	d, ok := s.build(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="movies.csv"`)
	if err := pipeline.WriteCSV(w, d.Movies); err != nil {
		log.Error().Err(err).Msg("Failed to write movies CSV")
		metrics.RecordError("http")
	}
}

// build parses the request and runs the pipeline, writing a 400 on bad input
func (s *Server) build(w http.ResponseWriter, r *http.Request) (*pipeline.Dashboard, bool) {
	req, err := ParseRequest(r.URL.Query())
	if err == nil {
		var d *pipeline.Dashboard
		if d, err = s.dashboards.Build(req); err == nil {
			return d, true
		}
	}

	status := http.StatusInternalServerError
	if errors.Is(err, ErrBadParam) || errors.Is(err, dashboard.ErrInvalidYearRange) || errors.Is(err, dashboard.ErrInvalidMatch) {
		status = http.StatusBadRequest
	}
	log.Warn().Err(err).Str("path", r.URL.Path).Str("query", r.URL.RawQuery).Msg("Rejected dashboard request")
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
	return nil, false
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// GetUptime returns the server uptime
func (s *Server) GetUptime() time.Duration {
	return time.Since(s.startTime)
}
