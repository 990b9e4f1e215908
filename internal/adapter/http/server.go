package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/health-equity-map/internal/adapter/csvstore"
	"github.com/couchcryptid/health-equity-map/internal/domain"
	"github.com/couchcryptid/health-equity-map/internal/session"
)

// MapService is the subset of *session.Session the API serves.
type MapService interface {
	sharedobs.ReadinessChecker
	Measures(ctx context.Context, kind domain.MeasureKind) ([]domain.Measure, error)
	Select(ctx context.Context, sel domain.Selection) (domain.Snapshot, error)
	Snapshot() (domain.Snapshot, error)
}

// Server exposes the map API alongside health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        MapService
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /api routes.
func NewServer(addr string, svc MapService, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(svc))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/measures", s.handleMeasures(domain.KindHealth))
	mux.HandleFunc("GET /api/sdoh-measures", s.handleMeasures(domain.KindSDOH))
	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleMeasures(kind domain.MeasureKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		measures, err := s.svc.Measures(r.Context(), kind)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if measures == nil {
			measures = []domain.Measure{}
		}
		writeJSON(w, http.StatusOK, measures)
	}
}

// handleView selects a measure and returns the rendered snapshot.
// Query parameters: measure (required), kind (health|sdoh, default health),
// mode (county|state), zoom, companion.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	snap, err := s.svc.Select(r.Context(), sel)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.svc.Snapshot()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func parseSelection(r *http.Request) (domain.Selection, error) {
	q := r.URL.Query()
	sel := domain.Selection{
		MeasureID:   q.Get("measure"),
		Kind:        domain.MeasureKind(q.Get("kind")),
		CompanionID: q.Get("companion"),
	}
	if sel.Kind == "" {
		sel.Kind = domain.KindHealth
	}

	mode, err := domain.ParseViewMode(q.Get("mode"))
	if err != nil {
		return sel, err
	}
	sel.Mode = mode

	if z := q.Get("zoom"); z != "" {
		zoom, err := strconv.Atoi(z)
		if err != nil || zoom < 0 {
			return sel, errors.New("zoom must be a non-negative integer")
		}
		sel.Zoom = zoom
	}
	return sel, sel.Validate()
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidSelection):
		status = http.StatusBadRequest
	case errors.Is(err, csvstore.ErrMeasureNotFound), errors.Is(err, session.ErrNoSelection):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrSuperseded):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("api request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
