// Package api serves the metrics exposition and the event ingestion endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"git.home.luguber.info/inful/eventmetrics/internal/config"
	merrors "git.home.luguber.info/inful/eventmetrics/internal/errors"
	"git.home.luguber.info/inful/eventmetrics/internal/ingest"
	"git.home.luguber.info/inful/eventmetrics/internal/logfields"
	"git.home.luguber.info/inful/eventmetrics/internal/metrics"
)

// MaxEventBytes bounds a single posted event body.
const MaxEventBytes = 1 << 20

// Server exposes the registry and accepts events over HTTP.
type Server struct {
	Addr       string
	router     *chi.Mux
	server     *http.Server
	registry   *metrics.Registry
	dispatcher *ingest.Dispatcher
	errors     *merrors.HTTPErrorAdapter
	logger     *slog.Logger
	started    time.Time
}

// NewServer wires the routes for cfg. dispatcher may be nil, in which case
// the ingestion endpoints are not mounted.
func NewServer(cfg config.HTTPConfig, reg *metrics.Registry, dispatcher *ingest.Dispatcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		Addr:       cfg.Addr,
		router:     chi.NewRouter(),
		registry:   reg,
		dispatcher: dispatcher,
		errors:     merrors.NewHTTPErrorAdapter(logger),
		logger:     logger,
		started:    time.Now(),
	}

	s.setupRoutes(cfg.MetricsPath)

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes(metricsPath string) {
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(RequestLogger(s.logger))
	s.router.Use(Recoverer(s.logger, s.errors))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, metricsPath, metrics.HTTPHandler(s.registry))

	if s.dispatcher != nil {
		s.router.Post("/events", s.handleUserEvent)
		s.router.Post("/admin-events", s.handleAdminEvent)
	}
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Serve accepts connections on l until Shutdown.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("HTTP server listening", slog.String("addr", l.Addr().String()))
	if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type healthResponse struct {
	Status   string  `json:"status"`
	Uptime   float64 `json:"uptime_seconds"`
	Counters int     `json:"counters"`
	Gauges   int     `json:"gauges"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Uptime:   time.Since(s.started).Seconds(),
		Counters: len(s.registry.CounterNames()),
		Gauges:   len(s.registry.GaugeNames()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requestAttrs(r *http.Request) []any {
	return []any{
		logfields.Method(r.Method),
		logfields.Path(r.URL.Path),
		logfields.RequestID(middleware.GetReqID(r.Context())),
	}
}
