package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/quartzmkt/resolver-core/internal/audit"
	"github.com/quartzmkt/resolver-core/pkg/healthprobe"
	"github.com/quartzmkt/resolver-core/pkg/types"
)

// StatusSource is the read-only surface the Switch Controller exposes to
// the status endpoint.
type StatusSource interface {
	Phase() types.SwitchPhase
	Current() *types.ResolvedMarket
	StatusLine() string
}

// FreezeSource reports the freeze gate's current state.
type FreezeSource interface {
	IsFrozen() bool
	LastFreeze() (reason, message string)
}

// HistorySource backs /status/history with the bounded recent-event window
// an audit.CachingStorage keeps.
type HistorySource interface {
	RecentEvents(series string) []audit.Event
}

// Server provides HTTP endpoints for health, metrics, and switch-controller
// status.
type Server struct {
	server        *http.Server
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
}

// Config holds server configuration.
type Config struct {
	Port          string
	Logger        *zap.Logger
	HealthChecker *healthprobe.HealthChecker
	Status        StatusSource
	Freeze        FreezeSource
	History       HistorySource
	Series        string
}

// New creates a new HTTP server.
func New(cfg *Config) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/health", cfg.HealthChecker.Health())
	r.Get("/ready", cfg.HealthChecker.Ready())

	if cfg.Status != nil {
		r.Get("/status", statusHandler(cfg))
	}
	if cfg.History != nil {
		r.Get("/status/history", historyHandler(cfg))
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{
		server:        server,
		logger:        cfg.Logger,
		healthChecker: cfg.HealthChecker,
	}
}

// statusResponse is the /status endpoint's wire shape.
type statusResponse struct {
	Series        string                `json:"series"`
	Phase         types.SwitchPhase     `json:"phase"`
	Frozen        bool                  `json:"frozen"`
	FreezeReason  string                `json:"freeze_reason,omitempty"`
	FreezeMessage string                `json:"freeze_message,omitempty"`
	Current       *types.ResolvedMarket `json:"current,omitempty"`
	StatusLine    string                `json:"status_line"`
}

func statusHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{
			Series:     cfg.Series,
			Phase:      cfg.Status.Phase(),
			Current:    cfg.Status.Current(),
			StatusLine: cfg.Status.StatusLine(),
		}

		if cfg.Freeze != nil {
			resp.Frozen = cfg.Freeze.IsFrozen()
			if resp.Frozen {
				resp.FreezeReason, resp.FreezeMessage = cfg.Freeze.LastFreeze()
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func historyHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events := cfg.History.RecentEvents(cfg.Series)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(events)
	}
}

// Start starts the HTTP server.
// This is a blocking call that returns when the server stops or encounters an error.
func (s *Server) Start() error {
	s.logger.Info("http-server-starting", zap.String("addr", s.server.Addr))

	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http-server-shutting-down")

	err := s.server.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("http-server-shutdown-complete")
	return nil
}
