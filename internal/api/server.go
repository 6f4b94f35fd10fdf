// Package api serves the latest forecast snapshot over HTTP alongside
// health and metrics endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"energy-forecast/internal/service"
)

// SnapshotProvider exposes the most recent forecast run.
type SnapshotProvider interface {
	Latest() (service.Snapshot, bool)
}

// Server hosts the forecast API.
type Server struct {
	addr     string
	provider SnapshotProvider
	metrics  http.Handler
	logger   zerolog.Logger
}

// NewServer constructs the API server. metricsHandler may be nil.
func NewServer(addr string, provider SnapshotProvider, metricsHandler http.Handler, logger zerolog.Logger) *Server {
	return &Server{
		addr:     addr,
		provider: provider,
		metrics:  metricsHandler,
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/forecast", s.handleForecast)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}

	server := &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	s.logger.Info().Str("addr", s.addr).Msg("api listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := s.provider.Latest()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"unavailable": true})
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
