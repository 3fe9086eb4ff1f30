// Package httpapi exposes the query engine over HTTP for dashboard clients.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/meterflow/meterflow/internal/contract"
)

// shutdownTimeout is the maximum time to wait for active requests on shutdown.
const shutdownTimeout = 5 * time.Second

// Server serves the meter query API on a plain ServeMux.
type Server struct {
	cfg        *contract.Config
	store      contract.ObjectStore
	httpServer *http.Server
}

// NewServer wires the routes for a validated base configuration. Per-request
// query parameters override the base configuration per request.
func NewServer(cfg *contract.Config, store contract.ObjectStore) *Server {
	s := &Server{cfg: cfg, store: store}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/meters/chart", s.handleChart)
	mux.HandleFunc("GET /api/meters/usage", s.handleUsage)
	mux.HandleFunc("GET /api/meters/daily", s.handleDaily)
	mux.HandleFunc("GET /api/meters/area/{locality}", s.handleArea)
	mux.HandleFunc("GET /api/meters/household/{householdId}", s.handleHousehold)
	mux.HandleFunc("GET /api/meters/forecast", s.handleForecast)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
