package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anstrom/rangescan/internal/logging"
)

// Server timeout constants.
const (
	serverShutdownTimeout = 5 * time.Second
	serverReadTimeout     = 10 * time.Second
	serverWriteTimeout    = 10 * time.Second
)

// Server exposes the metrics registry over HTTP.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	listener   net.Listener
	logger     *logging.Logger
}

// NewServer creates a metrics server for pm listening on addr.
// Access logs are written to accessLog; pass io.Discard to drop them.
func NewServer(addr string, pm *PrometheusMetrics, accessLog io.Writer) *Server {
	logger := logging.Default().WithComponent("metrics")

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(pm.GetRegistry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	}).Methods(http.MethodGet)

	handler := handlers.RecoveryHandler(handlers.PrintRecoveryStack(false))(
		handlers.CombinedLoggingHandler(accessLog, router))

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       serverReadTimeout,
			ReadHeaderTimeout: serverReadTimeout,
			WriteTimeout:      serverWriteTimeout,
		},
		router: router,
		logger: logger,
	}
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("metrics server failed to listen: %w", err)
	}
	s.listener = listener

	s.logger.Info("Starting metrics server", "address", listener.Addr().String())

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Metrics server failed", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Stop gracefully stops the server.
func (s *Server) Stop() error {
	s.logger.Info("Stopping metrics server")

	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics server shutdown failed: %w", err)
	}
	return nil
}
