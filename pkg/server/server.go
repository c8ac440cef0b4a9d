// Package server exposes the /metrics endpoint together with health and
// pprof handlers.
package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const name = "http_server"

type Server struct {
	log     *zap.Logger
	server  *http.Server
	handler http.Handler
}

// New wires the exporter gatherer and the self-telemetry registry into one
// /metrics endpoint. A failed scrape turns into an HTTP 500 without a body -
// partial metric documents are never served.
func New(
	log *zap.Logger,
	listenAddress string,
	registry *prometheus.Registry,
	exporter prometheus.Gatherer,
	readinessChecks map[string]healthcheck.Check,
) *Server {
	log = log.Named(name).With(zap.String("listen-address", listenAddress))

	health := healthcheck.NewMetricsHandler(registry, "wireguard_exporter")
	for checkName, check := range readinessChecks {
		health.AddReadinessCheck(checkName, check)
	}

	gatherers := prometheus.Gatherers{
		registry,
		exporter,
	}

	router := http.NewServeMux()

	// Metrics
	router.Handle("/metrics", promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{
		ErrorLog:      zap.NewStdLog(log),
		ErrorHandling: promhttp.HTTPErrorOnError,
		Timeout:       30 * time.Second,
	}))

	// Liveness / Readiness
	router.HandleFunc("/live", health.LiveEndpoint)
	router.HandleFunc("/ready", health.ReadyEndpoint)

	// PProf
	router.HandleFunc("/debug/pprof/", pprof.Index)
	router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	router.HandleFunc("/debug/pprof/profile", pprof.Profile)
	router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	router.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return &Server{
		log:     log,
		handler: router,
		server: &http.Server{
			Addr:         listenAddress,
			Handler:      router,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  15 * time.Second,
		},
	}
}

// Handler returns the routed handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("Starting the http server")

		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Stopping the http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}
