// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api serves QR generation over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/net/netutil"

	"github.com/masadchattha/QRCodeHelper/internal/api/middleware"
	"github.com/masadchattha/QRCodeHelper/internal/generator"
	"github.com/masadchattha/QRCodeHelper/internal/health"
	"github.com/masadchattha/QRCodeHelper/internal/log"
)

const shutdownTimeout = 30 * time.Second

// Config holds the server settings.
type Config struct {
	ListenAddr string
	// MaxConns caps concurrently accepted connections. Zero means no cap.
	MaxConns int
	// RateLimit is requests per minute per client IP. Zero disables it.
	RateLimit int
	Version   string
	// TracingService names HTTP spans. Empty disables otelhttp.
	TracingService string
}

// Server is the HTTP front end of the generator.
type Server struct {
	cfg     Config
	gen     atomic.Pointer[generator.Service]
	handler http.Handler
	health  *health.Manager
	logger  zerolog.Logger

	httpSrv *http.Server
	addr    atomic.Value // net.Addr once listening
}

// New builds a Server around gen.
func New(cfg Config, gen *generator.Service) *Server {
	s := &Server{
		cfg:    cfg,
		health: health.NewManager(cfg.Version),
		logger: log.WithComponent("api"),
	}
	s.gen.Store(gen)
	s.health.RegisterChecker(health.GeneratorCheck{Current: s.generator})
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	middleware.ApplyStack(r, middleware.StackConfig{
		TracingService: s.cfg.TracingService,
		EnableMetrics:  true,
		EnableLogging:  true,
		RateLimit:      s.cfg.RateLimit,
	})

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/qr", s.handleGetQR)
		r.Post("/qr", s.handlePostQR)
	})
	return r
}

// RegisterChecker adds a readiness check. Call it before serving.
func (s *Server) RegisterChecker(c health.Checker) { s.health.RegisterChecker(c) }

// Handler returns the routed handler with the middleware stack applied.
func (s *Server) Handler() http.Handler { return s.handler }

// SetGenerator swaps the generator used by new requests.
func (s *Server) SetGenerator(gen *generator.Service) {
	if gen == nil {
		return
	}
	s.gen.Store(gen)
	s.logger.Info().
		Int(log.FieldScale, gen.Options().Scale).
		Str(log.FieldCharset, gen.Options().Charset).
		Msg("generator options updated")
}

func (s *Server) generator() *generator.Service { return s.gen.Load() }

// Addr is the bound address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	if a, ok := s.addr.Load().(net.Addr); ok {
		return a
	}
	return nil
}

// ListenAndServe listens on cfg.ListenAddr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.ListenAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully. A clean
// shutdown returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConns)
	}
	s.addr.Store(ln.Addr())
	s.httpSrv = &http.Server{
		Handler:           s.handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str("addr", ln.Addr().String()).
			Int("max_conns", s.cfg.MaxConns).
			Msg("API server listening")
		errCh <- s.httpSrv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		s.logger.Error().Err(err).Str(log.FieldEvent, "api.server.failed").Msg("API server failed")
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		s.logger.Info().Msg("shutting down API server")
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api server shutdown: %w", err)
		}
		<-errCh
		return nil
	}
}
