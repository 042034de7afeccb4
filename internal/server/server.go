// Package server exposes the lighting planner over HTTP.
//
// The surface has two halves: /process_image mirrors the measurement
// service's own wire contract so existing mobile clients keep working
// unchanged, and /api/v1 carries the plan, session, and archive API
// with structured error envelopes.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lumenlab/lumen/internal/config"
	"github.com/lumenlab/lumen/pkg/archive"
	"github.com/lumenlab/lumen/pkg/pipeline"
	"github.com/lumenlab/lumen/pkg/session"
)

// Server wires the HTTP routes to the planner components.
type Server struct {
	cfg      config.Config
	logger   *log.Logger
	runner   *pipeline.Runner
	sessions session.Store
	plans    archive.Archive
	router   chi.Router
}

// New builds a Server from already-constructed components. The detector
// behind runner may be nil when the service runs planning-only; in that
// case /process_image reports the detector as unavailable.
func New(cfg config.Config, runner *pipeline.Runner, sessions session.Store, plans archive.Archive, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		runner:   runner,
		sessions: sessions,
		plans:    plans,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)

	// Compatibility with the original measurement endpoint.
	r.Post("/process_image", s.handleProcessImage)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/plan", s.handlePlan)

		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Post("/sessions/{id}/events", s.handleSessionEvent)
		r.Delete("/sessions/{id}", s.handleDeleteSession)

		r.Get("/plans", s.handleListPlans)
		r.Get("/plans/{id}", s.handleGetPlan)
	})

	return r
}

// logRequests emits one structured line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

// Run serves until ctx is canceled, then drains in-flight requests
// within the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	timeout := s.cfg.Server.ShutdownTimeout.Duration()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
