// Package server exposes tour analyses over HTTP.
//
// Routes:
//
//	POST /api/v1/analyses           analyze the request body (?format=json|yaml, ?start=, ?layout=true)
//	GET  /api/v1/analyses           list stored analyses, newest first (?limit=)
//	GET  /api/v1/analyses/{id}      fetch one analysis
//	GET  /api/v1/analyses/{id}/dot  Graphviz DOT of the analysed graph (?detailed=true)
//	GET  /healthz                   liveness
//	GET  /metrics                   Prometheus metrics, when configured
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/panotour/pkg/history"
	"github.com/matzehuels/panotour/pkg/pipeline"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = ":8080"

	// DefaultMaxBodyBytes caps the size of uploaded tour documents.
	DefaultMaxBodyBytes = 10 << 20

	// DefaultListLimit is the page size of the list endpoint.
	DefaultListLimit = 20

	shutdownTimeout = 10 * time.Second
)

// Options configures a Server. Runner is required; the rest is optional.
type Options struct {
	Runner *pipeline.Runner
	// Store keeps analyses. Defaults to an in-memory store.
	Store history.Store
	// Metrics is mounted at /metrics when set.
	Metrics      http.Handler
	Logger       *log.Logger
	MaxBodyBytes int64
}

// Server handles the analysis API.
type Server struct {
	runner       *pipeline.Runner
	store        history.Store
	metrics      http.Handler
	logger       *log.Logger
	maxBodyBytes int64
	router       chi.Router
}

// New creates a server and builds its routes.
func New(opts Options) *Server {
	if opts.Store == nil {
		opts.Store = history.NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	s := &Server{
		runner:       opts.Runner,
		store:        opts.Store,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
		maxBodyBytes: opts.MaxBodyBytes,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api/v1/analyses", func(r chi.Router) {
		r.With(bodyLimit(s.maxBodyBytes)).Post("/", s.handleCreateAnalysis)
		r.Get("/", s.handleListAnalyses)
		r.Get("/{id}", s.handleGetAnalysis)
		r.Get("/{id}/dot", s.handleGetAnalysisDOT)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
