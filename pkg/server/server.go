// Package server exposes the alignment pipeline over HTTP.
//
// # Routes
//
//	POST /v1/align          run the pipeline on inline SIF and alignment text
//	GET  /v1/reports        list stored summaries, newest first (?limit=N)
//	GET  /v1/reports/{id}   fetch one stored summary
//	GET  /healthz           liveness and build information
//	GET  /metrics           Prometheus metrics
//
// Errors are JSON objects {"error": {"code": ..., "message": ...}} whose
// code is one of the pkg/errors codes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/netalign/pkg/groups"
	"github.com/matzehuels/netalign/pkg/observability"
	"github.com/matzehuels/netalign/pkg/pipeline"
)

// Defaults for [Options].
const (
	DefaultTimeout = 60 * time.Second
	DefaultMaxBody = 32 << 20
)

// Options configures a [Server].
type Options struct {
	// Timeout bounds a single request.
	Timeout time.Duration
	// MaxBody caps request bodies in bytes.
	MaxBody int64
	// Table replaces the built-in group table.
	Table *groups.Table
	// Threshold is the default Jaccard cutoff for requests without one.
	Threshold float64
	// Metrics serves /metrics. Nil uses the default Prometheus registry.
	Metrics http.Handler
	Logger  *log.Logger
}

// Server handles API requests. It is safe for concurrent use.
type Server struct {
	runner   *pipeline.Runner
	opts     Options
	logger   *log.Logger
	validate *validator.Validate
	router   chi.Router
}

// New builds a server around runner. Reports are served from runner.Store;
// without a store the report routes answer 404.
func New(runner *pipeline.Runner, opts Options) *Server {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBody <= 0 {
		opts.MaxBody = DefaultMaxBody
	}
	if opts.Metrics == nil {
		opts.Metrics = promhttp.Handler()
	}
	if opts.Logger == nil {
		opts.Logger = runner.Logger
	}
	s := &Server{
		runner:   runner,
		opts:     opts,
		logger:   opts.Logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.opts.Metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.opts.Timeout))
		r.Post("/align", s.handleAlign)
		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{id}", s.handleGetReport)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// instrument logs every request and reports it to the HTTP hooks under its
// route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// The pattern is known only after routing.
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))

		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
