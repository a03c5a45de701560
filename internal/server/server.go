// Package server exposes batch layouts and live layout sessions over HTTP.
//
// Routes:
//
//	GET    /health
//	GET    /metrics
//	POST   /v1/layout                  settle a graph, optionally render it
//	POST   /v1/render?format=svg       settle and return one artifact
//	POST   /v1/sessions                start a live session
//	GET    /v1/sessions
//	GET    /v1/sessions/{id}
//	DELETE /v1/sessions/{id}
//	POST   /v1/sessions/{id}/tick      advance and return the scene
//	POST   /v1/sessions/{id}/events    apply drag and hover events
//	GET    /v1/sessions/{id}/scene
//	GET    /v1/sessions/{id}/svg
//	POST   /v1/sessions/{id}/reheat
//	POST   /v1/sessions/{id}/stop
package server

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/forcegraph/pkg/observability"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
	"github.com/matzehuels/forcegraph/pkg/session"
)

// Default timings.
const (
	DefaultCleanupInterval = time.Minute
	shutdownTimeout        = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	// Runner lays out and renders batch requests. Required.
	Runner *pipeline.Runner

	// Sessions holds live sessions. Nil creates a manager with the default TTL.
	Sessions *session.Manager

	// Defaults are applied under every request's own settings.
	Defaults pipeline.Options

	// Metrics, when set, is served on /metrics.
	Metrics *Metrics

	Logger          *log.Logger
	CleanupInterval time.Duration
}

// Server is the HTTP front end.
type Server struct {
	runner   *pipeline.Runner
	sessions *session.Manager
	defaults pipeline.Options
	metrics  *Metrics
	logger   *log.Logger
	cleanup  time.Duration
	validate *validator.Validate
	router   chi.Router
}

// New builds a server and its routes.
func New(opts Options) *Server {
	if opts.Sessions == nil {
		opts.Sessions = session.NewManager(0)
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = DefaultCleanupInterval
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	s := &Server{
		runner:   opts.Runner,
		sessions: opts.Sessions,
		defaults: opts.Defaults,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		cleanup:  opts.CleanupInterval,
		validate: v,
	}
	if s.metrics != nil {
		if err := s.metrics.TrackSessions(s.sessions.Len); err != nil {
			s.logger.Warn("session gauge not registered", "error", err)
		}
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Get("/", s.handleListSessions)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Post("/tick", s.handleTick)
				r.Post("/events", s.handleEvents)
				r.Get("/scene", s.handleScene)
				r.Get("/svg", s.handleSessionSVG)
				r.Post("/reheat", s.handleReheat)
				r.Post("/stop", s.handleStop)
			})
		})
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is done, then shuts down gracefully and
// closes every session.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go s.sessions.RunCleanup(cleanupCtx, s.cleanup)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = srv.Shutdown(shutdownCtx)
		s.logger.Info("server stopped")
	}
	s.sessions.Close()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// observe reports every request to the HTTP hooks and logs it.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// fail writes err and reports it to the HTTP hooks.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	route := r.URL.Path
	if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
		route = rc.RoutePattern()
	}
	observability.HTTP().OnError(r.Context(), r.Method, route, err)
	if statusFor(err) >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "route", route, "error", err)
	}
	writeError(w, err)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}
