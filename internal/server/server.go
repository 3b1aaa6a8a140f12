// Package server exposes the layout pipeline over HTTP.
//
// Each session owns a [pipeline.Orchestrator]. Clients drive it with
// toggle and path-replacement requests and watch the published graphs over
// Server-Sent Events. Stateless layouts go through the cached
// [pipeline.Runner]; saved path sets live in a [project.Store].
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/kafei-ai/treeflow/internal/config"
	"github.com/kafei-ai/treeflow/pkg/observability"
	"github.com/kafei-ai/treeflow/pkg/pipeline"
	"github.com/kafei-ai/treeflow/pkg/project"
)

const shutdownTimeout = 10 * time.Second

// Deps are the collaborators a Server needs.
type Deps struct {
	Config config.ServerConfig
	Layout pipeline.Options // spacing and strictness for every session
	Runner *pipeline.Runner
	Store  project.Store
	Logger *log.Logger
}

// Server is the treeflow HTTP API.
type Server struct {
	cfg      config.ServerConfig
	layout   pipeline.Options
	runner   *pipeline.Runner
	store    project.Store
	logger   *log.Logger
	sessions *sessions

	watchMu sync.RWMutex
	watched []string
}

// New creates a server. Zero config values fall back to the defaults.
func New(d Deps) *Server {
	def := config.Default().Server
	if d.Config.Addr == "" {
		d.Config.Addr = def.Addr
	}
	if d.Config.KeepAlive <= 0 {
		d.Config.KeepAlive = def.KeepAlive
	}
	if d.Config.SessionTTL <= 0 {
		d.Config.SessionTTL = def.SessionTTL
	}
	if d.Logger == nil {
		d.Logger = log.Default()
	}
	d.Layout.SetDefaults()
	if d.Runner == nil {
		d.Runner = pipeline.NewRunner(nil, nil, d.Logger)
	}
	return &Server{
		cfg:      d.Config,
		layout:   d.Layout,
		runner:   d.Runner,
		store:    d.Store,
		logger:   d.Logger,
		sessions: newSessions(),
		watched:  []string{},
	}
}

// Handler returns the routed HTTP handler with CORS applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Post("/toggle", s.handleToggle)
				r.Put("/paths", s.handleReplacePaths)
				r.Get("/events", s.handleEvents)
			})
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", s.handleListProjects)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetProject)
				r.Put("/", s.handlePutProject)
				r.Delete("/", s.handleDeleteProject)
			})
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Last-Event-ID"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// Run serves until ctx is cancelled, then shuts down gracefully. Idle
// sessions are evicted in the background.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.cfg.Addr,
		Handler:     s.Handler(),
		ReadTimeout: s.cfg.ReadTimeout,
		IdleTimeout: 60 * time.Second,
		// WriteTimeout stays zero: event streams are long-lived.
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.sessions.closeAll()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		s.janitor(gctx)
		return nil
	})
	return g.Wait()
}

func (s *Server) janitor(ctx context.Context) {
	interval := min(s.cfg.SessionTTL/2, time.Minute)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.evictIdle(s.cfg.SessionTTL); n > 0 {
				s.logger.Debug("evicted idle sessions", "count", n, "remaining", s.sessions.len())
			}
		}
	}
}

// SetWatchedPaths installs the path list of the watched source. Sessions
// created without paths start from it, and sessions that still follow it
// are replaced with the new list.
func (s *Server) SetWatchedPaths(paths []string) {
	s.watchMu.Lock()
	s.watched = slices.Clone(paths)
	s.watchMu.Unlock()

	for _, sess := range s.sessions.following() {
		sess.mu.Lock()
		if _, err := sess.orch.PathsReplaced(paths); err != nil {
			s.logger.Warn("watched paths rejected", "session", sess.id, "err", err)
		}
		sess.mu.Unlock()
	}
}

func (s *Server) watchedPaths() []string {
	s.watchMu.RLock()
	defer s.watchMu.RUnlock()
	return slices.Clone(s.watched)
}

// observe reports requests to the HTTP hooks and logs them at debug level.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status, "duration", d)
	})
}
