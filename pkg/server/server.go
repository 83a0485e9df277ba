// Package server exposes a session over HTTP.
//
//	GET    /health              liveness
//	GET    /collections         registered collections, in registration order
//	GET    /collections/{id}    one collection
//	PUT    /collections/{id}    register or replace a collection
//	DELETE /collections/{id}    remove a collection
//	GET    /merged              the merged collection
//	POST   /apply               apply the merged collection to an environment
//	GET    /metrics             Prometheus metrics
//
// Collections use the tuple encoding of package serialize.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/arthur-debert/envmerge/pkg/config"
	"github.com/arthur-debert/envmerge/pkg/core"
	"github.com/arthur-debert/envmerge/pkg/logging"
	"github.com/arthur-debert/envmerge/pkg/merge"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

// Server serves a session over HTTP
type Server struct {
	session *core.Session
	cfg     config.Server
	environ func() []string
	router  chi.Router
	metrics *metrics

	unsubscribe func()
}

// New creates a server for session
func New(session *core.Session, cfg config.Server) *Server {
	s := &Server{
		session: session,
		cfg:     cfg,
		environ: os.Environ,
		metrics: newMetrics(),
	}
	s.metrics.observeMerged(session.Merged())
	s.unsubscribe = session.Registry.OnChange(func(merged *merge.Collection) {
		s.metrics.observeMerged(merged)
	})
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(s.metrics.instrument)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/collections", func(r chi.Router) {
		r.Get("/", s.listCollections)
		r.Get("/{id}", s.getCollection)
		r.Put("/{id}", s.putCollection)
		r.Delete("/{id}", s.deleteCollection)
	})

	r.Get("/merged", s.getMerged)
	r.Post("/apply", s.apply)
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())
	return r
}

// Close stops tracking registry changes
func (s *Server) Close() {
	s.unsubscribe()
}

// ListenAndServe listens on the configured address and serves until ctx ends
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx ends, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	logger := logging.GetLogger("server")

	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	logger.Info().Str("addr", ln.Addr().String()).Msg("Listening")
	go func() {
		serveErr <- httpServer.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info().Msg("Server stopped")
		return nil
	case err := <-serveErr:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.GetLogger("server")
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request")
	})
}
