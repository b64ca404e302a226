// Package server exposes the scout pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/threadlens/threadlens/internal/config"
	"github.com/threadlens/threadlens/internal/core/engine"
	servermw "github.com/threadlens/threadlens/internal/server/middleware"
)

// Server is the HTTP front end over a configured Scout.
type Server struct {
	router *chi.Mux
	server *http.Server
	scout  *engine.Scout
	log    *zap.Logger
	cfg    config.ServerConfig

	version string
}

// New creates a server around a scout pipeline.
func New(cfg config.ServerConfig, scout *engine.Scout, log *zap.Logger, version string) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(servermw.RequestID)
	r.Use(servermw.Logging(log))
	r.Use(servermw.Recovery(log))

	s := &Server{
		router:  r,
		scout:   scout,
		log:     log,
		cfg:     cfg,
		version: version,
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusNotFound, "resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusMethodNotAllowed, "method not allowed")
	})

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/version", s.handleVersion)
	s.router.Post("/v1/scout", s.handleScout)
}

// Start begins serving and blocks until the listener stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	s.log.Info("starting http server",
		zap.String("host", s.cfg.Host),
		zap.Int("port", s.cfg.Port))

	return s.server.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down http server")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
