// Package server is the HTTP shell shared by the popup UI and the backend
// service: middleware, CORS, health check and lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Config holds server configuration.
type Config struct {
	Port int
	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string
	// RequestTimeout bounds each request. Zero means two minutes, enough
	// for one AI round trip.
	RequestTimeout time.Duration
}

// Server wraps a chi router and the http.Server that serves it.
type Server struct {
	cfg        Config
	logger     *zap.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with the standard middleware stack. Feature
// packages mount their routes through Router.
func New(cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 2 * time.Minute
	}
	s := &Server{cfg: cfg, logger: logger}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.logger))
	r.Use(middleware.Recoverer)

	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return r
}

// Router returns the chi router for registering additional routes. Routes
// mounted here get the request timeout; websocket routes should use
// RawRouter.
func (s *Server) Router() chi.Router {
	return s.router.With(middleware.Timeout(s.cfg.RequestTimeout))
}

// RawRouter returns the router without the request timeout.
func (s *Server) RawRouter() chi.Router { return s.router }

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on the configured port and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("listening: %w", err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
