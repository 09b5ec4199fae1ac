// Package http exposes the publish engine over a JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/history"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/logger"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/platform"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/publisher"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/queue"
	"github.com/ProCodeJH/blog-automation-sub000/transport/http/handlers"
)

// Version reported by the health endpoint.
const Version = "1.0.0"

// Options assembles a Server.
type Options struct {
	Addr         string
	Orchestrator *publisher.Orchestrator
	Registry     *platform.Registry
	Ledger       history.Store
	Queue        queue.Queue
	Logger       logger.Logger
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the engine's HTTP front end.
type Server struct {
	server *http.Server
	logger logger.Logger
}

// NewServer wires the route handlers and returns an unstarted server.
func NewServer(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.Discard
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	if opts.WriteTimeout == 0 {
		// Publish calls drive a browser; give them room.
		opts.WriteTimeout = 5 * time.Minute
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/publish", handlers.NewPublishHandler(opts.Orchestrator, opts.Queue, log).Handle)
	mux.HandleFunc("/test-connection", handlers.NewTestConnectionHandler(opts.Orchestrator, log).Handle)
	mux.HandleFunc("/history", handlers.NewHistoryHandler(opts.Ledger, log).Handle)
	mux.HandleFunc("/health", handlers.NewHealthHandler(opts.Registry, opts.Ledger, Version).Handle)

	return &Server{
		server: &http.Server{
			Addr:           opts.Addr,
			Handler:        mux,
			ReadTimeout:    opts.ReadTimeout,
			WriteTimeout:   opts.WriteTimeout,
			MaxHeaderBytes: 1 << 20,
		},
		logger: log,
	}
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.server.Addr)
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.server.Shutdown(ctx)
}
