// Package server exposes the registration workflow over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tnbsp/membership-workflow/internal/card"
	"github.com/tnbsp/membership-workflow/internal/export"
	"github.com/tnbsp/membership-workflow/internal/registration"
)

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Registration *registration.Service
	Cards        *card.Service
	Export       *export.Service
	// Health reports backend liveness; nil means always healthy.
	Health func(ctx context.Context) error
	Logger *slog.Logger
}

// Server wraps the net/http server with sane timeouts and graceful shutdown.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

func New(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	h := &handler{deps: deps}
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           newRouter(h, deps.Logger),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: deps.Logger,
	}
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
