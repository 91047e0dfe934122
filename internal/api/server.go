package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/edosstack/edos-console/internal/service"
	"github.com/edosstack/edos-console/internal/session"
)

// Server hosts the console HTTP API.
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	listener   net.Listener
}

// NewServer binds the API to the given address.
func NewServer(address string, svc *service.ConsoleService, checker session.Checker, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", address, err)
	}

	handler := NewHandler(svc, checker, logger)
	httpServer := &http.Server{
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return &Server{logger: logger, httpServer: httpServer, listener: lis}, nil
}

// Start serves until Shutdown is invoked.
func (s *Server) Start() error {
	s.logger.Info("console API listening", slog.String("address", s.Address()))
	if err := s.httpServer.Serve(s.listener); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until the context expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Address exposes the bound listener address (useful for tests).
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
