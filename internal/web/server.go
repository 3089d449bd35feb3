package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dijiclick/pepebot/internal/domain"
	"github.com/dijiclick/pepebot/internal/usecase"
)

// Server exposes the engine state read-only: current layers, the indicator
// snapshot, usage counters and the signal log. It never mutates the engine.
type Server struct {
	router  *http.ServeMux
	server  *http.Server
	service *usecase.SignalService
	repo    domain.UsageRepository
	logger  *zap.Logger
}

func NewServer(port int, service *usecase.SignalService, repo domain.UsageRepository, logger *zap.Logger) *Server {
	s := &Server{
		router:  http.NewServeMux(),
		service: service,
		repo:    repo,
		logger:  logger,
	}
	s.routes()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /status", s.handleStatus)
	s.router.HandleFunc("GET /api/layers", s.handleLayers)
	s.router.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	s.router.HandleFunc("GET /api/usage", s.handleUsage)
	s.router.HandleFunc("GET /api/signals", s.handleSignals)
	s.router.Handle("GET /metrics", promhttp.Handler())
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
