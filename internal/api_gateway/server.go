package api_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vendor-ops-ledger/internal/api_gateway/handler"
	"github.com/vendor-ops-ledger/internal/api_gateway/service"
	"github.com/vendor-ops-ledger/internal/config"
)

// Engine is everything the gateway calls on the facade
type Engine interface {
	service.FinanceService
	service.ProjectService
	service.TeamService
	service.NotificationService
}

// Options carries the optional collaborators of the gateway
type Options struct {
	// Queue enables the queued booking and payout endpoints. Leave it nil
	// unless the intent processor shares this gateway's store.
	Queue service.IntentQueue

	// Ready backs /ready; nil always reports ready
	Ready func(ctx context.Context) error

	// Metrics is served on cfg.Metrics.Path when set
	Metrics http.Handler
}

// Server owns the HTTP listener
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	httpRouter *gin.Engine
}

func NewServer(log *slog.Logger, cfg *config.Config, engine Engine, opts Options) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ready := opts.Ready
	if ready == nil {
		ready = func(context.Context) error { return nil }
	}
	metricsHandler := opts.Metrics
	if !cfg.Metrics.Enabled {
		metricsHandler = nil
	}

	httpRouter := gin.New()
	setupRouter(log, httpRouter, handlers{
		finance:       handler.NewFinanceHandler(log, engine),
		projects:      handler.NewProjectHandler(log, engine, opts.Queue),
		team:          handler.NewTeamHandler(log, engine, opts.Queue),
		notifications: handler.NewNotificationHandler(log, engine),
		queued:        opts.Queue != nil,
	}, ready, cfg.Metrics.Path, metricsHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Handler exposes the router for in-process tests
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests until ctx expires
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
