// Package api_gateway hosts the HTTP surface of the funds ledger: order
// submission, collective and payment method management, and the derived
// balance and transaction reads.
package api_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/collective-funds-ledger/internal/api_gateway/handler"
	"github.com/collective-funds-ledger/internal/api_gateway/service"
	"github.com/collective-funds-ledger/internal/config"
	"github.com/collective-funds-ledger/internal/domain/identity"
)

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger // For structured logging
	httpServer *http.Server // Underlying HTTP server
	httpRouter *gin.Engine  // Gin router instance
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(
	log *slog.Logger,
	cfg *config.Config,
	identityRepo identity.Repository,
	collectiveService service.CollectiveService,
	orderService service.OrderService,
	balanceService service.BalanceService,
	queryService service.LedgerQueryService,
) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	collectiveHandler := handler.NewCollectiveHandler(log, collectiveService)
	orderHandler := handler.NewOrderHandler(log, orderService)
	balanceHandler := handler.NewBalanceHandler(log, balanceService, queryService)

	setupRouter(log, httpRouter, identityRepo, collectiveHandler, orderHandler, balanceHandler)

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

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server with a timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.httpServer.WriteTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	return nil
}
