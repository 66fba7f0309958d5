package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/collective-funds-ledger/internal/api_gateway"
	"github.com/collective-funds-ledger/internal/api_gateway/service"
	"github.com/collective-funds-ledger/internal/config"
	"github.com/collective-funds-ledger/internal/data/mongo"
	"github.com/collective-funds-ledger/internal/data/postgres"
	"github.com/collective-funds-ledger/internal/fx"
	"github.com/collective-funds-ledger/internal/funds_flow/components"
	"github.com/collective-funds-ledger/internal/logger"
	"github.com/collective-funds-ledger/internal/platform/persistence"
)

// defaultRates backs the static provider in development setups. A real
// deployment replaces the provider, not this table.
var defaultRates = map[string]float64{
	"EUR/USD": 1.1654,
	"GBP/USD": 1.2712,
	"USD/CAD": 1.3545,
	"USD/JPY": 149.37,
	"EUR/GBP": 0.9168,
}

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	collectiveRepo := postgres.NewCollectiveRepository(log, postgresDB)
	identityRepo := postgres.NewIdentityRepository(log, postgresDB)
	paymentMethodRepo := postgres.NewPaymentMethodRepository(log, postgresDB)
	orderRepo := postgres.NewOrderRepository(log, postgresDB)
	ledgerRepo := postgres.NewLedgerRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	archiveRepo := mongo.NewLedgerArchiveRepository(log, mongoDB.Database())

	// Initialize the funds-flow engine and its collaborators
	fundsFlow := components.CreateFundsFlow(
		postgresDB,
		collectiveRepo,
		identityRepo,
		orderRepo,
		ledgerRepo,
		outboxRepo,
		log,
	)
	fxService := fx.NewService(fx.NewStaticProvider(defaultRates), cfg.Fx.CacheTTL, log)

	// Initialize services
	collectiveService := service.NewCollectiveService(collectiveRepo, identityRepo, paymentMethodRepo, log)
	orderService := service.NewOrderService(
		fundsFlow,
		fxService,
		collectiveRepo,
		paymentMethodRepo,
		orderRepo,
		ledgerRepo,
		cfg.Orders.MaxRealizeAttempts,
		log,
	)
	balanceService := service.NewBalanceService(collectiveRepo, paymentMethodRepo, ledgerRepo, log)
	queryService := service.NewLedgerQueryService(archiveRepo, log)

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, identityRepo, collectiveService, orderService, balanceService, queryService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first so no request observes a closed pool
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
