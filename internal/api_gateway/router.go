package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/collective-funds-ledger/internal/api_gateway/handler"
	"github.com/collective-funds-ledger/internal/api_gateway/middleware"
	"github.com/collective-funds-ledger/internal/domain/identity"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	identityRepo identity.Repository,
	collectiveHandler *handler.CollectiveHandler,
	orderHandler *handler.OrderHandler,
	balanceHandler *handler.BalanceHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Identity(logger, identityRepo))

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Collective operations. The path parameter is a slug for the
		// fetch route and an ID for the nested resources.
		collectives := v1.Group("/collectives")
		{
			collectives.POST("", collectiveHandler.Create)
			collectives.GET("/:ref", collectiveHandler.GetBySlug)
			collectives.POST("/:ref/payment-methods", collectiveHandler.CreatePaymentMethod)
			collectives.GET("/:ref/balance", balanceHandler.CollectiveBalance)
			collectives.GET("/:ref/transactions", balanceHandler.ListTransactions)
		}

		// Order operations
		orders := v1.Group("/orders")
		{
			orders.POST("", orderHandler.Create)
			orders.GET("/:id", orderHandler.GetByID)
		}

		// Payment method balance
		v1.GET("/payment-methods/:token/balance", balanceHandler.PaymentMethodBalance)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
