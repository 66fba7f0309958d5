package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/collective-funds-ledger/internal/domain/order"
	"github.com/collective-funds-ledger/internal/domain/shared"
	"github.com/collective-funds-ledger/internal/platform/persistence"
)

// OrderRepository implements the order.Repository interface for PostgreSQL
type OrderRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewOrderRepository creates a new PostgreSQL order repository
func NewOrderRepository(logger *slog.Logger, db *persistence.PostgresDB) order.Repository {
	return &OrderRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so the order insert is
// atomic with its entry pair
func (r *OrderRepository) WithTx(tx pgx.Tx) order.Repository {
	return &OrderRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new order
func (r *OrderRepository) Create(ctx context.Context, ord *order.Order) error {
	query := `
		INSERT INTO orders (id, from_collective_id, collective_id, payment_method_id, total_amount, currency, host_fee_percent, platform_fee_percent, description, status, created_by_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.querier.Exec(ctx, query,
		ord.ID,
		ord.FromCollectiveID,
		ord.CollectiveID,
		ord.PaymentMethodID,
		ord.TotalAmount,
		ord.Currency,
		ord.HostFeePercent,
		ord.PlatformFeePercent,
		ord.Description,
		ord.Status,
		ord.CreatedByID,
		ord.CreatedAt,
		ord.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create order", "id", ord.ID.String(), "error", err)
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// GetByID retrieves an order by its ID
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	query := `
		SELECT id, from_collective_id, collective_id, payment_method_id, total_amount, currency, host_fee_percent, platform_fee_percent, description, status, created_by_id, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var ord order.Order
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&ord.ID,
		&ord.FromCollectiveID,
		&ord.CollectiveID,
		&ord.PaymentMethodID,
		&ord.TotalAmount,
		&ord.Currency,
		&ord.HostFeePercent,
		&ord.PlatformFeePercent,
		&ord.Description,
		&ord.Status,
		&ord.CreatedByID,
		&ord.CreatedAt,
		&ord.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrOrderNotFound{OrderID: id}
		}
		r.logger.Error("Failed to get order", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &ord, nil
}

// UpdateStatus transitions an order's status
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status shared.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to update order status", "id", id.String(), "status", string(status), "error", err)
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return order.ErrOrderNotFound{OrderID: id}
	}

	return nil
}
