package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/collective-funds-ledger/internal/domain/paymentmethod"
	"github.com/collective-funds-ledger/internal/platform/persistence"
)

// PaymentMethodRepository implements the paymentmethod.Repository
// interface for PostgreSQL
type PaymentMethodRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewPaymentMethodRepository creates a new PostgreSQL payment method
// repository
func NewPaymentMethodRepository(logger *slog.Logger, db *persistence.PostgresDB) paymentmethod.Repository {
	return &PaymentMethodRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *PaymentMethodRepository) WithTx(tx pgx.Tx) paymentmethod.Repository {
	return &PaymentMethodRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new payment method
func (r *PaymentMethodRepository) Create(ctx context.Context, pm *paymentmethod.PaymentMethod) error {
	query := `
		INSERT INTO payment_methods (id, collective_id, service, name, currency, token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		pm.ID,
		pm.CollectiveID,
		pm.Service,
		pm.Name,
		pm.Currency,
		pm.Token,
		pm.CreatedAt,
		pm.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create payment method", "collective_id", pm.CollectiveID.String(), "error", err)
		return fmt.Errorf("failed to create payment method: %w", err)
	}

	return nil
}

// GetByID retrieves a payment method by its ID
func (r *PaymentMethodRepository) GetByID(ctx context.Context, id uuid.UUID) (*paymentmethod.PaymentMethod, error) {
	query := `
		SELECT id, collective_id, service, name, currency, token, created_at, updated_at
		FROM payment_methods
		WHERE id = $1
	`

	pm, err := r.scanOne(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, paymentmethod.ErrPaymentMethodNotFound{Ref: id.String()}
		}
		r.logger.Error("Failed to get payment method", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get payment method: %w", err)
	}

	return pm, nil
}

// GetByToken retrieves a payment method by its opaque token. Orders
// reference payment methods by token, never by ID.
func (r *PaymentMethodRepository) GetByToken(ctx context.Context, token string) (*paymentmethod.PaymentMethod, error) {
	query := `
		SELECT id, collective_id, service, name, currency, token, created_at, updated_at
		FROM payment_methods
		WHERE token = $1
	`

	pm, err := r.scanOne(r.querier.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, paymentmethod.ErrPaymentMethodNotFound{Ref: token}
		}
		r.logger.Error("Failed to get payment method by token", "error", err)
		return nil, fmt.Errorf("failed to get payment method by token: %w", err)
	}

	return pm, nil
}

func (r *PaymentMethodRepository) scanOne(row pgx.Row) (*paymentmethod.PaymentMethod, error) {
	var pm paymentmethod.PaymentMethod
	err := row.Scan(
		&pm.ID,
		&pm.CollectiveID,
		&pm.Service,
		&pm.Name,
		&pm.Currency,
		&pm.Token,
		&pm.CreatedAt,
		&pm.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pm, nil
}
