package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/collective-funds-ledger/internal/domain/shared"
)

// Repository defines order persistence operations
type Repository interface {
	Create(ctx context.Context, ord *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status shared.OrderStatus) error
	WithTx(tx pgx.Tx) Repository
}

// ErrOrderNotFound indicates a missing order
type ErrOrderNotFound struct {
	OrderID uuid.UUID
}

func (e ErrOrderNotFound) Error() string {
	return "order not found: " + e.OrderID.String()
}

func (e ErrOrderNotFound) Is(target error) bool {
	t, ok := target.(ErrOrderNotFound)
	if !ok {
		return false
	}
	return t.OrderID == uuid.Nil || t.OrderID == e.OrderID
}
