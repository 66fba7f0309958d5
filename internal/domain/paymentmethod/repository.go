package paymentmethod

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines payment method persistence operations
type Repository interface {
	Create(ctx context.Context, pm *PaymentMethod) error
	GetByID(ctx context.Context, id uuid.UUID) (*PaymentMethod, error)
	GetByToken(ctx context.Context, token string) (*PaymentMethod, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrPaymentMethodNotFound indicates a missing payment method
type ErrPaymentMethodNotFound struct {
	Ref string
}

func (e ErrPaymentMethodNotFound) Error() string {
	return "payment method not found: " + e.Ref
}

func (e ErrPaymentMethodNotFound) Is(target error) bool {
	t, ok := target.(ErrPaymentMethodNotFound)
	if !ok {
		return false
	}
	return t.Ref == "" || t.Ref == e.Ref
}
