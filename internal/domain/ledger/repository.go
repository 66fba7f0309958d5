package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Balance is an aggregated position in a single currency, integer minor
// units.
type Balance struct {
	Amount   int64  `json:"balance"`
	Currency string `json:"currency"`
}

// Repository manages ledger entry persistence. Entries are append-only:
// there is no update or delete operation by design.
type Repository interface {
	// CreatePair inserts both entries of a realized order. It must be
	// called inside a transaction (via WithTx) so no reader ever observes
	// one entry without the other.
	CreatePair(ctx context.Context, pair *EntryPair) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*Entry, error)
	GetByCollectiveID(ctx context.Context, collectiveID uuid.UUID, limit, offset int) ([]*Entry, error)
	CountByCollectiveID(ctx context.Context, collectiveID uuid.UUID) (int64, error)

	// CollectiveBalance sums the collective's entries, including fee
	// deductions, converted into the given currency via each entry's
	// stored rate. Single aggregate query, read-only.
	CollectiveBalance(ctx context.Context, collectiveID uuid.UUID, currency string) (int64, error)

	// PaymentMethodBalance is the same aggregation scoped to entries
	// funded by one payment method, seen from its owning collective's
	// side. Both rows of a pair carry the payment method, so without the
	// owner scope the mirrored figures would cancel to zero.
	PaymentMethodBalance(ctx context.Context, paymentMethodID, ownerCollectiveID uuid.UUID, currency string) (int64, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrEntryNotFound indicates a missing ledger entry
type ErrEntryNotFound struct {
	EntryID uuid.UUID
}

func (e ErrEntryNotFound) Error() string {
	return "ledger entry not found: " + e.EntryID.String()
}

func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	return t.EntryID == uuid.Nil || t.EntryID == e.EntryID
}
