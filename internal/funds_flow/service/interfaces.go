package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/collective-funds-ledger/internal/domain/collective"
	"github.com/collective-funds-ledger/internal/domain/identity"
	"github.com/collective-funds-ledger/internal/domain/ledger"
	"github.com/collective-funds-ledger/internal/domain/order"
	"github.com/collective-funds-ledger/internal/domain/paymentmethod"
	"github.com/collective-funds-ledger/internal/domain/shared"
)

// TxRunner executes a function inside a single database transaction,
// rolling back on error or panic. *persistence.PostgresDB satisfies it.
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// AuthorizationState is everything the guard needs, resolved up front so
// the decision is pure: no repository or global lookups happen inside it.
type AuthorizationState struct {
	Actor              *identity.Actor
	Request            *shared.OrderRequest
	SourceCollective   *collective.Collective // nil when the order provisions a new counterparty
	Destination        *collective.Collective
	PaymentMethod      *paymentmethod.PaymentMethod
	PaymentMethodOwner *collective.Collective
}

// AuthorizationGuard decides whether an acting identity may create an
// order on behalf of a source party with a given payment method and fee
// overrides. First failing rule wins; a nil return means allowed.
type AuthorizationGuard interface {
	Authorize(state *AuthorizationState) error
}

// CounterpartyResolver returns the order's existing source collective, or
// provisions a new organization (and, when needed, a minimal identity for
// its administrator) in its own committed transaction. The boolean
// reports whether a new collective was created.
type CounterpartyResolver interface {
	Resolve(ctx context.Context, req *shared.OrderRequest, actor *identity.Actor) (*collective.Collective, bool, error)
}

// FeeCalculator computes the fee sub-amounts of an order. Pure: same
// inputs always produce the same FeeSet, so fees never drift under
// re-derivation.
type FeeCalculator interface {
	// ComputeFees takes the base amount in the entry's currency, the rate
	// converting it into host currency, the fee percentages, and the
	// processor fee already expressed in host currency (unsigned
	// magnitude).
	ComputeFees(baseAmount int64, fxRate decimal.Decimal, hostFeePercent, platformFeePercent float64, processorFeeInHostCurrency int64) ledger.FeeSet
}

// RealizeParams carries the resolved inputs the engine combines with the
// order: counterparty, host, conversion rate, and fees. The rate was
// fetched once, before the atomic section.
type RealizeParams struct {
	FromCollectiveID uuid.UUID
	HostCollectiveID uuid.UUID
	HostCurrency     string
	FxRate           decimal.Decimal
	Fees             ledger.FeeSet
	CorrelationID    string
}

// RealizationService is the ledger engine. It exclusively owns entry-pair
// creation: the order row, both entries, and the outbox message persist
// in one atomic unit of work, or none of them do.
type RealizationService interface {
	Realize(ctx context.Context, ord *order.Order, params RealizeParams) (*ledger.EntryPair, error)
}
