// Package service contains the API gateway's application services. They
// orchestrate the funds-flow engine and the repositories; HTTP concerns
// stay in the handlers.
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/collective-funds-ledger/internal/domain/collective"
	"github.com/collective-funds-ledger/internal/domain/identity"
	"github.com/collective-funds-ledger/internal/domain/ledger"
	"github.com/collective-funds-ledger/internal/domain/order"
	"github.com/collective-funds-ledger/internal/domain/paymentmethod"
	"github.com/collective-funds-ledger/internal/domain/shared"
)

// CreateCollectiveParams carries the attributes of a new collective
type CreateCollectiveParams struct {
	Name             string
	Type             shared.CollectiveType
	Currency         string
	Website          string
	HostCollectiveID *uuid.UUID
	HostFeePercent   *float64
}

// CollectiveService manages collectives and their payment methods
type CollectiveService interface {
	CreateCollective(ctx context.Context, actor *identity.Actor, params CreateCollectiveParams) (*collective.Collective, error)
	GetBySlug(ctx context.Context, slug string) (*collective.Collective, error)
	GetByID(ctx context.Context, id uuid.UUID) (*collective.Collective, error)
	CreatePaymentMethod(ctx context.Context, actor *identity.Actor, collectiveID uuid.UUID, service shared.PaymentMethodService, name, currency string) (*paymentmethod.PaymentMethod, error)
}

// OrderResult is a realized order together with the parties and the
// credit-side financial figures the caller needs for its response
type OrderResult struct {
	Order       *order.Order
	Source      *collective.Collective
	Destination *collective.Collective
	CreditEntry *ledger.Entry
}

// OrderService runs the order pipeline: load and authorize, resolve the
// counterparty, fetch the conversion rate once, compute fees, and realize
// the balanced entry pair
type OrderService interface {
	CreateOrder(ctx context.Context, actor *identity.Actor, req *shared.OrderRequest) (*OrderResult, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error)
	GetOrderEntries(ctx context.Context, id uuid.UUID) ([]*ledger.Entry, error)
}

// BalanceService derives spendable balances from the authoritative ledger
type BalanceService interface {
	CollectiveBalance(ctx context.Context, collectiveID uuid.UUID) (*ledger.Balance, error)
	PaymentMethodBalance(ctx context.Context, token string) (*ledger.Balance, error)
}

// LedgerQueryService serves transaction listings from the reporting
// archive. Listings lag the authoritative ledger by the relay's delay.
type LedgerQueryService interface {
	ListCollectiveEntries(ctx context.Context, collectiveID uuid.UUID, page, perPage int) ([]*ledger.Entry, int64, error)
}
