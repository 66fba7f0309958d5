package components

import (
	"log/slog"

	"github.com/collective-funds-ledger/internal/domain/collective"
	"github.com/collective-funds-ledger/internal/domain/identity"
	"github.com/collective-funds-ledger/internal/domain/ledger"
	"github.com/collective-funds-ledger/internal/domain/order"
	"github.com/collective-funds-ledger/internal/domain/outbox"
	"github.com/collective-funds-ledger/internal/funds_flow/service"
)

// FundsFlow bundles the funds-flow engine's collaborators as one wired
// unit for the API layer.
type FundsFlow struct {
	Guard       service.AuthorizationGuard
	Resolver    service.CounterpartyResolver
	Fees        service.FeeCalculator
	Realization service.RealizationService
}

// CreateFundsFlow wires the guard, resolver, fee calculator, and ledger
// engine with their dependencies.
func CreateFundsFlow(
	txRunner service.TxRunner,
	collectiveRepo collective.Repository,
	identityRepo identity.Repository,
	orderRepo order.Repository,
	ledgerRepo ledger.Repository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
) *FundsFlow {
	return &FundsFlow{
		Guard:       NewAuthorizationGuard(),
		Resolver:    NewCounterpartyResolver(txRunner, collectiveRepo, identityRepo, logger),
		Fees:        NewFeeCalculator(),
		Realization: service.NewRealizationService(txRunner, orderRepo, ledgerRepo, outboxRepo, logger),
	}
}
