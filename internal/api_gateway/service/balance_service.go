package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/collective-funds-ledger/internal/domain/collective"
	"github.com/collective-funds-ledger/internal/domain/ledger"
	"github.com/collective-funds-ledger/internal/domain/paymentmethod"
)

// BalanceServiceImpl implements the BalanceService interface. Balances
// are always derived from the authoritative ledger; nothing is cached or
// stored, so two reads without an intervening realization agree.
type BalanceServiceImpl struct {
	collectiveRepo    collective.Repository
	paymentMethodRepo paymentmethod.Repository
	ledgerRepo        ledger.Repository
	logger            *slog.Logger
}

// NewBalanceService creates a new balance service
func NewBalanceService(
	collectiveRepo collective.Repository,
	paymentMethodRepo paymentmethod.Repository,
	ledgerRepo ledger.Repository,
	logger *slog.Logger,
) BalanceService {
	return &BalanceServiceImpl{
		collectiveRepo:    collectiveRepo,
		paymentMethodRepo: paymentMethodRepo,
		ledgerRepo:        ledgerRepo,
		logger:            logger,
	}
}

// CollectiveBalance aggregates the collective's entries, fee deductions
// included, expressed in the collective's own currency
func (s *BalanceServiceImpl) CollectiveBalance(ctx context.Context, collectiveID uuid.UUID) (*ledger.Balance, error) {
	c, err := s.collectiveRepo.GetByID(ctx, collectiveID)
	if err != nil {
		return nil, asNotFound(err, "collective", collectiveID.String())
	}

	amount, err := s.ledgerRepo.CollectiveBalance(ctx, c.ID, c.Currency)
	if err != nil {
		return nil, err
	}

	return &ledger.Balance{Amount: amount, Currency: c.Currency}, nil
}

// PaymentMethodBalance aggregates the entries one payment method funded,
// from its owning collective's side, expressed in the payment method's
// currency
func (s *BalanceServiceImpl) PaymentMethodBalance(ctx context.Context, token string) (*ledger.Balance, error) {
	pm, err := s.paymentMethodRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, asNotFound(err, "payment method", token)
	}

	amount, err := s.ledgerRepo.PaymentMethodBalance(ctx, pm.ID, pm.CollectiveID, pm.Currency)
	if err != nil {
		return nil, err
	}

	return &ledger.Balance{Amount: amount, Currency: pm.Currency}, nil
}
