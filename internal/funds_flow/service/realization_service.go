package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/collective-funds-ledger/internal/domain/ledger"
	"github.com/collective-funds-ledger/internal/domain/order"
	"github.com/collective-funds-ledger/internal/domain/outbox"
	"github.com/collective-funds-ledger/internal/domain/shared"
)

// RealizationServiceImpl implements the RealizationService interface
type RealizationServiceImpl struct {
	txRunner   TxRunner
	orderRepo  order.Repository
	ledgerRepo ledger.Repository
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

// NewRealizationService creates the ledger engine
func NewRealizationService(
	txRunner TxRunner,
	orderRepo order.Repository,
	ledgerRepo ledger.Repository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
) RealizationService {
	return &RealizationServiceImpl{
		txRunner:   txRunner,
		orderRepo:  orderRepo,
		ledgerRepo: ledgerRepo,
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// Realize turns a validated order into its balanced entry pair. The pair
// is derived and checked before any row is written; the order, both
// entries, and the outbox message then persist in one transaction. A
// commit failure surfaces as Transient and is retryable unchanged; an
// unbalanced pair is Fatal and nothing is persisted.
func (s *RealizationServiceImpl) Realize(ctx context.Context, ord *order.Order, params RealizeParams) (*ledger.EntryPair, error) {
	logger := s.logger
	if params.CorrelationID != "" {
		logger = s.logger.With("correlation_id", params.CorrelationID)
	}

	pair, err := ledger.NewEntryPair(ledger.PairParams{
		OrderID:          ord.ID,
		FromCollectiveID: params.FromCollectiveID,
		CollectiveID:     ord.CollectiveID,
		HostCollectiveID: params.HostCollectiveID,
		PaymentMethodID:  ord.PaymentMethodID,
		CreatedByID:      ord.CreatedByID,
		Amount:           ord.TotalAmount,
		Currency:         ord.Currency,
		HostCurrency:     params.HostCurrency,
		FxRate:           params.FxRate,
		Fees:             params.Fees,
		CorrelationID:    params.CorrelationID,
	})
	if err != nil {
		var fatal shared.ErrFatal
		if errors.As(err, &fatal) {
			logger.Error("Entry pair failed invariant check, aborting order",
				"order_id", ord.ID.String(),
				"error", err,
			)
		}
		return nil, err
	}

	ord.Status = shared.OrderStatusPaid
	ord.FromCollectiveID = params.FromCollectiveID

	message, err := outbox.NewMessage(pair.Credit)
	if err != nil {
		return nil, fmt.Errorf("failed to build outbox message for order %s: %w", ord.ID.String(), err)
	}

	err = s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.orderRepo.WithTx(tx).Create(ctx, ord); err != nil {
			return err
		}
		if err := s.ledgerRepo.WithTx(tx).CreatePair(ctx, pair); err != nil {
			return err
		}
		return s.outboxRepo.WithTx(tx).Create(ctx, message)
	})
	if err != nil {
		logger.Error("Failed to commit entry pair",
			"order_id", ord.ID.String(),
			"error", err,
		)
		return nil, classifyRealizeError(err)
	}

	logger.Info("Order realized into entry pair",
		"order_id", ord.ID.String(),
		"credit_entry_id", pair.Credit.ID.String(),
		"debit_entry_id", pair.Debit.ID.String(),
		"amount", pair.Credit.Amount,
		"currency", pair.Credit.Currency,
		"amount_in_host_currency", pair.Credit.AmountInHostCurrency,
		"host_currency", pair.Credit.HostCurrency,
	)
	return pair, nil
}

// classifyRealizeError keeps domain errors intact and treats everything
// else, such as a referential violation on a concurrently retired
// account, as a transient commit failure the caller may retry.
func classifyRealizeError(err error) error {
	var (
		unauthorized shared.ErrUnauthorized
		validation   shared.ErrValidation
		notFound     shared.ErrNotFound
		fatal        shared.ErrFatal
	)
	if errors.As(err, &unauthorized) || errors.As(err, &validation) ||
		errors.As(err, &notFound) || errors.As(err, &fatal) {
		return err
	}
	return shared.ErrTransient{Err: err}
}
