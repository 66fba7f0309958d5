package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/collective-funds-ledger/internal/domain/collective"
	"github.com/collective-funds-ledger/internal/domain/ledger"
	"github.com/collective-funds-ledger/internal/domain/paymentmethod"
	"github.com/collective-funds-ledger/internal/domain/shared"
)

func TestBalanceService_CollectiveBalance(t *testing.T) {
	collectiveRepo := &MockCollectiveRepo{}
	ledgerRepo := &MockLedgerRepo{}
	svc := NewBalanceService(collectiveRepo, &MockPaymentMethodRepo{}, ledgerRepo, slog.Default())

	c := &collective.Collective{ID: uuid.New(), Currency: "EUR"}
	collectiveRepo.On("GetByID", mock.Anything, c.ID).Return(c, nil)
	ledgerRepo.On("CollectiveBalance", mock.Anything, c.ID, "EUR").Return(int64(198750), nil)

	balance, err := svc.CollectiveBalance(context.Background(), c.ID)

	require.NoError(t, err)
	assert.Equal(t, &ledger.Balance{Amount: 198750, Currency: "EUR"}, balance)
}

func TestBalanceService_CollectiveBalance_UnknownCollective(t *testing.T) {
	collectiveRepo := &MockCollectiveRepo{}
	svc := NewBalanceService(collectiveRepo, &MockPaymentMethodRepo{}, &MockLedgerRepo{}, slog.Default())

	id := uuid.New()
	collectiveRepo.On("GetByID", mock.Anything, id).Return(nil, collective.ErrCollectiveNotFound{Ref: id.String()})

	balance, err := svc.CollectiveBalance(context.Background(), id)

	assert.Nil(t, balance)
	assert.ErrorIs(t, err, shared.ErrNotFound{Resource: "collective"})
}

func TestBalanceService_PaymentMethodBalance(t *testing.T) {
	paymentMethodRepo := &MockPaymentMethodRepo{}
	ledgerRepo := &MockLedgerRepo{}
	svc := NewBalanceService(&MockCollectiveRepo{}, paymentMethodRepo, ledgerRepo, slog.Default())

	pm := &paymentmethod.PaymentMethod{ID: uuid.New(), CollectiveID: uuid.New(), Currency: "USD", Token: "tok-1"}
	paymentMethodRepo.On("GetByToken", mock.Anything, "tok-1").Return(pm, nil)

	// scoped to the owner's side of each pair; a funding source ends up
	// negative once it has paid out
	ledgerRepo.On("PaymentMethodBalance", mock.Anything, pm.ID, pm.CollectiveID, "USD").Return(int64(-5000), nil)

	balance, err := svc.PaymentMethodBalance(context.Background(), "tok-1")

	require.NoError(t, err)
	assert.Equal(t, &ledger.Balance{Amount: -5000, Currency: "USD"}, balance)
}

func TestBalanceService_PaymentMethodBalance_AggregationError(t *testing.T) {
	paymentMethodRepo := &MockPaymentMethodRepo{}
	ledgerRepo := &MockLedgerRepo{}
	svc := NewBalanceService(&MockCollectiveRepo{}, paymentMethodRepo, ledgerRepo, slog.Default())

	pm := &paymentmethod.PaymentMethod{ID: uuid.New(), CollectiveID: uuid.New(), Currency: "USD", Token: "tok-1"}
	paymentMethodRepo.On("GetByToken", mock.Anything, "tok-1").Return(pm, nil)

	dbErr := errors.New("connection reset")
	ledgerRepo.On("PaymentMethodBalance", mock.Anything, pm.ID, pm.CollectiveID, "USD").Return(int64(0), dbErr)

	balance, err := svc.PaymentMethodBalance(context.Background(), "tok-1")

	assert.Nil(t, balance)
	assert.ErrorIs(t, err, dbErr)
}
