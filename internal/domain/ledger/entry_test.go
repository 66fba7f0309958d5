package ledger

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collective-funds-ledger/internal/domain/shared"
)

func pairParams(amount int64, rate string) PairParams {
	return PairParams{
		OrderID:          uuid.New(),
		FromCollectiveID: uuid.New(),
		CollectiveID:     uuid.New(),
		HostCollectiveID: uuid.New(),
		PaymentMethodID:  uuid.New(),
		CreatedByID:      uuid.New(),
		Amount:           amount,
		Currency:         "EUR",
		HostCurrency:     "USD",
		FxRate:           decimal.RequireFromString(rate),
		CorrelationID:    "corr-1",
	}
}

func TestNewEntryPair_DerivesHostCurrencyFigures(t *testing.T) {
	p := pairParams(1000, "1.1654")
	p.Fees = FeeSet{NetAmountInCollectiveCurrency: 1000}

	pair, err := NewEntryPair(p)
	require.NoError(t, err)

	credit := pair.Credit
	assert.Equal(t, shared.EntryTypeCredit, credit.Type)
	assert.Equal(t, int64(1000), credit.Amount)
	assert.Equal(t, "EUR", credit.Currency)
	assert.Equal(t, "USD", credit.HostCurrency)

	// 1000 * 1.1654 = 1165.4, rounded half away from zero
	assert.Equal(t, int64(1165), credit.AmountInHostCurrency)

	// The stored rate converts host currency back into the entry's
	// currency: 1/1.1654 kept to fifteen decimal places.
	expectedInverse := decimal.NewFromInt(1).Div(decimal.RequireFromString("1.1654")).Round(InverseRatePrecision)
	assert.True(t, credit.HostCurrencyFxRate.Equal(expectedInverse),
		"stored rate %s, want %s", credit.HostCurrencyFxRate, expectedInverse)
}

func TestNewEntryPair_DebitMirrorsCredit(t *testing.T) {
	p := pairParams(4000, "1.1")
	p.Fees = FeeSet{
		HostFeeInHostCurrency:             -176,
		PlatformFeeInHostCurrency:         -220,
		PaymentProcessorFeeInHostCurrency: -30,
		NetAmountInCollectiveCurrency:     3840,
	}

	pair, err := NewEntryPair(p)
	require.NoError(t, err)

	credit, debit := pair.Credit, pair.Debit
	assert.Equal(t, shared.EntryTypeDebit, debit.Type)

	// Account roles swap, everything signed negates, currency and rate
	// carry over unchanged.
	assert.Equal(t, credit.CollectiveID, debit.FromCollectiveID)
	assert.Equal(t, credit.FromCollectiveID, debit.CollectiveID)
	assert.Equal(t, credit.OrderID, debit.OrderID)
	assert.Equal(t, -credit.Amount, debit.Amount)
	assert.Equal(t, -credit.AmountInHostCurrency, debit.AmountInHostCurrency)
	assert.Equal(t, int64(176), debit.HostFeeInHostCurrency)
	assert.Equal(t, int64(220), debit.PlatformFeeInHostCurrency)
	assert.Equal(t, int64(30), debit.PaymentProcessorFeeInHostCurrency)
	assert.Equal(t, int64(-3840), debit.NetAmountInCollectiveCurrency)
	assert.Equal(t, credit.Currency, debit.Currency)
	assert.Equal(t, credit.HostCurrency, debit.HostCurrency)
	assert.True(t, credit.HostCurrencyFxRate.Equal(debit.HostCurrencyFxRate))
}

func TestNewEntryPair_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PairParams)
	}{
		{"zero amount", func(p *PairParams) { p.Amount = 0 }},
		{"negative amount", func(p *PairParams) { p.Amount = -5 }},
		{"zero rate", func(p *PairParams) { p.FxRate = decimal.Zero }},
		{"negative rate", func(p *PairParams) { p.FxRate = decimal.NewFromFloat(-1.1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := pairParams(1000, "1.1654")
			tt.mutate(&p)

			pair, err := NewEntryPair(p)
			assert.Nil(t, pair)
			assert.ErrorIs(t, err, shared.ErrValidation{})
		})
	}
}

func TestEntryPair_Validate_DetectsImbalance(t *testing.T) {
	p := pairParams(1000, "1.1654")
	p.Fees = FeeSet{HostFeeInHostCurrency: -47, NetAmountInCollectiveCurrency: 960}

	pair, err := NewEntryPair(p)
	require.NoError(t, err)
	require.NoError(t, pair.Validate())

	// Corrupt one figure: the pair no longer balances and the violation
	// must be fatal, not retryable.
	pair.Debit.HostFeeInHostCurrency = 46
	err = pair.Validate()
	require.Error(t, err)

	var fatal shared.ErrFatal
	assert.True(t, errors.As(err, &fatal))
	assert.False(t, shared.IsRetryable(err))
}

func TestEntryPair_Validate_DetectsRoleMismatch(t *testing.T) {
	p := pairParams(1000, "1.1654")
	p.Fees = FeeSet{NetAmountInCollectiveCurrency: 1000}

	pair, err := NewEntryPair(p)
	require.NoError(t, err)

	pair.Debit.CollectiveID = uuid.New()
	var fatal shared.ErrFatal
	assert.True(t, errors.As(pair.Validate(), &fatal))
}

func TestFeeSet_Negate(t *testing.T) {
	fees := FeeSet{
		HostFeeInHostCurrency:             -47,
		PlatformFeeInHostCurrency:         -50,
		PaymentProcessorFeeInHostCurrency: -12,
		NetAmountInCollectiveCurrency:     960,
	}

	mirrored := fees.Negate()
	assert.Equal(t, int64(47), mirrored.HostFeeInHostCurrency)
	assert.Equal(t, int64(50), mirrored.PlatformFeeInHostCurrency)
	assert.Equal(t, int64(12), mirrored.PaymentProcessorFeeInHostCurrency)
	assert.Equal(t, int64(-960), mirrored.NetAmountInCollectiveCurrency)
	assert.Equal(t, fees, mirrored.Negate())
}
