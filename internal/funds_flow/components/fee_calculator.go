package components

import (
	"github.com/shopspring/decimal"

	"github.com/collective-funds-ledger/internal/domain/ledger"
	"github.com/collective-funds-ledger/internal/funds_flow/service"
)

var oneHundred = decimal.NewFromInt(100)

// FeeCalculatorImpl implements the FeeCalculator interface
type FeeCalculatorImpl struct{}

// NewFeeCalculator creates a new fee calculator
func NewFeeCalculator() service.FeeCalculator {
	return &FeeCalculatorImpl{}
}

// ComputeFees derives the fee sub-amounts for one order. Host and
// platform fees are stored as host-currency, negative-signed minor units;
// decimal.Round is half away from zero, which is the ledger's rounding
// rule. The net amount stays in the entry's own currency and is allowed
// to diverge from the rounded host-currency figures by sub-unit rounding.
func (c *FeeCalculatorImpl) ComputeFees(
	baseAmount int64,
	fxRate decimal.Decimal,
	hostFeePercent, platformFeePercent float64,
	processorFeeInHostCurrency int64,
) ledger.FeeSet {
	base := decimal.NewFromInt(baseAmount)
	hostPct := decimal.NewFromFloat(hostFeePercent).Div(oneHundred)
	platformPct := decimal.NewFromFloat(platformFeePercent).Div(oneHundred)

	hostFee := hostPct.Mul(base).Mul(fxRate).Round(0).Neg().IntPart()
	platformFee := platformPct.Mul(base).Mul(fxRate).Round(0).Neg().IntPart()

	processorFee := processorFeeInHostCurrency
	if processorFee > 0 {
		processorFee = -processorFee
	}

	net := base.Mul(decimal.NewFromInt(1).Sub(hostPct)).Round(0).IntPart()

	return ledger.FeeSet{
		HostFeeInHostCurrency:             hostFee,
		PlatformFeeInHostCurrency:         platformFee,
		PaymentProcessorFeeInHostCurrency: processorFee,
		NetAmountInCollectiveCurrency:     net,
	}
}
