package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/collective-funds-ledger/internal/domain/shared"
)

// InverseRatePrecision is the number of decimal places kept when storing
// the host-to-entry-currency rate on an entry.
const InverseRatePrecision = 15

// FeeSet carries the fee sub-amounts of one realized order. All host
// currency figures are negative-signed integer minor units: a fee is a
// deduction from the destination's credit. The net amount is expressed in
// the entry's own currency and may diverge from the host currency fee
// figures by sub-unit rounding.
type FeeSet struct {
	HostFeeInHostCurrency             int64
	PlatformFeeInHostCurrency         int64
	PaymentProcessorFeeInHostCurrency int64
	NetAmountInCollectiveCurrency     int64
}

// Negate mirrors every fee figure for the debit side of a pair
func (f FeeSet) Negate() FeeSet {
	return FeeSet{
		HostFeeInHostCurrency:             -f.HostFeeInHostCurrency,
		PlatformFeeInHostCurrency:         -f.PlatformFeeInHostCurrency,
		PaymentProcessorFeeInHostCurrency: -f.PaymentProcessorFeeInHostCurrency,
		NetAmountInCollectiveCurrency:     -f.NetAmountInCollectiveCurrency,
	}
}

// Entry is one signed, currency-tagged record of a fund movement. Entries
// are append-only and created strictly in DEBIT/CREDIT pairs sharing an
// order reference; the ledger is the source of truth and no entry is ever
// mutated or deleted.
type Entry struct {
	ID               uuid.UUID        `json:"id" bson:"id"`
	Type             shared.EntryType `json:"type" bson:"type"`
	OrderID          uuid.UUID        `json:"order_id" bson:"order_id"`
	FromCollectiveID uuid.UUID        `json:"from_collective_id" bson:"from_collective_id"`
	CollectiveID     uuid.UUID        `json:"collective_id" bson:"collective_id"`
	HostCollectiveID uuid.UUID        `json:"host_collective_id" bson:"host_collective_id"`
	PaymentMethodID  uuid.UUID        `json:"payment_method_id" bson:"payment_method_id"`
	CreatedByID      uuid.UUID        `json:"created_by_id" bson:"created_by_id"`

	// Amount is signed in the entry's own currency: positive toward the
	// destination on the CREDIT row, mirrored negative on the DEBIT row.
	Amount   int64  `json:"amount" bson:"amount"`
	Currency string `json:"currency" bson:"currency"`

	// HostCurrencyFxRate converts host currency back into the entry's
	// currency: it is the stored inverse of the rate used at realization.
	HostCurrency         string          `json:"host_currency" bson:"host_currency"`
	HostCurrencyFxRate   decimal.Decimal `json:"host_currency_fx_rate" bson:"host_currency_fx_rate"`
	AmountInHostCurrency int64           `json:"amount_in_host_currency" bson:"amount_in_host_currency"`

	HostFeeInHostCurrency             int64 `json:"host_fee_in_host_currency" bson:"host_fee_in_host_currency"`
	PlatformFeeInHostCurrency         int64 `json:"platform_fee_in_host_currency" bson:"platform_fee_in_host_currency"`
	PaymentProcessorFeeInHostCurrency int64 `json:"payment_processor_fee_in_host_currency" bson:"payment_processor_fee_in_host_currency"`
	NetAmountInCollectiveCurrency     int64 `json:"net_amount_in_collective_currency" bson:"net_amount_in_collective_currency"`

	CorrelationID string    `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// EntryPair holds the two perspectives of one realized order
type EntryPair struct {
	Credit *Entry
	Debit  *Entry
}

// PairParams collects everything the pair derivation needs beyond the
// order itself. FxRate converts the entry currency into the host
// currency and is fetched exactly once per order.
type PairParams struct {
	OrderID          uuid.UUID
	FromCollectiveID uuid.UUID
	CollectiveID     uuid.UUID
	HostCollectiveID uuid.UUID
	PaymentMethodID  uuid.UUID
	CreatedByID      uuid.UUID
	Amount           int64
	Currency         string
	HostCurrency     string
	FxRate           decimal.Decimal
	Fees             FeeSet
	CorrelationID    string
}

// NewEntryPair derives the balanced CREDIT/DEBIT pair for an order. The
// single fx rate is reused for every derived figure so that all of them
// reconcile; the debit row is produced by negating the signed amounts and
// swapping the account roles, with currency and stored rate preserved.
func NewEntryPair(p PairParams) (*EntryPair, error) {
	if p.Amount <= 0 {
		return nil, shared.ErrValidation{Reason: "entry amount must be positive"}
	}
	if !p.FxRate.IsPositive() {
		return nil, shared.ErrValidation{Reason: "fx rate must be positive"}
	}

	amountInHostCurrency := decimal.NewFromInt(p.Amount).Mul(p.FxRate).Round(0).IntPart()
	inverseRate := decimal.NewFromInt(1).Div(p.FxRate).Round(InverseRatePrecision)
	now := time.Now().UTC()

	credit := &Entry{
		ID:               uuid.New(),
		Type:             shared.EntryTypeCredit,
		OrderID:          p.OrderID,
		FromCollectiveID: p.FromCollectiveID,
		CollectiveID:     p.CollectiveID,
		HostCollectiveID: p.HostCollectiveID,
		PaymentMethodID:  p.PaymentMethodID,
		CreatedByID:      p.CreatedByID,

		Amount:   p.Amount,
		Currency: p.Currency,

		HostCurrency:         p.HostCurrency,
		HostCurrencyFxRate:   inverseRate,
		AmountInHostCurrency: amountInHostCurrency,

		HostFeeInHostCurrency:             p.Fees.HostFeeInHostCurrency,
		PlatformFeeInHostCurrency:         p.Fees.PlatformFeeInHostCurrency,
		PaymentProcessorFeeInHostCurrency: p.Fees.PaymentProcessorFeeInHostCurrency,
		NetAmountInCollectiveCurrency:     p.Fees.NetAmountInCollectiveCurrency,

		CorrelationID: p.CorrelationID,
		CreatedAt:     now,
	}

	mirrored := p.Fees.Negate()
	debit := &Entry{
		ID:               uuid.New(),
		Type:             shared.EntryTypeDebit,
		OrderID:          p.OrderID,
		FromCollectiveID: p.CollectiveID,
		CollectiveID:     p.FromCollectiveID,
		HostCollectiveID: p.HostCollectiveID,
		PaymentMethodID:  p.PaymentMethodID,
		CreatedByID:      p.CreatedByID,

		Amount:   -p.Amount,
		Currency: p.Currency,

		HostCurrency:         p.HostCurrency,
		HostCurrencyFxRate:   inverseRate,
		AmountInHostCurrency: -amountInHostCurrency,

		HostFeeInHostCurrency:             mirrored.HostFeeInHostCurrency,
		PlatformFeeInHostCurrency:         mirrored.PlatformFeeInHostCurrency,
		PaymentProcessorFeeInHostCurrency: mirrored.PaymentProcessorFeeInHostCurrency,
		NetAmountInCollectiveCurrency:     mirrored.NetAmountInCollectiveCurrency,

		CorrelationID: p.CorrelationID,
		CreatedAt:     now,
	}

	pair := &EntryPair{Credit: credit, Debit: debit}
	if err := pair.Validate(); err != nil {
		return nil, err
	}
	return pair, nil
}

// Validate enforces the balance invariant: every signed figure on the
// credit row must be the exact negation of its debit counterpart, with
// currencies and order reference consistent. A violation is fatal and
// must never be persisted.
func (p *EntryPair) Validate() error {
	c, d := p.Credit, p.Debit
	if c == nil || d == nil {
		return shared.ErrFatal{Reason: "entry pair is incomplete"}
	}
	if c.OrderID != d.OrderID {
		return shared.ErrFatal{Reason: "entry pair references different orders"}
	}
	if c.Currency != d.Currency || c.HostCurrency != d.HostCurrency {
		return shared.ErrFatal{Reason: "entry pair currencies are inconsistent"}
	}
	if !c.HostCurrencyFxRate.Equal(d.HostCurrencyFxRate) {
		return shared.ErrFatal{Reason: "entry pair fx rates are inconsistent"}
	}
	if c.CollectiveID != d.FromCollectiveID || c.FromCollectiveID != d.CollectiveID {
		return shared.ErrFatal{Reason: "entry pair account roles are not mirrored"}
	}

	checks := []struct {
		name   string
		credit int64
		debit  int64
	}{
		{"amount", c.Amount, d.Amount},
		{"amount_in_host_currency", c.AmountInHostCurrency, d.AmountInHostCurrency},
		{"host_fee_in_host_currency", c.HostFeeInHostCurrency, d.HostFeeInHostCurrency},
		{"platform_fee_in_host_currency", c.PlatformFeeInHostCurrency, d.PlatformFeeInHostCurrency},
		{"payment_processor_fee_in_host_currency", c.PaymentProcessorFeeInHostCurrency, d.PaymentProcessorFeeInHostCurrency},
		{"net_amount_in_collective_currency", c.NetAmountInCollectiveCurrency, d.NetAmountInCollectiveCurrency},
	}
	for _, chk := range checks {
		if chk.credit != -chk.debit {
			return shared.ErrFatal{
				Reason: fmt.Sprintf("entry pair does not balance on %s: credit %d, debit %d", chk.name, chk.credit, chk.debit),
			}
		}
	}
	return nil
}
