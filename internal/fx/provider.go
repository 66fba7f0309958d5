package fx

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RateProvider is the external exchange-rate source. It is consumed as a
// black box: given a currency pair and a point in time it returns the
// factor converting one unit of the source currency into the target
// currency. Implementations may perform network I/O.
type RateProvider interface {
	FetchRate(ctx context.Context, from, to string, asOf time.Time) (decimal.Decimal, error)
}

// ErrRateUnavailable indicates the provider has no rate for a pair
type ErrRateUnavailable struct {
	From string
	To   string
}

func (e ErrRateUnavailable) Error() string {
	return fmt.Sprintf("no exchange rate available for %s/%s", e.From, e.To)
}

// StaticProvider serves rates from a fixed in-memory table. It backs
// development setups and tests; production wires a real provider.
type StaticProvider struct {
	rates map[string]decimal.Decimal
}

// NewStaticProvider builds a provider from pair -> rate entries keyed as
// "FROM/TO". The inverse of each pair is derived automatically unless
// given explicitly.
func NewStaticProvider(rates map[string]float64) *StaticProvider {
	table := make(map[string]decimal.Decimal, len(rates)*2)
	for pair, rate := range rates {
		table[strings.ToUpper(pair)] = decimal.NewFromFloat(rate)
	}
	for pair, rate := range table {
		from, to, ok := strings.Cut(pair, "/")
		if !ok || rate.IsZero() {
			continue
		}
		inverse := to + "/" + from
		if _, exists := table[inverse]; !exists {
			table[inverse] = decimal.NewFromInt(1).Div(rate)
		}
	}
	return &StaticProvider{rates: table}
}

func (p *StaticProvider) FetchRate(_ context.Context, from, to string, _ time.Time) (decimal.Decimal, error) {
	rate, ok := p.rates[strings.ToUpper(from)+"/"+strings.ToUpper(to)]
	if !ok {
		return decimal.Zero, ErrRateUnavailable{From: from, To: to}
	}
	return rate, nil
}
