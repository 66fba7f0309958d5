// Package fx wraps the external exchange-rate provider behind the
// conversion service the ledger engine consumes. The service is injected
// per call site; there is no process-wide mutable rate state beyond its
// own time-bounded cache.
package fx

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Service returns conversion rates for currency pairs. A rate is fetched
// at most once per order and reused for every figure derived from it.
type Service interface {
	// GetRate returns the factor converting from into to as of the given
	// time. When the currencies are equal it returns exactly 1 without
	// consulting the provider.
	GetRate(ctx context.Context, from, to string, asOf time.Time) (decimal.Decimal, error)
}

type cachedRate struct {
	rate      decimal.Decimal
	fetchedAt time.Time
}

// ServiceImpl implements Service with a mutex-guarded TTL cache in front
// of the provider.
type ServiceImpl struct {
	provider RateProvider
	cacheTTL time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	cache map[string]cachedRate
}

// NewService creates a conversion service. A non-positive ttl disables
// caching.
func NewService(provider RateProvider, cacheTTL time.Duration, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		provider: provider,
		cacheTTL: cacheTTL,
		logger:   logger,
		cache:    make(map[string]cachedRate),
	}
}

// GetRate implements Service
func (s *ServiceImpl) GetRate(ctx context.Context, from, to string, asOf time.Time) (decimal.Decimal, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	if from == to {
		return decimal.NewFromInt(1), nil
	}

	key := from + "/" + to
	if s.cacheTTL > 0 {
		s.mu.Lock()
		cached, ok := s.cache[key]
		s.mu.Unlock()
		if ok && time.Since(cached.fetchedAt) < s.cacheTTL {
			s.logger.Debug("Fx rate served from cache", "pair", key, "rate", cached.rate.String())
			return cached.rate, nil
		}
	}

	rate, err := s.provider.FetchRate(ctx, from, to, asOf)
	if err != nil {
		s.logger.Error("Failed to fetch fx rate", "pair", key, "error", err)
		return decimal.Zero, fmt.Errorf("failed to fetch fx rate for %s: %w", key, err)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("provider returned non-positive fx rate for %s: %s", key, rate.String())
	}

	if s.cacheTTL > 0 {
		s.mu.Lock()
		s.cache[key] = cachedRate{rate: rate, fetchedAt: time.Now()}
		s.mu.Unlock()
	}

	s.logger.Debug("Fx rate fetched from provider", "pair", key, "rate", rate.String())
	return rate, nil
}
