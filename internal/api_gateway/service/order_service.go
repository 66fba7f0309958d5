package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/collective-funds-ledger/internal/domain/collective"
	"github.com/collective-funds-ledger/internal/domain/identity"
	"github.com/collective-funds-ledger/internal/domain/ledger"
	"github.com/collective-funds-ledger/internal/domain/order"
	"github.com/collective-funds-ledger/internal/domain/paymentmethod"
	"github.com/collective-funds-ledger/internal/domain/shared"
	"github.com/collective-funds-ledger/internal/funds_flow/components"
	ffservice "github.com/collective-funds-ledger/internal/funds_flow/service"
	"github.com/collective-funds-ledger/internal/fx"
)

// OrderServiceImpl implements the OrderService interface
type OrderServiceImpl struct {
	fundsFlow          *components.FundsFlow
	fxService          fx.Service
	collectiveRepo     collective.Repository
	paymentMethodRepo  paymentmethod.Repository
	orderRepo          order.Repository
	ledgerRepo         ledger.Repository
	maxRealizeAttempts int
	logger             *slog.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	fundsFlow *components.FundsFlow,
	fxService fx.Service,
	collectiveRepo collective.Repository,
	paymentMethodRepo paymentmethod.Repository,
	orderRepo order.Repository,
	ledgerRepo ledger.Repository,
	maxRealizeAttempts int,
	logger *slog.Logger,
) OrderService {
	return &OrderServiceImpl{
		fundsFlow:          fundsFlow,
		fxService:          fxService,
		collectiveRepo:     collectiveRepo,
		paymentMethodRepo:  paymentMethodRepo,
		orderRepo:          orderRepo,
		ledgerRepo:         ledgerRepo,
		maxRealizeAttempts: maxRealizeAttempts,
		logger:             logger,
	}
}

// CreateOrder runs the order pipeline. The conversion rate is fetched
// exactly once, before the atomic section; only the realization step is
// retried on transient failure, with the already-derived inputs held
// fixed.
func (s *OrderServiceImpl) CreateOrder(ctx context.Context, actor *identity.Actor, req *shared.OrderRequest) (*OrderResult, error) {
	if err := req.Validate(); err != nil {
		var validation shared.ErrValidation
		if !errors.As(err, &validation) {
			err = shared.ErrValidation{Reason: err.Error()}
		}
		return nil, err
	}

	logger := s.logger
	if req.CorrelationID != "" {
		logger = s.logger.With("correlation_id", req.CorrelationID)
	}

	destination, err := s.collectiveRepo.GetByID(ctx, req.CollectiveID)
	if err != nil {
		return nil, asNotFound(err, "collective", req.CollectiveID.String())
	}
	if !destination.IsActive() {
		return nil, shared.ErrValidation{Reason: "destination collective is not active"}
	}

	host, err := s.hostOf(ctx, destination)
	if err != nil {
		return nil, err
	}

	pm, err := s.paymentMethodRepo.GetByToken(ctx, req.PaymentMethodToken)
	if err != nil {
		return nil, asNotFound(err, "payment method", req.PaymentMethodToken)
	}

	pmOwner, err := s.collectiveRepo.GetByID(ctx, pm.CollectiveID)
	if err != nil {
		return nil, asNotFound(err, "collective", pm.CollectiveID.String())
	}

	var source *collective.Collective
	if req.FromCollectiveID != nil {
		source, err = s.collectiveRepo.GetByID(ctx, *req.FromCollectiveID)
		if err != nil {
			return nil, asNotFound(err, "collective", req.FromCollectiveID.String())
		}
	}

	if req.Currency == "" {
		req.Currency = destination.Currency
	}

	if err := s.fundsFlow.Guard.Authorize(&ffservice.AuthorizationState{
		Actor:              actor,
		Request:            req,
		SourceCollective:   source,
		Destination:        destination,
		PaymentMethod:      pm,
		PaymentMethodOwner: pmOwner,
	}); err != nil {
		logger.Warn("Order denied by authorization guard",
			"collective_id", req.CollectiveID.String(),
			"error", err,
		)
		return nil, err
	}

	// Provisioning happens after authorization so a denied order never
	// leaves a counterparty behind
	source, provisioned, err := s.fundsFlow.Resolver.Resolve(ctx, req, actor)
	if err != nil {
		ref := ""
		if req.FromCollectiveID != nil {
			ref = req.FromCollectiveID.String()
		}
		return nil, asNotFound(err, "collective", ref)
	}
	if provisioned {
		logger.Info("Order provisioned a new counterparty",
			"from_collective_id", source.ID.String(),
			"slug", source.Slug,
		)
	}

	rate, err := s.fxService.GetRate(ctx, req.Currency, host.Currency, time.Now().UTC())
	if err != nil {
		return nil, shared.ErrTransient{Err: err}
	}

	hostPct := s.hostFeePercent(req, destination, host)
	platformPct := 0.0
	if req.PlatformFeePercent != nil {
		platformPct = *req.PlatformFeePercent
	}
	fees := s.fundsFlow.Fees.ComputeFees(req.TotalAmount, rate, hostPct, platformPct, req.PaymentProcessorFeeInHostCurrency)

	ord := order.New(req, source.ID, pm.ID, actor.Identity.ID, req.Currency)
	params := ffservice.RealizeParams{
		FromCollectiveID: source.ID,
		HostCollectiveID: host.ID,
		HostCurrency:     host.Currency,
		FxRate:           rate,
		Fees:             fees,
		CorrelationID:    req.CorrelationID,
	}

	pair, err := s.realizeWithRetry(ctx, logger, ord, params)
	if err != nil {
		return nil, err
	}

	return &OrderResult{
		Order:       ord,
		Source:      source,
		Destination: destination,
		CreditEntry: pair.Credit,
	}, nil
}

// realizeWithRetry re-runs the atomic unit of work on transient failures,
// up to the configured bound. The order and params never change between
// attempts.
func (s *OrderServiceImpl) realizeWithRetry(ctx context.Context, logger *slog.Logger, ord *order.Order, params ffservice.RealizeParams) (*ledger.EntryPair, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxRealizeAttempts; attempt++ {
		pair, err := s.fundsFlow.Realization.Realize(ctx, ord, params)
		if err == nil {
			return pair, nil
		}
		if !shared.IsRetryable(err) {
			return nil, err
		}
		lastErr = err
		logger.Warn("Transient failure realizing order, retrying",
			"order_id", ord.ID.String(),
			"attempt", attempt,
			"max_attempts", s.maxRealizeAttempts,
			"error", err,
		)
	}

	logger.Error("Order realization exhausted retry attempts",
		"order_id", ord.ID.String(),
		"attempts", s.maxRealizeAttempts,
		"error", lastErr,
	)
	return nil, lastErr
}

// GetOrder retrieves an order by ID
func (s *OrderServiceImpl) GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	ord, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "order", id.String())
	}
	return ord, nil
}

// GetOrderEntries retrieves the entry pair an order realized into,
// straight from the authoritative ledger
func (s *OrderServiceImpl) GetOrderEntries(ctx context.Context, id uuid.UUID) ([]*ledger.Entry, error) {
	entries, err := s.ledgerRepo.GetByOrderID(ctx, id)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// hostOf resolves the destination's fiscal host: its own record when it
// hosts itself, otherwise the collective it points at
func (s *OrderServiceImpl) hostOf(ctx context.Context, destination *collective.Collective) (*collective.Collective, error) {
	if destination.HostCollectiveID == nil {
		if destination.IsHost {
			return destination, nil
		}
		return nil, shared.ErrValidation{Reason: "destination collective has no fiscal host"}
	}
	host, err := s.collectiveRepo.GetByID(ctx, *destination.HostCollectiveID)
	if err != nil {
		return nil, asNotFound(err, "collective", destination.HostCollectiveID.String())
	}
	return host, nil
}

// hostFeePercent picks the effective host fee: explicit override first,
// then the destination's negotiated percentage, then the host's default
func (s *OrderServiceImpl) hostFeePercent(req *shared.OrderRequest, destination, host *collective.Collective) float64 {
	if req.HostFeePercent != nil {
		return *req.HostFeePercent
	}
	if destination.HostFeePercent != nil {
		return *destination.HostFeePercent
	}
	if host.HostFeePercent != nil {
		return *host.HostFeePercent
	}
	return 0
}

// asNotFound converts repository not-found errors into the shared
// taxonomy; anything else passes through unchanged
func asNotFound(err error, resource, ref string) error {
	var (
		collectiveNotFound    collective.ErrCollectiveNotFound
		paymentMethodNotFound paymentmethod.ErrPaymentMethodNotFound
		orderNotFound         order.ErrOrderNotFound
		identityNotFound      identity.ErrIdentityNotFound
	)
	if errors.As(err, &collectiveNotFound) || errors.As(err, &paymentMethodNotFound) ||
		errors.As(err, &orderNotFound) || errors.As(err, &identityNotFound) {
		return shared.ErrNotFound{Resource: resource, Ref: ref}
	}
	return err
}
