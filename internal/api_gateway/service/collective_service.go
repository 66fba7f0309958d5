package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/collective-funds-ledger/internal/domain/collective"
	"github.com/collective-funds-ledger/internal/domain/identity"
	"github.com/collective-funds-ledger/internal/domain/paymentmethod"
	"github.com/collective-funds-ledger/internal/domain/shared"
)

// slugAttempts bounds the numeric-suffix search for a free slug
const slugAttempts = 100

// CollectiveServiceImpl implements the CollectiveService interface
type CollectiveServiceImpl struct {
	collectiveRepo    collective.Repository
	identityRepo      identity.Repository
	paymentMethodRepo paymentmethod.Repository
	logger            *slog.Logger
}

// NewCollectiveService creates a new collective service
func NewCollectiveService(
	collectiveRepo collective.Repository,
	identityRepo identity.Repository,
	paymentMethodRepo paymentmethod.Repository,
	logger *slog.Logger,
) CollectiveService {
	return &CollectiveServiceImpl{
		collectiveRepo:    collectiveRepo,
		identityRepo:      identityRepo,
		paymentMethodRepo: paymentMethodRepo,
		logger:            logger,
	}
}

// CreateCollective creates a collective owned by the acting identity and
// grants them the admin membership. A hosted collective must name an
// active host.
func (s *CollectiveServiceImpl) CreateCollective(ctx context.Context, actor *identity.Actor, params CreateCollectiveParams) (*collective.Collective, error) {
	if actor == nil || actor.Identity == nil {
		return nil, shared.ErrUnauthorized{Reason: "you need to be logged in to create a collective"}
	}

	c, err := collective.New(params.Name, params.Type, params.Currency, &actor.Identity.ID)
	if err != nil {
		return nil, shared.ErrValidation{Reason: err.Error()}
	}
	c.Website = params.Website
	c.HostFeePercent = params.HostFeePercent

	if params.HostCollectiveID != nil {
		host, err := s.collectiveRepo.GetByID(ctx, *params.HostCollectiveID)
		if err != nil {
			return nil, asNotFound(err, "collective", params.HostCollectiveID.String())
		}
		if !host.IsHost || !host.IsActive() {
			return nil, shared.ErrValidation{Reason: "named host collective is not an active host"}
		}
		c.HostCollectiveID = &host.ID
	}

	slug, err := s.availableSlug(ctx, c.Slug)
	if err != nil {
		return nil, err
	}
	c.Slug = slug

	if err := s.collectiveRepo.Create(ctx, c); err != nil {
		var duplicate collective.ErrDuplicateSlug
		if errors.As(err, &duplicate) {
			return nil, shared.ErrValidation{Reason: "a collective with this slug already exists"}
		}
		return nil, err
	}

	if err := s.identityRepo.CreateMembership(ctx, identity.NewAdminMembership(actor.Identity.ID, c.ID)); err != nil {
		s.logger.Error("Collective created but admin membership failed",
			"collective_id", c.ID.String(),
			"identity_id", actor.Identity.ID.String(),
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("Created collective",
		"collective_id", c.ID.String(),
		"slug", c.Slug,
		"type", string(c.Type),
	)
	return c, nil
}

// GetBySlug retrieves a collective by its slug
func (s *CollectiveServiceImpl) GetBySlug(ctx context.Context, slug string) (*collective.Collective, error) {
	c, err := s.collectiveRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, asNotFound(err, "collective", slug)
	}
	return c, nil
}

// GetByID retrieves a collective by its ID
func (s *CollectiveServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*collective.Collective, error) {
	c, err := s.collectiveRepo.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "collective", id.String())
	}
	return c, nil
}

// CreatePaymentMethod attaches a payment method to a collective the
// acting identity administers
func (s *CollectiveServiceImpl) CreatePaymentMethod(ctx context.Context, actor *identity.Actor, collectiveID uuid.UUID, service shared.PaymentMethodService, name, currency string) (*paymentmethod.PaymentMethod, error) {
	if actor == nil || actor.Identity == nil {
		return nil, shared.ErrUnauthorized{Reason: "you need to be logged in to add a payment method"}
	}

	owner, err := s.collectiveRepo.GetByID(ctx, collectiveID)
	if err != nil {
		return nil, asNotFound(err, "collective", collectiveID.String())
	}
	if !owner.IsActive() {
		return nil, shared.ErrValidation{Reason: "cannot add a payment method to a retired collective"}
	}

	if !actor.IsAdminOf(owner.ID) && !actor.IsRoot() {
		return nil, shared.ErrUnauthorized{Reason: "insufficient permissions to add a payment method to this collective"}
	}

	pm, err := paymentmethod.New(owner.ID, service, name, currency)
	if err != nil {
		return nil, shared.ErrValidation{Reason: err.Error()}
	}

	if err := s.paymentMethodRepo.Create(ctx, pm); err != nil {
		return nil, err
	}

	s.logger.Info("Created payment method",
		"payment_method_id", pm.ID.String(),
		"collective_id", owner.ID.String(),
		"service", string(pm.Service),
	)
	return pm, nil
}

// availableSlug returns the base slug, or the first numeric-suffixed
// variant not yet claimed
func (s *CollectiveServiceImpl) availableSlug(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 1; i <= slugAttempts; i++ {
		exists, err := s.collectiveRepo.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug availability for %q: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return "", fmt.Errorf("could not find an available slug for %q after %d attempts", base, slugAttempts)
}
