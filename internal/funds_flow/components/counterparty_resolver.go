package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/collective-funds-ledger/internal/domain/collective"
	"github.com/collective-funds-ledger/internal/domain/identity"
	"github.com/collective-funds-ledger/internal/domain/shared"
	"github.com/collective-funds-ledger/internal/funds_flow/service"
)

// slugAttempts bounds the numeric-suffix search for a free slug
const slugAttempts = 100

// CounterpartyResolverImpl implements the CounterpartyResolver interface.
// Provisioning runs in its own committed transaction so the ledger
// engine's atomic section never branches on whether the source exists.
type CounterpartyResolverImpl struct {
	txRunner       service.TxRunner
	collectiveRepo collective.Repository
	identityRepo   identity.Repository
	logger         *slog.Logger
}

// NewCounterpartyResolver creates a new counterparty resolver
func NewCounterpartyResolver(
	txRunner service.TxRunner,
	collectiveRepo collective.Repository,
	identityRepo identity.Repository,
	logger *slog.Logger,
) service.CounterpartyResolver {
	return &CounterpartyResolverImpl{
		txRunner:       txRunner,
		collectiveRepo: collectiveRepo,
		identityRepo:   identityRepo,
		logger:         logger,
	}
}

// Resolve returns the existing source collective unchanged, or provisions
// a new organization owned by the acting identity. Resolution by name is
// not idempotent: two calls with the same name create two organizations
// unless the caller supplies the previously returned identifier.
func (r *CounterpartyResolverImpl) Resolve(ctx context.Context, req *shared.OrderRequest, actor *identity.Actor) (*collective.Collective, bool, error) {
	if req.FromCollectiveID != nil {
		src, err := r.collectiveRepo.GetByID(ctx, *req.FromCollectiveID)
		if err != nil {
			return nil, false, err
		}
		return src, false, nil
	}

	info := req.FromCollectiveInfo
	org, err := collective.New(info.Name, shared.CollectiveTypeOrganization, req.Currency, &actor.Identity.ID)
	if err != nil {
		return nil, false, shared.ErrValidation{Reason: err.Error()}
	}
	org.Website = info.Website

	slug, err := r.availableSlug(ctx, org.Slug)
	if err != nil {
		return nil, false, err
	}
	org.Slug = slug

	adminID := actor.Identity.ID
	err = r.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		collectiveRepoTx := r.collectiveRepo.WithTx(tx)
		identityRepoTx := r.identityRepo.WithTx(tx)

		if err := collectiveRepoTx.Create(ctx, org); err != nil {
			return err
		}

		if req.User != nil && req.User.Email != "" {
			contact, err := identityRepoTx.GetByEmail(ctx, req.User.Email)
			if err != nil {
				return err
			}
			if contact == nil {
				contact, err = identity.New(req.User.Email, req.User.Name)
				if err != nil {
					return shared.ErrValidation{Reason: err.Error()}
				}
				if err := identityRepoTx.Create(ctx, contact); err != nil {
					return err
				}
				r.logger.Info("Provisioned minimal identity for new counterparty",
					"identity_id", contact.ID.String(),
					"collective_id", org.ID.String(),
				)
			}
			adminID = contact.ID
		}

		return identityRepoTx.CreateMembership(ctx, identity.NewAdminMembership(adminID, org.ID))
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to provision counterparty %q: %w", info.Name, err)
	}

	r.logger.Info("Provisioned new counterparty organization",
		"collective_id", org.ID.String(),
		"slug", org.Slug,
		"admin_identity_id", adminID.String(),
	)
	return org, true, nil
}

// availableSlug returns the base slug, or the first numeric-suffixed
// variant not yet claimed.
func (r *CounterpartyResolverImpl) availableSlug(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 1; i <= slugAttempts; i++ {
		exists, err := r.collectiveRepo.SlugExists(ctx, candidate)
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
