package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/collective-funds-ledger/internal/domain/collective"
	"github.com/collective-funds-ledger/internal/domain/identity"
	"github.com/collective-funds-ledger/internal/domain/shared"
	"log/slog"
)

func loggedInActor(adminOf ...uuid.UUID) *identity.Actor {
	admins := make(map[uuid.UUID]struct{}, len(adminOf))
	for _, id := range adminOf {
		admins[id] = struct{}{}
	}
	return &identity.Actor{
		Identity: &identity.Identity{ID: uuid.New(), Email: "user@example.com"},
		AdminOf:  admins,
	}
}

func TestCollectiveService_CreateCollective(t *testing.T) {
	collectiveRepo := &MockCollectiveRepo{}
	identityRepo := &MockIdentityRepo{}
	svc := NewCollectiveService(collectiveRepo, identityRepo, &MockPaymentMethodRepo{}, slog.Default())

	actor := loggedInActor()

	collectiveRepo.On("SlugExists", mock.Anything, "open-source-collective").Return(false, nil)
	collectiveRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *collective.Collective) bool {
		return c.Slug == "open-source-collective" &&
			c.Currency == "USD" &&
			c.CreatedByID != nil && *c.CreatedByID == actor.Identity.ID
	})).Return(nil)
	identityRepo.On("CreateMembership", mock.Anything, mock.MatchedBy(func(m *identity.Membership) bool {
		return m.IdentityID == actor.Identity.ID && m.Role == shared.MemberRoleAdmin
	})).Return(nil)

	created, err := svc.CreateCollective(context.Background(), actor, CreateCollectiveParams{
		Name:     "Open Source Collective",
		Type:     shared.CollectiveTypeCollective,
		Currency: "usd",
	})

	require.NoError(t, err)
	assert.Equal(t, "open-source-collective", created.Slug)
	collectiveRepo.AssertExpectations(t)
	identityRepo.AssertExpectations(t)
}

func TestCollectiveService_CreateCollective_RequiresActor(t *testing.T) {
	svc := NewCollectiveService(&MockCollectiveRepo{}, &MockIdentityRepo{}, &MockPaymentMethodRepo{}, slog.Default())

	created, err := svc.CreateCollective(context.Background(), nil, CreateCollectiveParams{
		Name:     "Acme",
		Type:     shared.CollectiveTypeOrganization,
		Currency: "USD",
	})

	assert.Nil(t, created)
	assert.ErrorIs(t, err, shared.ErrUnauthorized{Reason: "you need to be logged in to create a collective"})
}

func TestCollectiveService_CreateCollective_HostMustBeActiveHost(t *testing.T) {
	collectiveRepo := &MockCollectiveRepo{}
	svc := NewCollectiveService(collectiveRepo, &MockIdentityRepo{}, &MockPaymentMethodRepo{}, slog.Default())

	notAHost := &collective.Collective{ID: uuid.New(), Type: shared.CollectiveTypeOrganization}
	collectiveRepo.On("GetByID", mock.Anything, notAHost.ID).Return(notAHost, nil)

	created, err := svc.CreateCollective(context.Background(), loggedInActor(), CreateCollectiveParams{
		Name:             "Hosted Project",
		Type:             shared.CollectiveTypeCollective,
		Currency:         "USD",
		HostCollectiveID: &notAHost.ID,
	})

	assert.Nil(t, created)
	assert.ErrorIs(t, err, shared.ErrValidation{Reason: "named host collective is not an active host"})
}

func TestCollectiveService_CreateCollective_SlugCollision(t *testing.T) {
	collectiveRepo := &MockCollectiveRepo{}
	identityRepo := &MockIdentityRepo{}
	svc := NewCollectiveService(collectiveRepo, identityRepo, &MockPaymentMethodRepo{}, slog.Default())

	collectiveRepo.On("SlugExists", mock.Anything, "acme").Return(true, nil)
	collectiveRepo.On("SlugExists", mock.Anything, "acme1").Return(false, nil)
	collectiveRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *collective.Collective) bool {
		return c.Slug == "acme1"
	})).Return(nil)
	identityRepo.On("CreateMembership", mock.Anything, mock.Anything).Return(nil)

	created, err := svc.CreateCollective(context.Background(), loggedInActor(), CreateCollectiveParams{
		Name:     "Acme",
		Type:     shared.CollectiveTypeOrganization,
		Currency: "USD",
	})

	require.NoError(t, err)
	assert.Equal(t, "acme1", created.Slug)
}

func TestCollectiveService_CreateCollective_DuplicateSlugRace(t *testing.T) {
	collectiveRepo := &MockCollectiveRepo{}
	svc := NewCollectiveService(collectiveRepo, &MockIdentityRepo{}, &MockPaymentMethodRepo{}, slog.Default())

	// the slug was free at check time but claimed before the insert
	collectiveRepo.On("SlugExists", mock.Anything, "acme").Return(false, nil)
	collectiveRepo.On("Create", mock.Anything, mock.Anything).Return(collective.ErrDuplicateSlug{Slug: "acme"})

	created, err := svc.CreateCollective(context.Background(), loggedInActor(), CreateCollectiveParams{
		Name:     "Acme",
		Type:     shared.CollectiveTypeOrganization,
		Currency: "USD",
	})

	assert.Nil(t, created)
	assert.ErrorIs(t, err, shared.ErrValidation{})
}

func TestCollectiveService_CreatePaymentMethod(t *testing.T) {
	collectiveRepo := &MockCollectiveRepo{}
	paymentMethodRepo := &MockPaymentMethodRepo{}
	svc := NewCollectiveService(collectiveRepo, &MockIdentityRepo{}, paymentMethodRepo, slog.Default())

	owner := &collective.Collective{ID: uuid.New(), Type: shared.CollectiveTypeOrganization}
	actor := loggedInActor(owner.ID)

	collectiveRepo.On("GetByID", mock.Anything, owner.ID).Return(owner, nil)
	paymentMethodRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	pm, err := svc.CreatePaymentMethod(context.Background(), actor, owner.ID, shared.ServiceStripe, "Company card", "usd")

	require.NoError(t, err)
	assert.Equal(t, owner.ID, pm.CollectiveID)
	assert.Equal(t, "USD", pm.Currency)
	assert.NotEmpty(t, pm.Token)
	paymentMethodRepo.AssertExpectations(t)
}

func TestCollectiveService_CreatePaymentMethod_Denied(t *testing.T) {
	collectiveRepo := &MockCollectiveRepo{}
	svc := NewCollectiveService(collectiveRepo, &MockIdentityRepo{}, &MockPaymentMethodRepo{}, slog.Default())

	owner := &collective.Collective{ID: uuid.New(), Type: shared.CollectiveTypeOrganization}
	collectiveRepo.On("GetByID", mock.Anything, owner.ID).Return(owner, nil)

	pm, err := svc.CreatePaymentMethod(context.Background(), loggedInActor(), owner.ID, shared.ServiceStripe, "Card", "USD")

	assert.Nil(t, pm)
	assert.ErrorIs(t, err, shared.ErrUnauthorized{Reason: "insufficient permissions to add a payment method to this collective"})
}

func TestCollectiveService_CreatePaymentMethod_RetiredOwner(t *testing.T) {
	collectiveRepo := &MockCollectiveRepo{}
	svc := NewCollectiveService(collectiveRepo, &MockIdentityRepo{}, &MockPaymentMethodRepo{}, slog.Default())

	owner := &collective.Collective{ID: uuid.New(), Type: shared.CollectiveTypeOrganization}
	retired := owner.CreatedAt
	owner.DeactivatedAt = &retired
	collectiveRepo.On("GetByID", mock.Anything, owner.ID).Return(owner, nil)

	pm, err := svc.CreatePaymentMethod(context.Background(), loggedInActor(owner.ID), owner.ID, shared.ServiceStripe, "Card", "USD")

	assert.Nil(t, pm)
	assert.ErrorIs(t, err, shared.ErrValidation{Reason: "cannot add a payment method to a retired collective"})
}

func TestCollectiveService_GetBySlug_NotFound(t *testing.T) {
	collectiveRepo := &MockCollectiveRepo{}
	svc := NewCollectiveService(collectiveRepo, &MockIdentityRepo{}, &MockPaymentMethodRepo{}, slog.Default())

	collectiveRepo.On("GetBySlug", mock.Anything, "missing").
		Return(nil, collective.ErrCollectiveNotFound{Ref: "missing"})

	c, err := svc.GetBySlug(context.Background(), "missing")

	assert.Nil(t, c)
	assert.ErrorIs(t, err, shared.ErrNotFound{Resource: "collective", Ref: "missing"})
}
