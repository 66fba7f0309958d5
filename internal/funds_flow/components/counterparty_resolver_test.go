package components

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/collective-funds-ledger/internal/domain/collective"
	"github.com/collective-funds-ledger/internal/domain/identity"
	"github.com/collective-funds-ledger/internal/domain/shared"
)

type MockCollectiveRepo struct {
	mock.Mock
}

func (m *MockCollectiveRepo) Create(ctx context.Context, c *collective.Collective) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCollectiveRepo) GetByID(ctx context.Context, id uuid.UUID) (*collective.Collective, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*collective.Collective), args.Error(1)
}

func (m *MockCollectiveRepo) GetBySlug(ctx context.Context, slug string) (*collective.Collective, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*collective.Collective), args.Error(1)
}

func (m *MockCollectiveRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockCollectiveRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCollectiveRepo) WithTx(tx pgx.Tx) collective.Repository {
	args := m.Called(tx)
	return args.Get(0).(collective.Repository)
}

type MockIdentityRepo struct {
	mock.Mock
}

func (m *MockIdentityRepo) Create(ctx context.Context, ident *identity.Identity) error {
	args := m.Called(ctx, ident)
	return args.Error(0)
}

func (m *MockIdentityRepo) GetByID(ctx context.Context, id uuid.UUID) (*identity.Identity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Identity), args.Error(1)
}

func (m *MockIdentityRepo) GetByEmail(ctx context.Context, email string) (*identity.Identity, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Identity), args.Error(1)
}

func (m *MockIdentityRepo) CreateMembership(ctx context.Context, membership *identity.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockIdentityRepo) AdminCollectiveIDs(ctx context.Context, identityID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockIdentityRepo) WithTx(tx pgx.Tx) identity.Repository {
	args := m.Called(tx)
	return args.Get(0).(identity.Repository)
}

// fakeTxRunner invokes the function directly with a nil transaction
type fakeTxRunner struct {
	err error
}

func (r *fakeTxRunner) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if r.err != nil {
		return r.err
	}
	return fn(nil)
}

func resolverActor() *identity.Actor {
	return &identity.Actor{
		Identity: &identity.Identity{ID: uuid.New(), Email: "creator@example.com"},
	}
}

func TestCounterpartyResolver_ExistingSource(t *testing.T) {
	collectiveRepo := &MockCollectiveRepo{}
	identityRepo := &MockIdentityRepo{}
	resolver := NewCounterpartyResolver(&fakeTxRunner{}, collectiveRepo, identityRepo, slog.Default())

	sourceID := uuid.New()
	source := &collective.Collective{ID: sourceID, Slug: "acme", Name: "Acme"}
	collectiveRepo.On("GetByID", mock.Anything, sourceID).Return(source, nil)

	resolved, created, err := resolver.Resolve(context.Background(), &shared.OrderRequest{
		FromCollectiveID: &sourceID,
		Currency:         "USD",
	}, resolverActor())

	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, source, resolved)
	collectiveRepo.AssertExpectations(t)
	identityRepo.AssertNotCalled(t, "CreateMembership", mock.Anything, mock.Anything)
}

func TestCounterpartyResolver_MissingSourcePropagates(t *testing.T) {
	collectiveRepo := &MockCollectiveRepo{}
	resolver := NewCounterpartyResolver(&fakeTxRunner{}, collectiveRepo, &MockIdentityRepo{}, slog.Default())

	sourceID := uuid.New()
	collectiveRepo.On("GetByID", mock.Anything, sourceID).Return(nil, collective.ErrCollectiveNotFound{Ref: sourceID.String()})

	resolved, created, err := resolver.Resolve(context.Background(), &shared.OrderRequest{
		FromCollectiveID: &sourceID,
	}, resolverActor())

	assert.Nil(t, resolved)
	assert.False(t, created)
	assert.ErrorIs(t, err, collective.ErrCollectiveNotFound{})
}

func TestCounterpartyResolver_ProvisionsOrganization(t *testing.T) {
	collectiveRepo := &MockCollectiveRepo{}
	identityRepo := &MockIdentityRepo{}
	resolver := NewCounterpartyResolver(&fakeTxRunner{}, collectiveRepo, identityRepo, slog.Default())

	actor := resolverActor()

	collectiveRepo.On("SlugExists", mock.Anything, "new-donor-org").Return(false, nil)
	collectiveRepo.On("WithTx", mock.Anything).Return(collectiveRepo)
	identityRepo.On("WithTx", mock.Anything).Return(identityRepo)
	collectiveRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *collective.Collective) bool {
		return c.Type == shared.CollectiveTypeOrganization &&
			c.Slug == "new-donor-org" &&
			c.Currency == "USD" &&
			c.Website == "https://donor.example.com" &&
			c.CreatedByID != nil && *c.CreatedByID == actor.Identity.ID
	})).Return(nil)
	identityRepo.On("CreateMembership", mock.Anything, mock.MatchedBy(func(m *identity.Membership) bool {
		return m.IdentityID == actor.Identity.ID && m.Role == shared.MemberRoleAdmin
	})).Return(nil)

	resolved, created, err := resolver.Resolve(context.Background(), &shared.OrderRequest{
		Currency: "USD",
		FromCollectiveInfo: &shared.CounterpartyInfo{
			Name:    "New Donor Org",
			Website: "https://donor.example.com",
		},
	}, actor)

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "new-donor-org", resolved.Slug)
	collectiveRepo.AssertExpectations(t)
	identityRepo.AssertExpectations(t)
}

func TestCounterpartyResolver_ProvisionsContactIdentity(t *testing.T) {
	collectiveRepo := &MockCollectiveRepo{}
	identityRepo := &MockIdentityRepo{}
	resolver := NewCounterpartyResolver(&fakeTxRunner{}, collectiveRepo, identityRepo, slog.Default())

	collectiveRepo.On("SlugExists", mock.Anything, mock.Anything).Return(false, nil)
	collectiveRepo.On("WithTx", mock.Anything).Return(collectiveRepo)
	identityRepo.On("WithTx", mock.Anything).Return(identityRepo)
	collectiveRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	identityRepo.On("GetByEmail", mock.Anything, "contact@donor.example.com").Return(nil, nil)

	var contactID uuid.UUID
	identityRepo.On("Create", mock.Anything, mock.MatchedBy(func(ident *identity.Identity) bool {
		contactID = ident.ID
		return ident.Email == "contact@donor.example.com"
	})).Return(nil)
	identityRepo.On("CreateMembership", mock.Anything, mock.MatchedBy(func(m *identity.Membership) bool {
		return m.IdentityID == contactID
	})).Return(nil)

	_, created, err := resolver.Resolve(context.Background(), &shared.OrderRequest{
		Currency:           "USD",
		FromCollectiveInfo: &shared.CounterpartyInfo{Name: "Donor Org"},
		User:               &shared.ContactInfo{Email: "contact@donor.example.com", Name: "Dana Donor"},
	}, resolverActor())

	require.NoError(t, err)
	assert.True(t, created)
	identityRepo.AssertExpectations(t)
}

func TestCounterpartyResolver_ReusesExistingContact(t *testing.T) {
	collectiveRepo := &MockCollectiveRepo{}
	identityRepo := &MockIdentityRepo{}
	resolver := NewCounterpartyResolver(&fakeTxRunner{}, collectiveRepo, identityRepo, slog.Default())

	existing := &identity.Identity{ID: uuid.New(), Email: "contact@donor.example.com"}

	collectiveRepo.On("SlugExists", mock.Anything, mock.Anything).Return(false, nil)
	collectiveRepo.On("WithTx", mock.Anything).Return(collectiveRepo)
	identityRepo.On("WithTx", mock.Anything).Return(identityRepo)
	collectiveRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	identityRepo.On("GetByEmail", mock.Anything, existing.Email).Return(existing, nil)
	identityRepo.On("CreateMembership", mock.Anything, mock.MatchedBy(func(m *identity.Membership) bool {
		return m.IdentityID == existing.ID
	})).Return(nil)

	_, _, err := resolver.Resolve(context.Background(), &shared.OrderRequest{
		Currency:           "USD",
		FromCollectiveInfo: &shared.CounterpartyInfo{Name: "Donor Org"},
		User:               &shared.ContactInfo{Email: existing.Email},
	}, resolverActor())

	require.NoError(t, err)
	identityRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	identityRepo.AssertExpectations(t)
}

func TestCounterpartyResolver_SuffixesTakenSlug(t *testing.T) {
	collectiveRepo := &MockCollectiveRepo{}
	identityRepo := &MockIdentityRepo{}
	resolver := NewCounterpartyResolver(&fakeTxRunner{}, collectiveRepo, identityRepo, slog.Default())

	collectiveRepo.On("SlugExists", mock.Anything, "donor-org").Return(true, nil)
	collectiveRepo.On("SlugExists", mock.Anything, "donor-org1").Return(true, nil)
	collectiveRepo.On("SlugExists", mock.Anything, "donor-org2").Return(false, nil)
	collectiveRepo.On("WithTx", mock.Anything).Return(collectiveRepo)
	identityRepo.On("WithTx", mock.Anything).Return(identityRepo)
	collectiveRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	identityRepo.On("CreateMembership", mock.Anything, mock.Anything).Return(nil)

	resolved, _, err := resolver.Resolve(context.Background(), &shared.OrderRequest{
		Currency:           "USD",
		FromCollectiveInfo: &shared.CounterpartyInfo{Name: "Donor Org"},
	}, resolverActor())

	require.NoError(t, err)
	assert.Equal(t, "donor-org2", resolved.Slug)
}

func TestCounterpartyResolver_ProvisioningFailureRollsBack(t *testing.T) {
	collectiveRepo := &MockCollectiveRepo{}
	identityRepo := &MockIdentityRepo{}
	resolver := NewCounterpartyResolver(&fakeTxRunner{}, collectiveRepo, identityRepo, slog.Default())

	dbErr := errors.New("connection reset")
	collectiveRepo.On("SlugExists", mock.Anything, mock.Anything).Return(false, nil)
	collectiveRepo.On("WithTx", mock.Anything).Return(collectiveRepo)
	identityRepo.On("WithTx", mock.Anything).Return(identityRepo)
	collectiveRepo.On("Create", mock.Anything, mock.Anything).Return(dbErr)

	resolved, created, err := resolver.Resolve(context.Background(), &shared.OrderRequest{
		Currency:           "USD",
		FromCollectiveInfo: &shared.CounterpartyInfo{Name: "Donor Org"},
	}, resolverActor())

	assert.Nil(t, resolved)
	assert.False(t, created)
	assert.ErrorIs(t, err, dbErr)
}
