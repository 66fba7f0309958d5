package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/collective-funds-ledger/internal/domain/collective"
	"github.com/collective-funds-ledger/internal/domain/identity"
	"github.com/collective-funds-ledger/internal/domain/ledger"
	"github.com/collective-funds-ledger/internal/domain/order"
	"github.com/collective-funds-ledger/internal/domain/paymentmethod"
	"github.com/collective-funds-ledger/internal/domain/shared"
	ffservice "github.com/collective-funds-ledger/internal/funds_flow/service"
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

type MockPaymentMethodRepo struct {
	mock.Mock
}

func (m *MockPaymentMethodRepo) Create(ctx context.Context, pm *paymentmethod.PaymentMethod) error {
	args := m.Called(ctx, pm)
	return args.Error(0)
}

func (m *MockPaymentMethodRepo) GetByID(ctx context.Context, id uuid.UUID) (*paymentmethod.PaymentMethod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentmethod.PaymentMethod), args.Error(1)
}

func (m *MockPaymentMethodRepo) GetByToken(ctx context.Context, token string) (*paymentmethod.PaymentMethod, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentmethod.PaymentMethod), args.Error(1)
}

func (m *MockPaymentMethodRepo) WithTx(tx pgx.Tx) paymentmethod.Repository {
	args := m.Called(tx)
	return args.Get(0).(paymentmethod.Repository)
}

type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) Create(ctx context.Context, ord *order.Order) error {
	args := m.Called(ctx, ord)
	return args.Error(0)
}

func (m *MockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status shared.OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOrderRepo) WithTx(tx pgx.Tx) order.Repository {
	args := m.Called(tx)
	return args.Get(0).(order.Repository)
}

type MockLedgerRepo struct {
	mock.Mock
}

func (m *MockLedgerRepo) CreatePair(ctx context.Context, pair *ledger.EntryPair) error {
	args := m.Called(ctx, pair)
	return args.Error(0)
}

func (m *MockLedgerRepo) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*ledger.Entry, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepo) GetByCollectiveID(ctx context.Context, collectiveID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	args := m.Called(ctx, collectiveID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepo) CountByCollectiveID(ctx context.Context, collectiveID uuid.UUID) (int64, error) {
	args := m.Called(ctx, collectiveID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepo) CollectiveBalance(ctx context.Context, collectiveID uuid.UUID, currency string) (int64, error) {
	args := m.Called(ctx, collectiveID, currency)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepo) PaymentMethodBalance(ctx context.Context, paymentMethodID, ownerCollectiveID uuid.UUID, currency string) (int64, error) {
	args := m.Called(ctx, paymentMethodID, ownerCollectiveID, currency)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepo) WithTx(tx pgx.Tx) ledger.Repository {
	args := m.Called(tx)
	return args.Get(0).(ledger.Repository)
}

type MockFxService struct {
	mock.Mock
}

func (m *MockFxService) GetRate(ctx context.Context, from, to string, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, req *shared.OrderRequest, actor *identity.Actor) (*collective.Collective, bool, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*collective.Collective), args.Bool(1), args.Error(2)
}

type MockRealization struct {
	mock.Mock
}

func (m *MockRealization) Realize(ctx context.Context, ord *order.Order, params ffservice.RealizeParams) (*ledger.EntryPair, error) {
	args := m.Called(ctx, ord, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.EntryPair), args.Error(1)
}
