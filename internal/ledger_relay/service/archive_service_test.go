package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/collective-funds-ledger/internal/domain/ledger"
	"github.com/collective-funds-ledger/internal/domain/shared"
)

type MockArchiveRepo struct {
	mock.Mock
}

func (m *MockArchiveRepo) Archive(ctx context.Context, entry *ledger.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockArchiveRepo) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockArchiveRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*ledger.Entry, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockArchiveRepo) GetByCollectiveID(ctx context.Context, collectiveID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	args := m.Called(ctx, collectiveID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockArchiveRepo) CountByCollectiveID(ctx context.Context, collectiveID uuid.UUID) (int64, error) {
	args := m.Called(ctx, collectiveID)
	return args.Get(0).(int64), args.Error(1)
}

func archivableEntry() *ledger.Entry {
	return &ledger.Entry{
		ID:           uuid.New(),
		Type:         shared.EntryTypeCredit,
		OrderID:      uuid.New(),
		CollectiveID: uuid.New(),
		Amount:       1000,
		Currency:     "EUR",
	}
}

func TestArchiveService_ArchiveEntry(t *testing.T) {
	archiveRepo := &MockArchiveRepo{}
	svc := NewArchiveService(archiveRepo, slog.Default())

	entry := archivableEntry()
	archiveRepo.On("Archive", mock.Anything, entry).Return(nil)

	err := svc.ArchiveEntry(context.Background(), entry)

	assert.NoError(t, err)
	archiveRepo.AssertExpectations(t)
}

func TestArchiveService_RejectsEntryWithoutID(t *testing.T) {
	archiveRepo := &MockArchiveRepo{}
	svc := NewArchiveService(archiveRepo, slog.Default())

	entry := archivableEntry()
	entry.ID = uuid.Nil

	err := svc.ArchiveEntry(context.Background(), entry)

	assert.ErrorIs(t, err, ErrMissingEntryID)
	archiveRepo.AssertNotCalled(t, "Archive", mock.Anything, mock.Anything)
}

func TestArchiveService_WrapsRepositoryError(t *testing.T) {
	archiveRepo := &MockArchiveRepo{}
	svc := NewArchiveService(archiveRepo, slog.Default())

	entry := archivableEntry()
	dbErr := errors.New("server selection timeout")
	archiveRepo.On("Archive", mock.Anything, entry).Return(dbErr)

	err := svc.ArchiveEntry(context.Background(), entry)

	assert.ErrorIs(t, err, dbErr)
}
