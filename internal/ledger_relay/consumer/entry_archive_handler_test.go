package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/collective-funds-ledger/internal/domain/ledger"
	"github.com/collective-funds-ledger/internal/domain/shared"
)

type MockArchiveService struct {
	mock.Mock
}

func (m *MockArchiveService) ArchiveEntry(ctx context.Context, entry *ledger.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

type MockDLQPublisher struct {
	mock.Mock
}

func (m *MockDLQPublisher) PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error {
	args := m.Called(ctx, key, originalMessageValue, reason)
	return args.Error(0)
}

func (m *MockDLQPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func entryEvent(t *testing.T) (*ledger.Entry, []byte) {
	t.Helper()
	entry := &ledger.Entry{
		ID:            uuid.New(),
		Type:          shared.EntryTypeCredit,
		OrderID:       uuid.New(),
		CollectiveID:  uuid.New(),
		Amount:        1000,
		Currency:      "EUR",
		CorrelationID: "corr-3",
	}
	value, err := json.Marshal(entry)
	require.NoError(t, err)
	return entry, value
}

func TestEntryArchiveHandler_ArchivesEntry(t *testing.T) {
	archiveService := &MockArchiveService{}
	handler := NewEntryArchiveHandler(slog.Default(), archiveService, nil)

	entry, value := entryEvent(t)
	archiveService.On("ArchiveEntry", mock.Anything, mock.MatchedBy(func(e *ledger.Entry) bool {
		return e.ID == entry.ID && e.Amount == entry.Amount
	})).Return(nil)

	err := handler.HandleMessage(context.Background(), []byte(entry.CollectiveID.String()), value)

	assert.NoError(t, err)
	archiveService.AssertExpectations(t)
}

func TestEntryArchiveHandler_UnparseableGoesToDLQ(t *testing.T) {
	archiveService := &MockArchiveService{}
	dlq := &MockDLQPublisher{}
	handler := NewEntryArchiveHandler(slog.Default(), archiveService, dlq)

	value := []byte(`not json`)
	dlq.On("PublishToDLQ", mock.Anything, "key-1", value, mock.Anything).Return(nil)

	err := handler.HandleMessage(context.Background(), []byte("key-1"), value)

	// parked on the DLQ, so the offset is committed
	assert.NoError(t, err)
	dlq.AssertExpectations(t)
	archiveService.AssertNotCalled(t, "ArchiveEntry", mock.Anything, mock.Anything)
}

func TestEntryArchiveHandler_UnparseableWithoutDLQRedelivers(t *testing.T) {
	archiveService := &MockArchiveService{}
	handler := NewEntryArchiveHandler(slog.Default(), archiveService, nil)

	err := handler.HandleMessage(context.Background(), []byte("key-1"), []byte(`not json`))

	assert.ErrorContains(t, err, "failed to unmarshal message value")
}

func TestEntryArchiveHandler_DLQFailureRedelivers(t *testing.T) {
	archiveService := &MockArchiveService{}
	dlq := &MockDLQPublisher{}
	handler := NewEntryArchiveHandler(slog.Default(), archiveService, dlq)

	value := []byte(`not json`)
	dlq.On("PublishToDLQ", mock.Anything, "key-1", value, mock.Anything).
		Return(errors.New("broker unreachable"))

	err := handler.HandleMessage(context.Background(), []byte("key-1"), value)

	assert.Error(t, err)
}

func TestEntryArchiveHandler_ArchiveFailureRedelivers(t *testing.T) {
	archiveService := &MockArchiveService{}
	handler := NewEntryArchiveHandler(slog.Default(), archiveService, nil)

	entry, value := entryEvent(t)
	archiveService.On("ArchiveEntry", mock.Anything, mock.Anything).
		Return(errors.New("server selection timeout"))

	err := handler.HandleMessage(context.Background(), []byte(entry.CollectiveID.String()), value)

	assert.ErrorContains(t, err, "archiving ledger entry")
}
