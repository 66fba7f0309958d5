package outbox_poller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/collective-funds-ledger/internal/domain/ledger"
	"github.com/collective-funds-ledger/internal/domain/outbox"
	"github.com/collective-funds-ledger/internal/domain/shared"
)

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	return m
}

type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
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

func outboxMessage(t *testing.T, id int64, attempts int) *outbox.Message {
	t.Helper()
	entry := &ledger.Entry{
		ID:            uuid.New(),
		Type:          shared.EntryTypeCredit,
		OrderID:       uuid.New(),
		CollectiveID:  uuid.New(),
		Amount:        1000,
		Currency:      "EUR",
		CorrelationID: "corr-7",
	}
	payload, err := json.Marshal(entry)
	require.NoError(t, err)
	return &outbox.Message{
		ID:           id,
		OrderID:      entry.OrderID,
		CollectiveID: entry.CollectiveID,
		Payload:      payload,
		Status:       shared.OutboxStatusPending,
		Attempts:     attempts,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestEventPublisher_PublishEvent(t *testing.T) {
	outboxRepo := &MockOutboxRepo{}
	producer := &MockMessagePublisher{}
	publisher := NewEventPublisher(outboxRepo, producer, slog.Default())

	msg := outboxMessage(t, 17, 0)

	// keyed by collective so one collective's events stay ordered
	producer.On("Publish", mock.Anything, msg.CollectiveID.String(), mock.MatchedBy(func(v interface{}) bool {
		entry, ok := v.(*ledger.Entry)
		return ok && entry.OrderID == msg.OrderID && entry.CorrelationID == "corr-7"
	})).Return(nil)
	outboxRepo.On("UpdateStatus", mock.Anything, int64(17), shared.OutboxStatusProcessed).Return(nil)

	err := publisher.PublishEvent(context.Background(), msg)

	assert.NoError(t, err)
	producer.AssertExpectations(t)
	outboxRepo.AssertExpectations(t)
}

func TestEventPublisher_MalformedPayloadIsTerminal(t *testing.T) {
	outboxRepo := &MockOutboxRepo{}
	producer := &MockMessagePublisher{}
	publisher := NewEventPublisher(outboxRepo, producer, slog.Default())

	msg := outboxMessage(t, 18, 0)
	msg.Payload = json.RawMessage(`{"id":`)

	outboxRepo.On("UpdateStatus", mock.Anything, int64(18), shared.OutboxStatusFailedToPublish).Return(nil)

	err := publisher.PublishEvent(context.Background(), msg)

	assert.Error(t, err)
	producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	outboxRepo.AssertExpectations(t)
}

func TestEventPublisher_BrokerFailureLeavesMessagePending(t *testing.T) {
	outboxRepo := &MockOutboxRepo{}
	producer := &MockMessagePublisher{}
	publisher := NewEventPublisher(outboxRepo, producer, slog.Default())

	msg := outboxMessage(t, 19, 1)
	producer.On("Publish", mock.Anything, msg.CollectiveID.String(), mock.Anything).
		Return(errors.New("broker unreachable"))

	err := publisher.PublishEvent(context.Background(), msg)

	assert.Error(t, err)
	outboxRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestEventPublisher_MarkProcessedFailureSurfaces(t *testing.T) {
	outboxRepo := &MockOutboxRepo{}
	producer := &MockMessagePublisher{}
	publisher := NewEventPublisher(outboxRepo, producer, slog.Default())

	msg := outboxMessage(t, 20, 0)
	producer.On("Publish", mock.Anything, msg.CollectiveID.String(), mock.Anything).Return(nil)
	outboxRepo.On("UpdateStatus", mock.Anything, int64(20), shared.OutboxStatusProcessed).
		Return(errors.New("connection reset"))

	err := publisher.PublishEvent(context.Background(), msg)

	assert.ErrorContains(t, err, "failed to mark outbox 20 as PROCESSED")
}
