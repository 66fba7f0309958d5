// Package outbox_poller drains the transactional outbox onto the Kafka
// event stream. Publishing is at-least-once: a message leaves pending
// status only after the broker write succeeded.
package outbox_poller

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/collective-funds-ledger/internal/domain/ledger"
	"github.com/collective-funds-ledger/internal/domain/outbox"
	"github.com/collective-funds-ledger/internal/domain/shared"
	"github.com/collective-funds-ledger/internal/platform/messaging/producers"
)

// EventPublisher publishes outbox messages to the event stream
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// EventPublisherImpl implements EventPublisher
type EventPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewEventPublisher creates a new publisher
func NewEventPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) EventPublisher {
	return &EventPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishEvent pushes one outbox message onto the ledger topic and marks
// it processed. A malformed payload is terminal: it is failed immediately
// instead of retried forever.
func (p *EventPublisherImpl) PublishEvent(ctx context.Context, message *outbox.Message) error {
	var entry ledger.Entry
	if err := json.Unmarshal(message.Payload, &entry); err != nil {
		p.logger.Error("Failed to unmarshal ledger entry from outbox payload",
			"outbox_id", message.ID, "order_id", message.OrderID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if entry.CorrelationID != "" {
		logger = p.logger.With("correlation_id", entry.CorrelationID)
	}

	logger.Info("Publishing outbox message to ledger topic", "outbox_id", message.ID, "order_id", message.OrderID)

	// Key by collective so one collective's events stay ordered
	if err := p.producer.Publish(ctx, message.CollectiveID.String(), &entry); err != nil {
		return fmt.Errorf("failed to publish outbox %d: %w", message.ID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "order_id", message.OrderID, "error", err,
		)
		return fmt.Errorf("publish for order %s OK, but failed to mark outbox %d as PROCESSED: %w", message.OrderID, message.ID, err)
	}

	logger.Info("Outbox message published and marked as PROCESSED", "outbox_id", message.ID, "order_id", message.OrderID)
	return nil
}
