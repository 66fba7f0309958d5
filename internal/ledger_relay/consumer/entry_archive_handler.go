// Package consumer handles ledger-entry events arriving from Kafka and
// feeds them to the archiving service.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/collective-funds-ledger/internal/domain/ledger"
	"github.com/collective-funds-ledger/internal/ledger_relay/service"
	"github.com/collective-funds-ledger/internal/platform/messaging/producers"
)

// EntryArchiveHandler handles incoming ledger-entry events from Kafka
type EntryArchiveHandler struct {
	archiveService service.ArchiveService
	producer       producers.DeadLetterPublisher
	logger         *slog.Logger
}

// NewEntryArchiveHandler creates a new handler
func NewEntryArchiveHandler(
	logger *slog.Logger,
	archiveService service.ArchiveService,
	producer producers.DeadLetterPublisher,
) *EntryArchiveHandler {
	return &EntryArchiveHandler{
		archiveService: archiveService,
		producer:       producer,
		logger:         logger,
	}
}

// HandleMessage processes one event. Unparseable payloads go to the DLQ
// so the partition is not blocked; archive failures are returned
// uncommitted for redelivery.
func (h *EntryArchiveHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var entry ledger.Entry
	if err := json.Unmarshal(value, &entry); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal ledger entry from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka redelivery
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	logger := h.logger
	if entry.CorrelationID != "" {
		logger = h.logger.With("correlation_id", entry.CorrelationID)
	}

	logger.Info("Received ledger entry for archiving",
		"id", entry.ID.String(),
		"order_id", entry.OrderID.String(),
		"collective_id", entry.CollectiveID.String(),
		"type", entry.Type,
		"amount", entry.Amount,
	)

	if err := h.archiveService.ArchiveEntry(ctx, &entry); err != nil {
		logger.Error("Failed to archive ledger entry",
			"id", entry.ID.String(),
			"order_id", entry.OrderID.String(),
			"error", err,
		)
		return fmt.Errorf("archiving ledger entry %s failed: %w", entry.ID.String(), err)
	}

	logger.Info("Successfully archived ledger entry", "id", entry.ID.String())
	return nil
}
