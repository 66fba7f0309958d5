package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/collective-funds-ledger/internal/domain/ledger"
	"github.com/collective-funds-ledger/internal/domain/shared"
)

// Message stores a realized credit entry for reliable post-commit
// publishing. It is written in the same transaction as the entry pair, so
// the event stream never references a movement that was rolled back.
type Message struct {
	ID            int64               `json:"id"`
	OrderID       uuid.UUID           `json:"order_id"`
	CollectiveID  uuid.UUID           `json:"collective_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

// NewMessage wraps the credit entry of a realized pair for publishing
func NewMessage(entry *ledger.Entry) (*Message, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}

	return &Message{
		OrderID:      entry.OrderID,
		CollectiveID: entry.CollectiveID,
		Payload:      payload,
		Status:       shared.OutboxStatusPending,
		Attempts:     0,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now().UTC()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now().UTC()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now().UTC()
	m.LastAttemptAt = &now
}

// GetLedgerEntry extracts the ledger entry from the payload
func (m *Message) GetLedgerEntry() (*ledger.Entry, error) {
	var entry ledger.Entry
	if err := json.Unmarshal(m.Payload, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
