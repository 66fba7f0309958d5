package ledger

import (
	"context"

	"github.com/google/uuid"
)

// ArchiveRepository is the reporting read model of realized entries. It
// is fed asynchronously from the event stream and serves transaction
// listings without touching the authoritative store; writes must be
// idempotent because events can be redelivered.
type ArchiveRepository interface {
	Archive(ctx context.Context, entry *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*Entry, error)
	GetByCollectiveID(ctx context.Context, collectiveID uuid.UUID, limit, offset int) ([]*Entry, error)
	CountByCollectiveID(ctx context.Context, collectiveID uuid.UUID) (int64, error)
}
