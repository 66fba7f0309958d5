// Package service contains the relay's archiving services: the base
// archiver writing to the reporting store and a worker pool wrapper that
// fans archiving out across goroutines.
package service

import (
	"context"

	"github.com/collective-funds-ledger/internal/domain/ledger"
)

// ArchiveService records realized ledger entries in the reporting
// archive. Implementations must be idempotent: the event stream delivers
// at least once.
type ArchiveService interface {
	ArchiveEntry(ctx context.Context, entry *ledger.Entry) error
}
