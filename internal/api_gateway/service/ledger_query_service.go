package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/collective-funds-ledger/internal/domain/ledger"
)

// LedgerQueryServiceImpl implements the LedgerQueryService interface
// against the reporting archive
type LedgerQueryServiceImpl struct {
	archiveRepo ledger.ArchiveRepository
	logger      *slog.Logger
}

// NewLedgerQueryService creates a new ledger query service
func NewLedgerQueryService(archiveRepo ledger.ArchiveRepository, logger *slog.Logger) LedgerQueryService {
	return &LedgerQueryServiceImpl{
		archiveRepo: archiveRepo,
		logger:      logger,
	}
}

// ListCollectiveEntries returns one page of a collective's archived
// entries, newest first, plus the total count for pagination
func (s *LedgerQueryServiceImpl) ListCollectiveEntries(ctx context.Context, collectiveID uuid.UUID, page, perPage int) ([]*ledger.Entry, int64, error) {
	offset := (page - 1) * perPage

	entries, err := s.archiveRepo.GetByCollectiveID(ctx, collectiveID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.archiveRepo.CountByCollectiveID(ctx, collectiveID)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
