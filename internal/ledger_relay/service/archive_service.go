package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/collective-funds-ledger/internal/domain/ledger"
)

var ErrMissingEntryID = errors.New("ledger entry has no ID")

// ArchiveServiceImpl writes entries to the reporting archive
type ArchiveServiceImpl struct {
	archiveRepo ledger.ArchiveRepository
	logger      *slog.Logger
}

// NewArchiveService creates the base archiving service
func NewArchiveService(archiveRepo ledger.ArchiveRepository, logger *slog.Logger) ArchiveService {
	return &ArchiveServiceImpl{
		archiveRepo: archiveRepo,
		logger:      logger,
	}
}

// ArchiveEntry upserts one realized entry into the archive
func (s *ArchiveServiceImpl) ArchiveEntry(ctx context.Context, entry *ledger.Entry) error {
	if entry.ID == uuid.Nil {
		return ErrMissingEntryID
	}

	logger := s.logger
	if entry.CorrelationID != "" {
		logger = s.logger.With("correlation_id", entry.CorrelationID)
	}

	if err := s.archiveRepo.Archive(ctx, entry); err != nil {
		logger.Error("Failed to archive ledger entry",
			"id", entry.ID.String(),
			"order_id", entry.OrderID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to archive ledger entry %s: %w", entry.ID, err)
	}

	logger.Debug("Archived ledger entry",
		"id", entry.ID.String(),
		"order_id", entry.OrderID.String(),
		"collective_id", entry.CollectiveID.String(),
	)
	return nil
}
