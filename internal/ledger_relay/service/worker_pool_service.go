package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/collective-funds-ledger/internal/domain/ledger"
)

// WorkerPoolArchiveService fans archive writes out over a bounded pool
type WorkerPoolArchiveService struct {
	baseService ArchiveService
	pool        *ants.Pool
	logger      *slog.Logger
	// Guards the in-flight results map
	mu      sync.Mutex
	results map[string]chan error
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolArchiveService(
	baseService ArchiveService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolArchiveService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolArchiveService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
		results:     make(map[string]chan error),
	}, nil
}

// ArchiveEntry submits the entry to the worker pool and waits for the
// outcome, so the caller can decide whether to commit the offset
func (s *WorkerPoolArchiveService) ArchiveEntry(ctx context.Context, entry *ledger.Entry) error {
	logger := s.logger
	if entry.CorrelationID != "" {
		logger = s.logger.With("correlation_id", entry.CorrelationID)
	}

	logger.Debug("Submitting ledger entry to worker pool",
		"id", entry.ID.String(),
		"order_id", entry.OrderID.String(),
	)

	resultChan := make(chan error, 1)

	entryID := entry.ID.String()
	s.mu.Lock()
	s.results[entryID] = resultChan
	s.mu.Unlock()

	// Copy to avoid data races with the caller
	entryCopy := *entry

	err := s.pool.Submit(func() {
		err := s.baseService.ArchiveEntry(ctx, &entryCopy)

		resultChan <- err

		s.mu.Lock()
		delete(s.results, entryID)
		close(resultChan)
		s.mu.Unlock()
	})

	if err != nil {
		s.mu.Lock()
		delete(s.results, entryID)
		close(resultChan)
		s.mu.Unlock()

		logger.Error("Failed to submit ledger entry to worker pool",
			"id", entry.ID.String(),
			"error", err,
		)
		return err
	}

	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolArchiveService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolArchiveService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolArchiveService) Capacity() int {
	return s.pool.Cap()
}
