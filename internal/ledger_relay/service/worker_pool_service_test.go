package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collective-funds-ledger/internal/domain/ledger"
)

type recordingArchiveService struct {
	mu      sync.Mutex
	entries []*ledger.Entry
	err     error
}

func (s *recordingArchiveService) ArchiveEntry(ctx context.Context, entry *ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return s.err
}

func TestWorkerPoolArchiveService_ArchivesThroughThePool(t *testing.T) {
	base := &recordingArchiveService{}
	svc, err := NewWorkerPoolArchiveService(base, WorkerPoolConfig{Size: 4}, slog.Default())
	require.NoError(t, err)
	defer svc.Shutdown()

	entry := archivableEntry()
	err = svc.ArchiveEntry(context.Background(), entry)

	require.NoError(t, err)
	require.Len(t, base.entries, 1)
	assert.Equal(t, entry.ID, base.entries[0].ID)
	// the pool works on a copy, the caller's entry is never shared
	assert.NotSame(t, entry, base.entries[0])
}

func TestWorkerPoolArchiveService_PropagatesArchiveError(t *testing.T) {
	archiveErr := errors.New("server selection timeout")
	base := &recordingArchiveService{err: archiveErr}
	svc, err := NewWorkerPoolArchiveService(base, WorkerPoolConfig{Size: 2}, slog.Default())
	require.NoError(t, err)
	defer svc.Shutdown()

	err = svc.ArchiveEntry(context.Background(), archivableEntry())

	assert.ErrorIs(t, err, archiveErr)
}

func TestWorkerPoolArchiveService_ConcurrentSubmissions(t *testing.T) {
	base := &recordingArchiveService{}
	svc, err := NewWorkerPoolArchiveService(base, WorkerPoolConfig{Size: 4}, slog.Default())
	require.NoError(t, err)
	defer svc.Shutdown()

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.ArchiveEntry(context.Background(), archivableEntry()))
		}()
	}
	wg.Wait()

	assert.Len(t, base.entries, n)
}

func TestWorkerPoolArchiveService_ReportsCapacity(t *testing.T) {
	svc, err := NewWorkerPoolArchiveService(&recordingArchiveService{}, WorkerPoolConfig{Size: 8}, slog.Default())
	require.NoError(t, err)
	defer svc.Shutdown()

	assert.Equal(t, 8, svc.Capacity())
	assert.Zero(t, svc.Running())
}
