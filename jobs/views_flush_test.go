package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubViewSource struct {
	counts map[uuid.UUID]int64
	err    error
	drains int
}

func (s *stubViewSource) DrainViews(context.Context) (map[uuid.UUID]int64, error) {
	s.drains++
	if s.err != nil {
		return nil, s.err
	}
	counts := s.counts
	s.counts = nil
	return counts, nil
}

type memoryViewStore struct {
	mu     sync.Mutex
	views  map[uuid.UUID]int64
	failOn uuid.UUID
}

func (s *memoryViewStore) AddViews(_ context.Context, id uuid.UUID, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == s.failOn {
		return errors.New("write failed")
	}
	if s.views == nil {
		s.views = make(map[uuid.UUID]int64)
	}
	s.views[id] += delta
	return nil
}

func TestFlushPersistsAllCounters(t *testing.T) {
	first, second := uuid.New(), uuid.New()
	source := &stubViewSource{counts: map[uuid.UUID]int64{first: 3, second: 7}}
	store := &memoryViewStore{}

	flusher := NewViewFlusher(source, store, nil, slog.Default())
	require.NoError(t, flusher.Flush(context.Background()))

	require.Equal(t, int64(3), store.views[first])
	require.Equal(t, int64(7), store.views[second])
}

func TestFlushNoopWhenNothingBuffered(t *testing.T) {
	source := &stubViewSource{}
	store := &memoryViewStore{}

	flusher := NewViewFlusher(source, store, nil, slog.Default())
	require.NoError(t, flusher.Flush(context.Background()))
	require.Equal(t, 1, source.drains)
	require.Empty(t, store.views)
}

func TestFlushPropagatesSourceError(t *testing.T) {
	sourceErr := errors.New("redis down")
	flusher := NewViewFlusher(&stubViewSource{err: sourceErr}, &memoryViewStore{}, nil, slog.Default())

	require.ErrorIs(t, flusher.Flush(context.Background()), sourceErr)
}

func TestFlushReportsStoreFailure(t *testing.T) {
	failing := uuid.New()
	source := &stubViewSource{counts: map[uuid.UUID]int64{failing: 1, uuid.New(): 2}}
	store := &memoryViewStore{failOn: failing}

	flusher := NewViewFlusher(source, store, nil, slog.Default())
	require.Error(t, flusher.Flush(context.Background()))
}
