package telemetry

import (
	"context"
	"sync"

	"github.com/hammamikhairi/brewctl/internal/logger"
)

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// maxRetained bounds the in-memory buffers; the oldest half is dropped
// when a buffer fills.
const maxRetained = 10000

// MemoryStore keeps events and samples in bounded in-memory buffers.
// Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	events  []Event
	samples []Sample
	log     *logger.Logger
}

// NewMemoryStore creates an empty in-memory telemetry store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{log: log}
}

// RecordEvent appends a run transition.
func (s *MemoryStore) RecordEvent(ctx context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, e)
	if len(s.events) > maxRetained {
		s.events = append(s.events[:0:0], s.events[len(s.events)/2:]...)
	}
	s.log.Debug("telemetry: event plan=%q step=%d state=%s", e.Plan, e.Step, e.State)
	return nil
}

// RecordSample appends a temperature reading.
func (s *MemoryStore) RecordSample(ctx context.Context, sample Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples = append(s.samples, sample)
	if len(s.samples) > maxRetained {
		s.samples = append(s.samples[:0:0], s.samples[len(s.samples)/2:]...)
	}
	return nil
}

// RecentEvents returns up to limit events, newest first.
func (s *MemoryStore) RecentEvents(ctx context.Context, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.events)
	if limit > n {
		limit = n
	}
	out := make([]Event, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

// RecentSamples returns up to limit samples, newest first.
func (s *MemoryStore) RecentSamples(ctx context.Context, limit int) ([]Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.samples)
	if limit > n {
		limit = n
	}
	out := make([]Sample, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.samples[i])
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
