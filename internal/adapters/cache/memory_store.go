package cache

import (
	"context"
	"sync"

	"github.com/mikey/exam-grader/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the VerdictStore interface.
// Decisions live as long as the process.
type MemoryStore struct {
	entries map[string]core.CacheEntry
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewMemoryStore creates a new in-memory verdict store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]core.CacheEntry),
		logger:  logger,
	}
}

// Load returns every stored entry
func (s *MemoryStore) Load(_ context.Context) ([]core.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.CacheEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out, nil
}

// Save upserts entries
func (s *MemoryStore) Save(_ context.Context, entries []core.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		s.entries[e.Key] = e
	}
	s.logger.Debug("Saved verdicts to memory store", zap.Int("count", len(entries)))
	return nil
}

// Clear removes all entries
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]core.CacheEntry)
	return nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
