package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mikey/exam-grader/internal/utils"
	"github.com/minio/highwayhash"
	"go.uber.org/zap"
)

// hashKey is the 32-byte highwayhash key; changing it invalidates persisted caches
var hashKey = []byte("exam-grader match cache key 0001")

// PairKey hashes the normalized (expected, candidate) pair into a cache key
func PairKey(expected, candidate string) (string, error) {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return "", err
	}
	if _, err := h.Write([]byte(utils.Normalize(expected))); err != nil {
		return "", err
	}
	if _, err := h.Write([]byte{0}); err != nil {
		return "", err
	}
	if _, err := h.Write([]byte(utils.Normalize(candidate))); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// MatchCache memoizes match decisions across grading sessions. Entries are
// loaded from the store once per session and only changed entries are
// written back on Flush.
type MatchCache struct {
	mu       sync.Mutex
	store    VerdictStore
	entries  map[string]CacheEntry
	dirty    map[string]bool
	degraded bool
	logger   *zap.Logger
}

// NewMatchCache creates a cache backed by store; a nil store keeps decisions in memory only
func NewMatchCache(store VerdictStore, logger *zap.Logger) *MatchCache {
	return &MatchCache{
		store:   store,
		entries: make(map[string]CacheEntry),
		dirty:   make(map[string]bool),
		logger:  logger,
	}
}

// Load reads persisted decisions. On failure the cache keeps working in
// memory for the rest of the session and the error wraps ErrCacheUnavailable.
func (c *MatchCache) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	entries, err := c.store.Load(ctx)
	if err != nil {
		c.degraded = true
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	for _, e := range entries {
		if _, seen := c.entries[e.Key]; !seen {
			c.entries[e.Key] = e
		}
	}
	c.logger.Debug("Match cache loaded", zap.Int("entries", len(entries)))
	return nil
}

// Lookup returns the cached verdict for the pair, if any
func (c *MatchCache) Lookup(expected, candidate string) (verdict bool, ok bool) {
	e, ok := c.Entry(expected, candidate)
	return e.Verdict, ok
}

// Entry returns the full cached decision for the pair
func (c *MatchCache) Entry(expected, candidate string) (CacheEntry, bool) {
	key, err := PairKey(expected, candidate)
	if err != nil {
		return CacheEntry{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e, ok
}

// Record stores a decision. Recording the verdict already held is a no-op;
// a different verdict replaces the old one.
func (c *MatchCache) Record(expected, candidate string, verdict bool, strategy StrategyKind, form string) {
	key, err := PairKey(expected, candidate)
	if err != nil {
		c.logger.Warn("Failed to hash cache key", zap.Error(err))
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if cur, ok := c.entries[key]; ok && cur.Verdict == verdict {
		return
	}
	c.entries[key] = CacheEntry{
		Key:        key,
		Expected:   utils.Normalize(expected),
		Verdict:    verdict,
		Strategy:   strategy,
		Form:       form,
		RecordedAt: time.Now().UTC(),
	}
	c.dirty[key] = true
}

// Flush writes changed entries to the store
func (c *MatchCache) Flush(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store == nil || c.degraded || len(c.dirty) == 0 {
		return nil
	}
	batch := make([]CacheEntry, 0, len(c.dirty))
	for key := range c.dirty {
		batch = append(batch, c.entries[key])
	}
	if err := c.store.Save(ctx, batch); err != nil {
		return fmt.Errorf("failed to flush match cache: %w", err)
	}
	c.dirty = make(map[string]bool)
	c.logger.Debug("Match cache flushed", zap.Int("entries", len(batch)))
	return nil
}

// Clear drops every decision from memory and from the store
func (c *MatchCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]CacheEntry)
	c.dirty = make(map[string]bool)
	if c.store == nil || c.degraded {
		return nil
	}
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear match cache: %w", err)
	}
	return nil
}

// Len returns the number of decisions held in memory
func (c *MatchCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close releases the store
func (c *MatchCache) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}
