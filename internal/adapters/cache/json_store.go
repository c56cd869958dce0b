package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mikey/exam-grader/internal/core"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"go.uber.org/zap"
)

// JSONStore keeps verdicts in a single JSON object keyed by the hashed
// normalized pair. The file may live on any afs-supported storage.
type JSONStore struct {
	fs     afs.Service
	URL    string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewJSONStore creates a store writing to URL
func NewJSONStore(fs afs.Service, URL string, logger *zap.Logger) *JSONStore {
	return &JSONStore{
		fs:     fs,
		URL:    URL,
		logger: logger,
	}
}

func (s *JSONStore) read(ctx context.Context) (map[string]core.CacheEntry, error) {
	entries := make(map[string]core.CacheEntry)
	exists, err := s.fs.Exists(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to check cache file %s: %w", s.URL, err)
	}
	if !exists {
		return entries, nil
	}
	data, err := s.fs.DownloadWithURL(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file %s: %w", s.URL, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode cache file %s: %w", s.URL, err)
	}
	for key, e := range entries {
		e.Key = key
		entries[key] = e
	}
	return entries, nil
}

// Load returns every entry in the file; a missing file is an empty cache
func (s *JSONStore) Load(ctx context.Context) ([]core.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.CacheEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}
	return out, nil
}

// Save merges entries into the file, last write wins per key
func (s *JSONStore) Save(ctx context.Context, entries []core.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		current[e.Key] = e
	}
	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	if err := s.fs.Upload(ctx, s.URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write cache file %s: %w", s.URL, err)
	}
	s.logger.Debug("Saved verdicts to JSON store",
		zap.String("url", s.URL),
		zap.Int("saved", len(entries)),
		zap.Int("total", len(current)))
	return nil
}

// Clear deletes the file
func (s *JSONStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.fs.Exists(ctx, s.URL)
	if err != nil || !exists {
		return err
	}
	if err := s.fs.Delete(ctx, s.URL); err != nil {
		return fmt.Errorf("failed to delete cache file %s: %w", s.URL, err)
	}
	return nil
}

// Close is a no-op; every Save writes through
func (s *JSONStore) Close() error {
	return nil
}
