package core

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// fakeStore is an in-memory VerdictStore that records calls
type fakeStore struct {
	mu      sync.Mutex
	entries map[string]CacheEntry
	loadErr error
	saveErr error
	saves   [][]CacheEntry
	clears  int
	closed  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]CacheEntry)}
}

func (s *fakeStore) Load(_ context.Context) ([]CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make([]CacheEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out, nil
}

func (s *fakeStore) Save(_ context.Context, entries []CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves = append(s.saves, entries)
	for _, e := range entries {
		s.entries[e.Key] = e
	}
	return nil
}

func (s *fakeStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	s.entries = make(map[string]CacheEntry)
	return nil
}

func (s *fakeStore) Close() error {
	s.closed = true
	return nil
}

// countingStrategy wraps a strategy and counts its invocations
type countingStrategy struct {
	Strategy
	calls int
}

func (c *countingStrategy) Apply(ctx context.Context, step Step, sub *PreparedSubmission) (StrategyResult, error) {
	c.calls++
	return c.Strategy.Apply(ctx, step, sub)
}

type panicStrategy struct{}

func (panicStrategy) Kind() StrategyKind { return "panic" }

func (panicStrategy) Apply(context.Context, Step, *PreparedSubmission) (StrategyResult, error) {
	panic("boom")
}

type errorStrategy struct{}

func (errorStrategy) Kind() StrategyKind { return "error" }

func (errorStrategy) Apply(context.Context, Step, *PreparedSubmission) (StrategyResult, error) {
	return StrategyResult{}, errors.New("backend down")
}

func mustKey(t *testing.T, questions ...Question) *AnswerKey {
	t.Helper()
	key, err := NewAnswerKey(questions)
	if err != nil {
		t.Fatalf("NewAnswerKey failed: %v", err)
	}
	return key
}

func equationKey(t *testing.T) *AnswerKey {
	return mustKey(t, Question{ID: "Q1", Steps: []Step{
		{Text: "x+1=2", Weight: 0.5},
		{Text: "x=1", Weight: 0.5},
	}})
}
