package core

import (
	"context"
)

// JudgeResult is a remote judge's decision on one step
type JudgeResult struct {
	Matched     bool
	Confidence  float64
	Explanation string
	ModelUsed   string
}

// EquivalenceJudge defines the interface for remote services deciding step presence
type EquivalenceJudge interface {
	// Judge decides whether the submission text contains a step equivalent to expected
	Judge(ctx context.Context, expected, submission string) (*JudgeResult, error)
}

// VerdictStore defines the interface for durable match decision storage
type VerdictStore interface {
	// Load returns every persisted entry
	Load(ctx context.Context) ([]CacheEntry, error)

	// Save upserts the given entries
	Save(ctx context.Context, entries []CacheEntry) error

	// Clear removes all persisted entries
	Clear(ctx context.Context) error

	// Close releases the store's resources
	Close() error
}
