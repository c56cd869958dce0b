package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GradingService is the core service for grading submissions against an answer key
type GradingService struct {
	mu          sync.Mutex
	key         *AnswerKey
	cache       *MatchCache
	matcher     *StepMatcher
	logger      *zap.Logger
	passMinimum float64
	scale       float64
	runID       string
	closed      bool
}

// BatchResult is the outcome of grading one submission in a batch
type BatchResult struct {
	StudentID string         `json:"student_id"`
	Report    *StudentReport `json:"report,omitempty"`
	Err       error          `json:"-"`
}

// NewGradingService creates a new grading service. The key must validate.
func NewGradingService(
	key *AnswerKey,
	cache *MatchCache,
	strategies []Strategy,
	logger *zap.Logger,
	passMinimum float64,
) (*GradingService, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return &GradingService{
		key:         key,
		cache:       cache,
		matcher:     NewStepMatcher(cache, strategies, logger),
		logger:      logger,
		passMinimum: passMinimum,
		scale:       DefaultScale,
		runID:       uuid.New().String(),
	}, nil
}

// Open loads the match cache. An unreadable store is logged and the session
// continues with an in-memory cache.
func (s *GradingService) Open(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Load(ctx); err != nil {
		if errors.Is(err, ErrCacheUnavailable) {
			s.logger.Warn("Match cache unavailable, continuing in memory", zap.Error(err))
			return nil
		}
		return err
	}
	s.logger.Info("Grading session opened",
		zap.String("run_id", s.runID),
		zap.Int("cached_decisions", s.cache.Len()))
	return nil
}

// Close flushes new decisions to the store and releases it
func (s *GradingService) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.cache == nil {
		return nil
	}

	var errs []error
	if err := s.cache.Flush(ctx); err != nil {
		s.logger.Warn("Failed to persist match cache", zap.Error(err))
		errs = append(errs, err)
	}
	if err := s.cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close match cache: %w", err))
	}
	return errors.Join(errs...)
}

// AnswerKey returns the key submissions are graded against
func (s *GradingService) AnswerKey() *AnswerKey {
	return s.key
}

// RunID identifies this grading session in reports and logs
func (s *GradingService) RunID() string {
	return s.runID
}

// ClearCache drops all memoized decisions, in memory and in the store
func (s *GradingService) ClearCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	s.logger.Info("Clearing match cache", zap.Int("entries", s.cache.Len()))
	return s.cache.Clear(ctx)
}

// Grade evaluates every step of the key against one submission
func (s *GradingService) Grade(ctx context.Context, sub Submission) (*StudentReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grade(ctx, sub)
}

func (s *GradingService) grade(ctx context.Context, sub Submission) (report *StudentReport, err error) {
	if s.closed {
		return nil, ErrServiceClosed
	}
	defer func() {
		if r := recover(); r != nil {
			report = nil
			err = fmt.Errorf("grading student %s panicked: %v", sub.StudentID, r)
		}
	}()

	prepared := PrepareSubmission(sub)
	var verdicts []StepVerdict
	for _, q := range s.key.Questions() {
		for i, step := range q.Steps {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			verdicts = append(verdicts, s.matcher.Match(ctx, q.ID, i, step, prepared))
		}
	}

	r := Aggregate(s.key, verdicts, s.passMinimum, s.scale)
	r.RunID = s.runID
	r.StudentID = sub.StudentID

	s.logger.Info("Submission graded",
		zap.String("run_id", s.runID),
		zap.String("student_id", sub.StudentID),
		zap.Int("fragments", len(prepared.Fragments)),
		zap.Float64("final_grade", r.FinalGrade),
		zap.String("status", string(r.Status)))
	return &r, nil
}

// GradeBatch grades submissions sequentially in the given order. A failing
// submission is reported in its result and does not stop the batch.
func (s *GradingService) GradeBatch(ctx context.Context, subs []Submission) []BatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]BatchResult, 0, len(subs))
	passed, failed, errored := 0, 0, 0
	for _, sub := range subs {
		report, err := s.grade(ctx, sub)
		results = append(results, BatchResult{StudentID: sub.StudentID, Report: report, Err: err})
		switch {
		case err != nil:
			errored++
			s.logger.Error("Failed to grade submission",
				zap.String("student_id", sub.StudentID),
				zap.Error(err))
		case report.Status == StatusPass:
			passed++
		default:
			failed++
		}
	}

	s.logger.Info("Batch graded",
		zap.String("run_id", s.runID),
		zap.Int("submissions", len(subs)),
		zap.Int("passed", passed),
		zap.Int("failed", failed),
		zap.Int("errors", errored))
	return results
}
