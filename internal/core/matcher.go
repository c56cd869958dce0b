package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/mikey/exam-grader/internal/mathexpr"
	"go.uber.org/zap"
)

// StepMatcher decides step presence through the cache and then the strategy chain
type StepMatcher struct {
	cache      *MatchCache
	strategies []Strategy
	logger     *zap.Logger
}

// NewStepMatcher creates a matcher; cache may be nil to disable memoization
func NewStepMatcher(cache *MatchCache, strategies []Strategy, logger *zap.Logger) *StepMatcher {
	return &StepMatcher{
		cache:      cache,
		strategies: strategies,
		logger:     logger,
	}
}

// Match decides whether step is present in sub. The first strategy that
// accepts wins; strategy errors and panics count as no match. A miss that
// involved a failing strategy is not cached.
func (m *StepMatcher) Match(ctx context.Context, questionID string, stepIndex int, step Step, sub *PreparedSubmission) StepVerdict {
	verdict := StepVerdict{
		QuestionID: questionID,
		StepIndex:  stepIndex,
		Expected:   step.Text,
		Weight:     step.Weight,
	}

	if m.cache != nil {
		if entry, ok := m.cache.Entry(step.Text, sub.Text); ok {
			verdict.Matched = entry.Verdict
			verdict.Strategy = entry.Strategy
			verdict.Form = entry.Form
			verdict.Cached = true
			return verdict
		}
	}

	failed := false
	for _, strategy := range m.strategies {
		result, err := m.apply(ctx, strategy, step, sub)
		if result.Form != "" && verdict.Form == "" {
			verdict.Form = result.Form
		}
		if err != nil {
			m.logAbsorbed(strategy.Kind(), questionID, stepIndex, err)
			if !errors.Is(err, mathexpr.ErrParse) {
				failed = true
			}
			continue
		}
		if result.Matched {
			verdict.Matched = true
			verdict.Strategy = strategy.Kind()
			break
		}
	}

	m.logger.Debug("Step decided",
		zap.String("question_id", questionID),
		zap.Int("step_index", stepIndex),
		zap.Bool("matched", verdict.Matched),
		zap.String("strategy", string(verdict.Strategy)))

	// a negative verdict reached after a strategy failure may not hold next time
	if m.cache != nil && ctx.Err() == nil && (verdict.Matched || !failed) {
		m.cache.Record(step.Text, sub.Text, verdict.Matched, verdict.Strategy, verdict.Form)
	}
	return verdict
}

func (m *StepMatcher) apply(ctx context.Context, strategy Strategy, step Step, sub *PreparedSubmission) (result StrategyResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = StrategyResult{}
			err = fmt.Errorf("strategy %s panicked: %v", strategy.Kind(), r)
		}
	}()
	return strategy.Apply(ctx, step, sub)
}

func (m *StepMatcher) logAbsorbed(kind StrategyKind, questionID string, stepIndex int, err error) {
	fields := []zap.Field{
		zap.String("strategy", string(kind)),
		zap.String("question_id", questionID),
		zap.Int("step_index", stepIndex),
		zap.Error(err),
	}
	if errors.Is(err, mathexpr.ErrParse) {
		m.logger.Debug("Step is not a formula", fields...)
		return
	}
	m.logger.Warn("Strategy failed, treating as no match", fields...)
}
