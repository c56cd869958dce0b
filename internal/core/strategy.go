package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/mikey/exam-grader/internal/fuzzy"
	"github.com/mikey/exam-grader/internal/mathexpr"
	"github.com/mikey/exam-grader/internal/utils"
	"go.uber.org/zap"
)

// StrategyKind names a matching strategy in the fallback chain
type StrategyKind string

const (
	StrategySymbolic  StrategyKind = "symbolic"
	StrategyFuzzy     StrategyKind = "fuzzy"
	StrategySubstring StrategyKind = "substring"
	StrategyJudge     StrategyKind = "judge"
)

// DefaultStrategies is the chain used when none is configured
var DefaultStrategies = []StrategyKind{StrategySymbolic, StrategyFuzzy, StrategySubstring}

// ParseStrategyKinds converts configured names into strategy kinds, keeping
// order and dropping repeats. An empty list yields DefaultStrategies.
func ParseStrategyKinds(names []string) ([]StrategyKind, error) {
	var kinds []StrategyKind
	seen := make(map[StrategyKind]bool)
	for _, name := range names {
		kind := StrategyKind(strings.ToLower(strings.TrimSpace(name)))
		switch kind {
		case StrategySymbolic, StrategyFuzzy, StrategySubstring, StrategyJudge:
		case "":
			continue
		default:
			return nil, fmt.Errorf("unknown matching strategy: %s", name)
		}
		if !seen[kind] {
			seen[kind] = true
			kinds = append(kinds, kind)
		}
	}
	if len(kinds) == 0 {
		return append([]StrategyKind(nil), DefaultStrategies...), nil
	}
	return kinds, nil
}

// PreparedSubmission holds per-submission work shared by every step:
// extracted math fragments, their parses and the compacted text.
type PreparedSubmission struct {
	Submission
	Fragments []string
	parsed    []*mathexpr.Expression
	compact   string
}

// PrepareSubmission extracts and parses the submission's fragments once
func PrepareSubmission(sub Submission) *PreparedSubmission {
	p := &PreparedSubmission{
		Submission: sub,
		Fragments:  mathexpr.ExtractFragments(sub.Text),
		compact:    utils.Compact(sub.Text),
	}
	p.parsed = make([]*mathexpr.Expression, len(p.Fragments))
	for i, f := range p.Fragments {
		if expr, err := mathexpr.Parse(f); err == nil {
			p.parsed[i] = expr
		}
	}
	return p
}

// StrategyResult is a strategy's decision for one step
type StrategyResult struct {
	Matched bool
	Form    string
}

// Strategy decides whether an expected step is present in a submission
type Strategy interface {
	Kind() StrategyKind
	Apply(ctx context.Context, step Step, sub *PreparedSubmission) (StrategyResult, error)
}

// SymbolicStrategy compares the step against each parsed math fragment
type SymbolicStrategy struct{}

func (SymbolicStrategy) Kind() StrategyKind { return StrategySymbolic }

func (SymbolicStrategy) Apply(_ context.Context, step Step, sub *PreparedSubmission) (StrategyResult, error) {
	expected, err := mathexpr.Parse(step.Text)
	if err != nil {
		return StrategyResult{}, err
	}
	for _, candidate := range sub.parsed {
		if candidate != nil && mathexpr.Equal(expected, candidate) {
			return StrategyResult{Matched: true, Form: expected.String()}, nil
		}
	}
	return StrategyResult{Form: expected.String()}, nil
}

// FuzzyStrategy accepts approximate textual occurrences of the step
type FuzzyStrategy struct {
	Threshold float64
}

func (FuzzyStrategy) Kind() StrategyKind { return StrategyFuzzy }

func (s FuzzyStrategy) Apply(_ context.Context, step Step, sub *PreparedSubmission) (StrategyResult, error) {
	return StrategyResult{Matched: fuzzy.Contains(step.Text, sub.Text, s.Threshold)}, nil
}

// SubstringStrategy accepts the step when it occurs in the submission ignoring whitespace
type SubstringStrategy struct{}

func (SubstringStrategy) Kind() StrategyKind { return StrategySubstring }

func (SubstringStrategy) Apply(_ context.Context, step Step, sub *PreparedSubmission) (StrategyResult, error) {
	needle := utils.Compact(step.Text)
	return StrategyResult{Matched: needle != "" && strings.Contains(sub.compact, needle)}, nil
}

// JudgeStrategy delegates the decision to a remote equivalence judge
type JudgeStrategy struct {
	Judge  EquivalenceJudge
	Logger *zap.Logger
}

func (JudgeStrategy) Kind() StrategyKind { return StrategyJudge }

func (s JudgeStrategy) Apply(ctx context.Context, step Step, sub *PreparedSubmission) (StrategyResult, error) {
	result, err := s.Judge.Judge(ctx, step.Text, sub.Text)
	if err != nil {
		return StrategyResult{}, fmt.Errorf("remote judge failed: %w", err)
	}
	s.Logger.Debug("Remote judge decided step",
		zap.String("step", step.Text),
		zap.Bool("matched", result.Matched),
		zap.Float64("confidence", result.Confidence),
		zap.String("model", result.ModelUsed))
	return StrategyResult{Matched: result.Matched}, nil
}

// NewStrategies builds the chain for kinds. The judge strategy needs a non-nil judge.
func NewStrategies(kinds []StrategyKind, threshold float64, judge EquivalenceJudge, logger *zap.Logger) ([]Strategy, error) {
	strategies := make([]Strategy, 0, len(kinds))
	for _, kind := range kinds {
		switch kind {
		case StrategySymbolic:
			strategies = append(strategies, SymbolicStrategy{})
		case StrategyFuzzy:
			strategies = append(strategies, FuzzyStrategy{Threshold: threshold})
		case StrategySubstring:
			strategies = append(strategies, SubstringStrategy{})
		case StrategyJudge:
			if judge == nil {
				return nil, fmt.Errorf("strategy %s requires a configured remote judge", kind)
			}
			strategies = append(strategies, JudgeStrategy{Judge: judge, Logger: logger})
		default:
			return nil, fmt.Errorf("unknown matching strategy: %s", kind)
		}
	}
	return strategies, nil
}
