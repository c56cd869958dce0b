package factory

import (
	"context"
	"fmt"

	"github.com/mikey/exam-grader/internal/answerkey"
	"github.com/mikey/exam-grader/internal/config"
	"github.com/mikey/exam-grader/internal/core"
	"github.com/mikey/exam-grader/internal/submission"
	"github.com/mikey/exam-grader/internal/utils"
	"github.com/mikey/exam-grader/internal/whitelist"
	"github.com/viant/afs"
	"go.uber.org/zap"
)

// ServiceFactory creates the grading service and its inputs
type ServiceFactory struct {
	cfg    *config.Config
	fs     afs.Service
	logger *zap.Logger
}

// NewServiceFactory creates a new service factory
func NewServiceFactory(cfg *config.Config, fs afs.Service, logger *zap.Logger) *ServiceFactory {
	return &ServiceFactory{
		cfg:    cfg,
		fs:     fs,
		logger: logger,
	}
}

// LoadAnswerKey reads the key configured under answer_key.path
func (f *ServiceFactory) LoadAnswerKey(ctx context.Context) (*core.AnswerKey, error) {
	path := f.cfg.GetAnswerKey().Path
	if path == "" {
		return nil, fmt.Errorf("%w: answer_key.path is not set", core.ErrMalformedAnswerKey)
	}
	URL, err := utils.NormalizeLocation(path)
	if err != nil {
		return nil, err
	}
	key, err := answerkey.Load(ctx, f.fs, URL)
	if err != nil {
		return nil, err
	}
	f.logger.Info("Loaded answer key",
		zap.String("url", URL),
		zap.Int("questions", len(key.Questions())),
		zap.Float64("total_weight", key.TotalWeight()))
	return key, nil
}

// CreateCollector creates a submission collector honoring the extension allow-list
func (f *ServiceFactory) CreateCollector() *submission.Collector {
	checker := whitelist.NewChecker(f.cfg.GetSubmissions().Extensions, f.logger)
	return submission.NewCollector(f.fs, checker, f.logger)
}

// CreateStrategies builds the matching chain. An available judge is appended
// as the last resort when the configured chain does not name it.
func (f *ServiceFactory) CreateStrategies(judge core.EquivalenceJudge) ([]core.Strategy, error) {
	grading, err := f.cfg.GetGrading()
	if err != nil {
		return nil, err
	}
	kinds, err := core.ParseStrategyKinds(grading.Strategies)
	if err != nil {
		return nil, err
	}
	if judge != nil && !containsKind(kinds, core.StrategyJudge) {
		kinds = append(kinds, core.StrategyJudge)
	}
	f.logger.Debug("Matching strategies", zap.Any("strategies", kinds))
	return core.NewStrategies(kinds, grading.FuzzyThreshold, judge, f.logger)
}

// CreateGradingService assembles the service for key
func (f *ServiceFactory) CreateGradingService(key *core.AnswerKey, cache *core.MatchCache, judge core.EquivalenceJudge) (*core.GradingService, error) {
	grading, err := f.cfg.GetGrading()
	if err != nil {
		return nil, err
	}
	strategies, err := f.CreateStrategies(judge)
	if err != nil {
		return nil, err
	}
	return core.NewGradingService(key, cache, strategies, f.logger, grading.PassMinimum)
}

func containsKind(kinds []core.StrategyKind, kind core.StrategyKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
