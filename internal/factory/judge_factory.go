package factory

import (
	"context"
	"fmt"

	"github.com/mikey/exam-grader/internal/config"
	"github.com/mikey/exam-grader/internal/core"
	"github.com/mikey/exam-grader/internal/utils"
	"go.uber.org/zap"
)

// JudgeFactory creates remote equivalence judges
type JudgeFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewJudgeFactory creates a new judge factory
func NewJudgeFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *JudgeFactory {
	return &JudgeFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateJudge creates the configured judge, or nil when the judge is disabled
func (f *JudgeFactory) CreateJudge(ctx context.Context) (core.EquivalenceJudge, error) {
	judgeConfig := f.cfg.GetJudge()
	if !judgeConfig.Enabled {
		return nil, nil
	}

	f.logger.Info("Creating remote judge", zap.String("provider", judgeConfig.Provider))
	switch judgeConfig.Provider {
	case "bedrock":
		return NewBedrockFactory(f.cfg, f.logger, f.textProcessor).CreateJudge(ctx)
	case "gemini":
		return NewGeminiFactory(f.cfg, f.logger, f.textProcessor).CreateJudge(ctx)
	case "openai":
		return NewOpenAIFactory(f.cfg, f.logger, f.textProcessor).CreateJudge(ctx)
	default:
		return nil, fmt.Errorf("unsupported judge provider: %s", judgeConfig.Provider)
	}
}
