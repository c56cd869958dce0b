package factory

import (
	"context"
	"fmt"

	"github.com/mikey/exam-grader/internal/adapters/gemini"
	"github.com/mikey/exam-grader/internal/config"
	"github.com/mikey/exam-grader/internal/core"
	"github.com/mikey/exam-grader/internal/utils"
	"go.uber.org/zap"
)

// GeminiFactory creates Gemini judges
type GeminiFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGeminiFactory creates a new Gemini factory
func NewGeminiFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *GeminiFactory {
	return &GeminiFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateJudge creates a Gemini judge
func (f *GeminiFactory) CreateJudge(ctx context.Context) (core.EquivalenceJudge, error) {
	geminiCfg := f.cfg.GetGemini()

	if geminiCfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	judge, err := gemini.NewGeminiJudge(
		ctx,
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		f.cfg.GetJudge().MaxPromptSize,
		f.logger,
		f.textProcessor,
	)
	if err != nil {
		return nil, err
	}
	return judge, nil
}
