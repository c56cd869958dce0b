package factory

import (
	"context"
	"fmt"

	"github.com/mikey/exam-grader/internal/adapters/openai"
	"github.com/mikey/exam-grader/internal/config"
	"github.com/mikey/exam-grader/internal/core"
	"github.com/mikey/exam-grader/internal/utils"
	"go.uber.org/zap"
)

// OpenAIFactory creates OpenAI judges
type OpenAIFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewOpenAIFactory creates a new OpenAI factory
func NewOpenAIFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *OpenAIFactory {
	return &OpenAIFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateJudge creates an OpenAI judge
func (f *OpenAIFactory) CreateJudge(_ context.Context) (core.EquivalenceJudge, error) {
	openaiCfg := f.cfg.GetOpenAI()

	if openaiCfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	return openai.NewOpenAIJudge(
		openai.NewClient(openaiCfg.APIKey),
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.TopP,
		f.cfg.GetJudge().MaxPromptSize,
		f.logger,
		f.textProcessor,
	), nil
}
