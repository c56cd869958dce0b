package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/exam-grader/internal/core"
	"github.com/mikey/exam-grader/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiJudge is an implementation of the EquivalenceJudge interface using Google Gemini
type GeminiJudge struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxPromptSize int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGeminiJudge creates a new Gemini judge
func NewGeminiJudge(
	ctx context.Context,
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxPromptSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*GeminiJudge, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(utils.JudgeSystemPrompt)},
	}
	model.ResponseMIMEType = "application/json"

	return &GeminiJudge{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxPromptSize: maxPromptSize,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiJudge) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Judge asks the model whether the submission contains a step equivalent to expected
func (c *GeminiJudge) Judge(ctx context.Context, expected, submission string) (*core.JudgeResult, error) {
	prompt := utils.BuildJudgePrompt(expected, c.textProcessor.ProcessText(submission, c.maxPromptSize))

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	verdict, err := utils.ParseJudgeResponse(responseText)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Gemini verdict",
		zap.String("expected", expected),
		zap.Bool("matched", verdict.Matched),
		zap.Float64("confidence", verdict.Confidence))

	return &core.JudgeResult{
		Matched:     verdict.Matched,
		Confidence:  verdict.Confidence,
		Explanation: verdict.Explanation,
		ModelUsed:   c.modelName,
	}, nil
}
