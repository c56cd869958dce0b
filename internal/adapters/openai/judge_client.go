package openai

import (
	"context"
	"fmt"

	"github.com/mikey/exam-grader/internal/core"
	"github.com/mikey/exam-grader/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ChatCompleter is the subset of the OpenAI client used by the judge
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIJudge is an implementation of the EquivalenceJudge interface using OpenAI
type OpenAIJudge struct {
	client        ChatCompleter
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	maxPromptSize int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewOpenAIJudge creates a new OpenAI judge
func NewOpenAIJudge(
	client ChatCompleter,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxPromptSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *OpenAIJudge {
	return &OpenAIJudge{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxPromptSize: maxPromptSize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// NewClient creates the OpenAI API client for an API key
func NewClient(apiKey string) *openai.Client {
	return openai.NewClient(apiKey)
}

// Judge asks the model whether the submission contains a step equivalent to expected
func (c *OpenAIJudge) Judge(ctx context.Context, expected, submission string) (*core.JudgeResult, error) {
	prompt := utils.BuildJudgePrompt(expected, c.textProcessor.ProcessText(submission, c.maxPromptSize))

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.modelName,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: utils.JudgeSystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   c.maxTokens,
			Temperature: c.temperature,
			TopP:        c.topP,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	verdict, err := utils.ParseJudgeResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return &core.JudgeResult{
		Matched:     verdict.Matched,
		Confidence:  verdict.Confidence,
		Explanation: verdict.Explanation,
		ModelUsed:   c.modelName,
	}, nil
}
