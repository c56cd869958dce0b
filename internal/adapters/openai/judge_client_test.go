package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/mikey/exam-grader/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type stubCompleter struct {
	reply string
	err   error
	last  openai.ChatCompletionRequest
}

func (s *stubCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.last = req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	if s.reply == "" {
		return openai.ChatCompletionResponse{}, nil
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: s.reply}},
		},
	}, nil
}

func newJudge(c ChatCompleter) *OpenAIJudge {
	logger := zap.NewNop()
	return NewOpenAIJudge(c, "gpt-4o-mini", 300, 0, 1, 4096, logger, utils.NewTextProcessor(logger))
}

func TestOpenAIJudge(t *testing.T) {
	stub := &stubCompleter{reply: "```json\n{\"matched\": true, \"confidence\": 0.95, \"explanation\": \"same root\"}\n```"}
	result, err := newJudge(stub).Judge(context.Background(), "x = 2", "resolvendo temos x igual a dois")
	if err != nil {
		t.Fatalf("Judge failed: %v", err)
	}
	if !result.Matched || result.ModelUsed != "gpt-4o-mini" {
		t.Errorf("unexpected result %+v", result)
	}
	if len(stub.last.Messages) != 2 || stub.last.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Errorf("unexpected messages %+v", stub.last.Messages)
	}
}

func TestOpenAIJudgeErrors(t *testing.T) {
	tests := []struct {
		name string
		stub *stubCompleter
	}{
		{name: "api error", stub: &stubCompleter{err: errors.New("rate limited")}},
		{name: "no choices", stub: &stubCompleter{}},
		{name: "not json", stub: &stubCompleter{reply: "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := newJudge(tt.stub).Judge(context.Background(), "a", "b"); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}
