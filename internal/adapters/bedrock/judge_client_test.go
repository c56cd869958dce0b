package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/exam-grader/internal/utils"
	"go.uber.org/zap"
)

type stubInvoker struct {
	body    []byte
	err     error
	request map[string]interface{}
}

func (s *stubInvoker) InvokeModel(_ context.Context, params *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	if err := json.Unmarshal(params.Body, &s.request); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: s.body}, nil
}

func newJudge(invoker ModelInvoker, modelID string) *BedrockJudge {
	logger := zap.NewNop()
	return NewBedrockJudge(invoker, modelID, 300, 0, 0.9, 4096, logger, utils.NewTextProcessor(logger))
}

func TestBedrockJudgeModelFormats(t *testing.T) {
	tests := []struct {
		name       string
		modelID    string
		body       string
		promptKey  string
		wantResult bool
	}{
		{name: "claude", modelID: "anthropic.claude-v2", body: `{"completion": " {\"matched\": true, \"confidence\": 0.8}"}`, promptKey: "prompt", wantResult: true},
		{name: "titan", modelID: "amazon.titan-text-express-v1", body: `{"results": [{"outputText": "{\"matched\": false}"}]}`, promptKey: "inputText", wantResult: false},
		{name: "generic", modelID: "meta.llama3", body: `{"output": "{\"matched\": true}"}`, promptKey: "prompt", wantResult: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoker := &stubInvoker{body: []byte(tt.body)}
			result, err := newJudge(invoker, tt.modelID).Judge(context.Background(), "x=1", `\(x=1\)`)
			if err != nil {
				t.Fatalf("Judge failed: %v", err)
			}
			if result.Matched != tt.wantResult {
				t.Errorf("Matched = %v, want %v", result.Matched, tt.wantResult)
			}
			prompt, _ := invoker.request[tt.promptKey].(string)
			if !strings.Contains(prompt, "x=1") {
				t.Errorf("request %v missing prompt under %q", invoker.request, tt.promptKey)
			}
		})
	}
}

func TestBedrockJudgeErrors(t *testing.T) {
	invoker := &stubInvoker{err: errors.New("throttled")}
	if _, err := newJudge(invoker, "anthropic.claude-v2").Judge(context.Background(), "a", "b"); err == nil {
		t.Errorf("expected invoke error")
	}

	invoker = &stubInvoker{body: []byte(`{"results": []}`)}
	if _, err := newJudge(invoker, "amazon.titan-text-express-v1").Judge(context.Background(), "a", "b"); err == nil {
		t.Errorf("expected empty Titan response error")
	}
}
