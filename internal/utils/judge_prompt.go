package utils

import (
	"encoding/json"
	"fmt"
)

// JudgeSystemPrompt is sent as the system role where the provider supports one
const JudgeSystemPrompt = "You are an exam grading assistant. Respond only with JSON."

const judgePromptFormat = `You are grading a handwritten exam answer that was transcribed by OCR, so expect spelling noise and LaTeX fragments.
Decide whether the student's answer contains a step that is mathematically or semantically equivalent to the expected step.
Respond with a JSON object containing:
- matched: boolean (true if an equivalent step is present)
- confidence: number between 0 and 1
- explanation: string (one short sentence)

Expected step:
%s

Student answer:
%s

Respond only with the JSON object and nothing else.`

// JudgeResponse is the structured verdict requested from a remote model
type JudgeResponse struct {
	Matched     bool    `json:"matched"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// BuildJudgePrompt formats the equivalence question for one step
func BuildJudgePrompt(expected, submission string) string {
	return fmt.Sprintf(judgePromptFormat, expected, submission)
}

// ParseJudgeResponse decodes a model reply, tolerating prose or code fences around the JSON
func ParseJudgeResponse(text string) (*JudgeResponse, error) {
	var resp JudgeResponse
	if err := json.Unmarshal([]byte(text), &resp); err == nil {
		return &resp, nil
	}
	obj, ok := ExtractJSONObject(text)
	if !ok {
		return nil, fmt.Errorf("failed to extract JSON from model response")
	}
	if err := json.Unmarshal([]byte(obj), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse model response as JSON: %w", err)
	}
	return &resp, nil
}
