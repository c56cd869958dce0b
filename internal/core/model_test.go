package core

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestNewAnswerKeyRejectsMalformed(t *testing.T) {
	tests := []struct {
		name      string
		questions []Question
	}{
		{name: "negative weight", questions: []Question{{ID: "Q1", Steps: []Step{{Text: "a", Weight: -1}}}}},
		{name: "nan weight", questions: []Question{{ID: "Q1", Steps: []Step{{Text: "a", Weight: math.NaN()}}}}},
		{name: "infinite weight", questions: []Question{{ID: "Q1", Steps: []Step{{Text: "a", Weight: math.Inf(1)}}}}},
		{name: "duplicate id", questions: []Question{{ID: "Q1"}, {ID: "Q1"}}},
		{name: "missing id", questions: []Question{{Steps: []Step{{Text: "a", Weight: 1}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAnswerKey(tt.questions); !errors.Is(err, ErrMalformedAnswerKey) {
				t.Errorf("NewAnswerKey error = %v, want ErrMalformedAnswerKey", err)
			}
		})
	}
}

func TestAnswerKeyValidate(t *testing.T) {
	empty := mustKey(t)
	if err := empty.Validate(); !errors.Is(err, ErrMalformedAnswerKey) {
		t.Errorf("empty key Validate = %v", err)
	}
	noSteps := mustKey(t, Question{ID: "Q1"})
	if err := noSteps.Validate(); !errors.Is(err, ErrMalformedAnswerKey) {
		t.Errorf("stepless key Validate = %v", err)
	}
	if err := equationKey(t).Validate(); err != nil {
		t.Errorf("valid key Validate = %v", err)
	}
}

func TestAnswerKeyScoresAndImmutability(t *testing.T) {
	questions := []Question{
		{ID: "Q1", Steps: []Step{{Text: "a", Weight: 1}, {Text: "b", Weight: 2}}},
		{ID: "Q2", Steps: []Step{{Text: "c", Weight: 0.5}}},
	}
	key := mustKey(t, questions...)

	questions[0].Steps[0].Weight = 100
	if got := key.MaxScore("Q1"); got != 3 {
		t.Errorf("MaxScore(Q1) = %v, want 3", got)
	}
	if got := key.TotalWeight(); got != 3.5 {
		t.Errorf("TotalWeight = %v, want 3.5", got)
	}
	if got := key.MaxScore("missing"); got != 0 {
		t.Errorf("MaxScore(missing) = %v, want 0", got)
	}

	copied := key.Questions()
	copied[1].Steps[0].Text = "changed"
	q, ok := key.Question("Q2")
	if !ok || q.Steps[0].Text != "c" {
		t.Errorf("key mutated through Questions(): %+v", q)
	}
}

func TestStudentReportJSON(t *testing.T) {
	report := StudentReport{
		RunID:     "run",
		StudentID: "maria",
		Questions: []QuestionScore{{QuestionID: "Q1", Achieved: 0.5, Maximum: 1}},
		Status:    StatusFail,
	}
	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	perQuestion, ok := decoded["per_question_scores"].(map[string]any)
	if !ok || perQuestion["Q1"] != 0.5 {
		t.Errorf("per_question_scores = %v", decoded["per_question_scores"])
	}
	if decoded["student_id"] != "maria" || decoded["status"] != "fail" {
		t.Errorf("unexpected report json: %s", data)
	}
}
