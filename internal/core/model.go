package core

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Step is one expected piece of a correct answer
type Step struct {
	Text   string  `json:"text" mapstructure:"text"`
	Weight float64 `json:"weight" mapstructure:"weight"`
}

// Question groups the expected steps of one exam question
type Question struct {
	ID    string `json:"id" mapstructure:"id"`
	Steps []Step `json:"steps" mapstructure:"steps"`
}

// AnswerKey is the immutable, ordered set of questions a submission is graded against
type AnswerKey struct {
	questions []Question
	index     map[string]int
}

// NewAnswerKey copies questions into a new key. Weights must be finite and
// non-negative and question ids unique.
func NewAnswerKey(questions []Question) (*AnswerKey, error) {
	key := &AnswerKey{
		questions: make([]Question, 0, len(questions)),
		index:     make(map[string]int, len(questions)),
	}
	for _, q := range questions {
		if q.ID == "" {
			return nil, fmt.Errorf("%w: question without id", ErrMalformedAnswerKey)
		}
		if _, dup := key.index[q.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate question %q", ErrMalformedAnswerKey, q.ID)
		}
		steps := make([]Step, len(q.Steps))
		for i, s := range q.Steps {
			if math.IsNaN(s.Weight) || math.IsInf(s.Weight, 0) || s.Weight < 0 {
				return nil, fmt.Errorf("%w: question %q step %d has invalid weight %v",
					ErrMalformedAnswerKey, q.ID, i, s.Weight)
			}
			steps[i] = s
		}
		key.index[q.ID] = len(key.questions)
		key.questions = append(key.questions, Question{ID: q.ID, Steps: steps})
	}
	return key, nil
}

// Validate reports ErrMalformedAnswerKey when the key cannot grade anything
func (k *AnswerKey) Validate() error {
	if k == nil || len(k.questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrMalformedAnswerKey)
	}
	steps := 0
	for _, q := range k.questions {
		steps += len(q.Steps)
	}
	if steps == 0 {
		return fmt.Errorf("%w: no steps", ErrMalformedAnswerKey)
	}
	return nil
}

// Questions returns a copy of the questions in key order
func (k *AnswerKey) Questions() []Question {
	out := make([]Question, len(k.questions))
	for i, q := range k.questions {
		out[i] = Question{ID: q.ID, Steps: append([]Step(nil), q.Steps...)}
	}
	return out
}

// Question looks up a question by id
func (k *AnswerKey) Question(id string) (Question, bool) {
	i, ok := k.index[id]
	if !ok {
		return Question{}, false
	}
	q := k.questions[i]
	return Question{ID: q.ID, Steps: append([]Step(nil), q.Steps...)}, true
}

// MaxScore is the sum of the step weights of one question
func (k *AnswerKey) MaxScore(questionID string) float64 {
	i, ok := k.index[questionID]
	if !ok {
		return 0
	}
	total := 0.0
	for _, s := range k.questions[i].Steps {
		total += s.Weight
	}
	return total
}

// TotalWeight is the sum of all step weights
func (k *AnswerKey) TotalWeight() float64 {
	total := 0.0
	for _, q := range k.questions {
		total += k.MaxScore(q.ID)
	}
	return total
}

// Submission is the recognized text of one student's answer sheet
type Submission struct {
	StudentID string   `json:"student_id"`
	Text      string   `json:"text"`
	Sources   []string `json:"sources,omitempty"`
}

// CacheEntry is a persisted match decision for a normalized (expected, candidate) pair
type CacheEntry struct {
	Key        string       `json:"key"`
	Expected   string       `json:"expected"`
	Verdict    bool         `json:"verdict"`
	Strategy   StrategyKind `json:"strategy"`
	Form       string       `json:"form,omitempty"`
	RecordedAt time.Time    `json:"recorded_at"`
}

// StepVerdict records how one expected step was decided
type StepVerdict struct {
	QuestionID string       `json:"question_id"`
	StepIndex  int          `json:"step_index"`
	Expected   string       `json:"expected"`
	Weight     float64      `json:"weight"`
	Matched    bool         `json:"matched"`
	Strategy   StrategyKind `json:"strategy,omitempty"`
	Cached     bool         `json:"cached"`
	Form       string       `json:"form,omitempty"`
}

// QuestionScore is the achieved and attainable score of one question
type QuestionScore struct {
	QuestionID string  `json:"question_id"`
	Achieved   float64 `json:"achieved"`
	Maximum    float64 `json:"maximum"`
}

// Status is the pass/fail outcome of a graded submission
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
)

// StudentReport is the graded result for one submission
type StudentReport struct {
	RunID      string          `json:"run_id"`
	StudentID  string          `json:"student_id"`
	Questions  []QuestionScore `json:"questions"`
	TotalScore float64         `json:"total_score"`
	MaxScore   float64         `json:"max_score"`
	FinalGrade float64         `json:"final_grade"`
	Status     Status          `json:"status"`
	Steps      []StepVerdict   `json:"steps"`
}

// PerQuestionScores maps question ids to achieved scores
func (r StudentReport) PerQuestionScores() map[string]float64 {
	out := make(map[string]float64, len(r.Questions))
	for _, q := range r.Questions {
		out[q.QuestionID] = q.Achieved
	}
	return out
}

// MarshalJSON adds the per_question_scores map to the report
func (r StudentReport) MarshalJSON() ([]byte, error) {
	type report StudentReport
	return json.Marshal(struct {
		report
		PerQuestion map[string]float64 `json:"per_question_scores"`
	}{report: report(r), PerQuestion: r.PerQuestionScores()})
}
