package answerkey

import (
	"github.com/mikey/exam-grader/internal/core"
)

// builder accumulates questions in first-seen order. Repeated ids merge
// their steps, since reference documents often restate a header across pages.
type builder struct {
	order     []string
	questions map[string]*core.Question
}

func newBuilder() *builder {
	return &builder{questions: make(map[string]*core.Question)}
}

func (b *builder) question(id string) string {
	if _, ok := b.questions[id]; !ok {
		b.order = append(b.order, id)
		b.questions[id] = &core.Question{ID: id}
	}
	return id
}

func (b *builder) step(id string, s core.Step) {
	q := b.questions[b.question(id)]
	q.Steps = append(q.Steps, s)
}

// build drops questions without steps and validates the result
func (b *builder) build() (*core.AnswerKey, error) {
	questions := make([]core.Question, 0, len(b.order))
	for _, id := range b.order {
		if q := b.questions[id]; len(q.Steps) > 0 {
			questions = append(questions, *q)
		}
	}
	key, err := core.NewAnswerKey(questions)
	if err != nil {
		return nil, err
	}
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return key, nil
}
