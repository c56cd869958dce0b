package answerkey

import (
	"bytes"
	"fmt"

	"github.com/mikey/exam-grader/internal/core"
	"github.com/spf13/viper"
)

// ParseStructured reads a key written as YAML, JSON or TOML:
//
//	questions:
//	  - id: Q1
//	    steps:
//	      - text: "x+1=2"
//	        weight: 0.5
func ParseStructured(data []byte, format string) (*core.AnswerKey, error) {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: failed to read %s answer key: %v", core.ErrMalformedAnswerKey, format, err)
	}

	var questions []core.Question
	if err := v.UnmarshalKey("questions", &questions); err != nil {
		return nil, fmt.Errorf("%w: failed to decode questions: %v", core.ErrMalformedAnswerKey, err)
	}

	b := newBuilder()
	for _, q := range questions {
		id := b.question(questionID(q.ID))
		for _, s := range q.Steps {
			b.step(id, s)
		}
	}
	return b.build()
}
