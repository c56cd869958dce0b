package answerkey

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mikey/exam-grader/internal/core"
)

var (
	headerRe = regexp.MustCompile(`(?i)^\s*(?:quest(?:ão|ao|ion)|exerc[ií]cio|exercise|problema|problem|q)\s*\.?\s*(\d+[a-z]?)\s*[:.)\-–]?\s*(.*)$`)
	bulletRe = regexp.MustCompile(`^\s*(?:[-*•·]|\d+[.)]|[a-z]\))\s+(.*)$`)
	numIDRe  = regexp.MustCompile(`(?i)^\d+[a-z]?$`)

	// tried in order against the end of a step line
	weightPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\[\s*(?:peso|weight|valor)\s*[:=]?\s*(\d+(?:[.,]\d+)?)\s*(?:pts?|pontos?|points?)?\s*\]\s*$`),
		regexp.MustCompile(`(?i)\s\(\s*(\d+(?:[.,]\d+)?)\s*(?:pts?|pontos?|points?)?\s*\)\s*$`),
		regexp.MustCompile(`(?i)\|\s*(\d+(?:[.,]\d+)?)\s*(?:pts?|pontos?|points?)?\s*$`),
		regexp.MustCompile(`(?i)\s[-–]\s*(\d+(?:[.,]\d+)?)\s*(?:pts?|pontos?|points?)\s*$`),
	}
)

// ParseText extracts questions and weighted steps from the raw text of a
// reference document. Lines before the first question header are ignored.
// Inside a question a line becomes a step when it ends with a weight
// annotation or starts with a bullet; bullets without a weight count 1.
func ParseText(text string) (*core.AnswerKey, error) {
	b := newBuilder()
	current := ""
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if m := headerRe.FindStringSubmatch(line); m != nil {
			current = b.question(questionID(m[1]))
			if step, ok := parseStep(m[2], false); ok {
				b.step(current, step)
			}
			continue
		}
		if current == "" {
			continue
		}
		if step, ok := parseStep(line, true); ok {
			b.step(current, step)
		}
	}
	return b.build()
}

// parseStep splits a line into step text and weight. A line with no weight
// annotation is a step only when bullets are allowed and it carries one.
func parseStep(line string, allowBullet bool) (core.Step, bool) {
	body := strings.TrimSpace(line)
	bulleted := false
	if m := bulletRe.FindStringSubmatch(body); m != nil && allowBullet {
		body = strings.TrimSpace(m[1])
		bulleted = true
	}
	if body == "" {
		return core.Step{}, false
	}
	for _, re := range weightPatterns {
		loc := re.FindStringSubmatchIndex(body)
		if loc == nil {
			continue
		}
		weight, err := parseWeight(body[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		stepText := strings.TrimRight(strings.TrimSpace(body[:loc[0]]), ":-–")
		stepText = strings.TrimSpace(stepText)
		if stepText == "" {
			return core.Step{}, false
		}
		return core.Step{Text: stepText, Weight: weight}, true
	}
	if bulleted {
		return core.Step{Text: body, Weight: 1}, true
	}
	return core.Step{}, false
}

func parseWeight(raw string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(strings.TrimSpace(raw), ",", ".", 1), 64)
}

// questionID gives bare numbers the Q prefix used by text headers
func questionID(raw string) string {
	raw = strings.TrimSpace(raw)
	if numIDRe.MatchString(raw) {
		return "Q" + strings.ToLower(raw)
	}
	return raw
}
