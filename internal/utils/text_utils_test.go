package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	if got := tp.TruncateText("curto", 100); got != "curto" {
		t.Errorf("short text changed: %q", got)
	}
	if got := tp.TruncateText("qualquer", 0); got != "qualquer" {
		t.Errorf("zero limit should disable truncation: %q", got)
	}

	got := tp.TruncateText("ação", 2)
	if !utf8.ValidString(got) {
		t.Errorf("truncation produced invalid UTF-8: %q", got)
	}
	if !strings.HasPrefix(got, "a") || !strings.HasSuffix(got, "[... truncated ...]") {
		t.Errorf("unexpected truncation %q", got)
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("ok\xff\xfeação"); got != "okação" {
		t.Errorf("SanitizeString = %q", got)
	}
}

func TestParseJudgeResponse(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    bool
		wantErr bool
	}{
		{name: "plain json", text: `{"matched": true, "confidence": 0.9, "explanation": "same"}`, want: true},
		{name: "fenced", text: "```json\n{\"matched\": false, \"confidence\": 0.7}\n```", want: false},
		{name: "prose around", text: `Sure! {"matched": true} hope it helps`, want: true},
		{name: "no json", text: "I cannot decide", wantErr: true},
		{name: "broken json", text: `{"matched": tru}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJudgeResponse(tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got.Matched != tt.want {
				t.Errorf("Matched = %v, want %v", got.Matched, tt.want)
			}
		})
	}
}

func TestBuildJudgePrompt(t *testing.T) {
	p := BuildJudgePrompt("x=1", "logo x vale 1")
	if !strings.Contains(p, "x=1") || !strings.Contains(p, "logo x vale 1") {
		t.Errorf("prompt missing inputs: %s", p)
	}
}
