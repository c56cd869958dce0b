package utils

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "only punctuation", input: "?!;: ... --", want: ""},
		{name: "only whitespace", input: " \t\n ", want: ""},
		{name: "accents and case", input: "Questão Número UM", want: "questao numero um"},
		{name: "collapse whitespace", input: "  o   resultado\n\té  igual a 10 ", want: "o resultado e igual a 10"},
		{name: "prose punctuation dropped", input: "Resposta: \"x\"; certo?", want: "resposta x certo"},
		{name: "math kept", input: "X + 1 = 2", want: "x + 1 = 2"},
		{name: "latex kept", input: `\(\frac{A}{2}\)`, want: `\(\frac{a}{2}\)`},
		{name: "compatibility forms", input: "ﬁm x²", want: "fim x2"},
		{name: "invalid utf8", input: "ab\xffc", want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"Ação e REAÇÃO",
		"İstanbul ΑΣ. Ωμέγα",
		"㎒ ﬀ ½ x²+y³",
		"  \\( x + 1 = 2 \\)  e  \\(x=1\\)",
		"«citação» — ¿qué? ¡sí!",
		"한국어 텍스트",
		"-- ** //",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestTokensAndCompact(t *testing.T) {
	tokens := Tokens("  O resultado  É 10 ")
	want := []string{"o", "resultado", "e", "10"}
	if len(tokens) != len(want) {
		t.Fatalf("Tokens length = %d, want %d (%v)", len(tokens), len(want), tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("Tokens[%d] = %q, want %q", i, tokens[i], want[i])
		}
	}

	if got := Compact("x + 1 = 2"); got != "x+1=2" {
		t.Errorf("Compact = %q, want %q", got, "x+1=2")
	}
}
