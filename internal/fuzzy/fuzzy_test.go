package fuzzy

import (
	"math"
	"testing"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "igual", b: "igual", want: 1},
		{name: "empty left", a: "", b: "abc", want: 0},
		{name: "empty both", a: "", b: "", want: 0},
		{name: "disjoint", a: "abc", b: "xyz", want: 0},
		{name: "half", a: "ab", b: "ac", want: 0.5},
		{name: "runes not bytes", a: "ção", b: "cão", want: 2.0 / 3.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ratio(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		name      string
		expected  string
		haystack  string
		threshold float64
		want      bool
	}{
		{name: "close phrase", expected: "resultado igual a 10", haystack: "o resultado e igual a 10", threshold: 0.85, want: true},
		{name: "close phrase strict", expected: "resultado igual a 10", haystack: "o resultado e igual a 10", threshold: 0.99, want: false},
		{name: "exact containment", expected: "Área do Círculo", haystack: "calculando a area do circulo temos", threshold: 0.99, want: true},
		{name: "ocr noise in long text", expected: "velocidade media", haystack: "logo a velocidadc media vale 20 m/s e o tempo 3 s", threshold: 0.85, want: true},
		{name: "single token", expected: "hipotenusa", haystack: "a hipotenuza mede 5", threshold: 0.85, want: true},
		{name: "unrelated", expected: "energia cinetica", haystack: "a massa do corpo e 2 kg", threshold: 0.85, want: false},
		{name: "empty expected", expected: "", haystack: "qualquer coisa", threshold: 0.85, want: false},
		{name: "empty haystack", expected: "algo", haystack: "   ", threshold: 0.85, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Contains(tt.expected, tt.haystack, tt.threshold); got != tt.want {
				t.Errorf("Contains(%q, %q, %v) = %v, want %v", tt.expected, tt.haystack, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestClosestMatch(t *testing.T) {
	tokens := []string{"o", "triangulo", "retangulo", "tem", "hipotenuza"}

	m, ok := ClosestMatch("hipotenusa", tokens, 0.85)
	if !ok {
		t.Fatalf("expected a match")
	}
	if m.Index != 4 || m.Text != "hipotenuza" {
		t.Errorf("unexpected match %+v", m)
	}

	if _, ok := ClosestMatch("cateto", tokens, 0.85); ok {
		t.Errorf("expected no match for cateto")
	}
	if _, ok := ClosestMatch("x", nil, 0.5); ok {
		t.Errorf("expected no match on empty tokens")
	}
	if _, ok := ClosestMatch("", tokens, 0.5); ok {
		t.Errorf("expected no match on empty expected")
	}
}
