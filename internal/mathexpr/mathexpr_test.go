package mathexpr

import (
	"errors"
	"reflect"
	"testing"
)

func TestEquivalent(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{name: "commutative sum", a: "x+1", b: "1+x", want: true},
		{name: "different constant", a: "x+1", b: "x+2", want: false},
		{name: "latex fraction", a: `\frac{x}{2}`, b: "0.5x", want: true},
		{name: "distribution", a: "2(x+1)", b: "2x+2", want: true},
		{name: "square expansion", a: "(x+1)^2", b: "x^2+2x+1", want: true},
		{name: "cancelling quotient", a: `\frac{x^2-1}{x-1}`, b: "x+1", want: true},
		{name: "perfect square root", a: `\sqrt{4}`, b: "2", want: true},
		{name: "root as power", a: `\sqrt{x}`, b: "x^{1/2}", want: true},
		{name: "function argument order", a: `\sin(x+1)`, b: "sen(1+x)", want: true},
		{name: "function arguments differ", a: `\sin(x)`, b: `\cos(x)`, want: false},
		{name: "unicode operators", a: "2x·3", b: "6x", want: true},
		{name: "superscript digit", a: "x²", b: "x^2", want: true},
		{name: "decimal comma", a: "3,5", b: "7/2", want: true},
		{name: "compact frac", a: `\frac12`, b: "0.5", want: true},
		{name: "sized delimiters", a: `\left( x \right)^2`, b: "x^2", want: true},
		{name: "implicit product", a: "ab", b: "ba", want: true},
		{name: "pi symbol", a: `\pi r^2`, b: "r^2 π", want: true},
		{name: "negative exponent", a: "x^-1", b: `\frac{1}{x}`, want: true},
		{name: "delimiters and period", a: `\(x+1=2\).`, b: "x+1=2", want: true},
		{name: "mirrored equation", a: "x = 1", b: "1 = x", want: true},
		{name: "equation with different sides", a: "x=1", b: "x+1=2", want: false},
		{name: "mirrored inequality", a: "x<2", b: "2>x", want: true},
		{name: "latex inequality", a: "x ≤ 2", b: `x \leq 2`, want: true},
		{name: "relation against expression", a: "x=1", b: "x", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Equivalent(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Equivalent(%q, %q) returned error: %v", tt.a, tt.b, err)
			}
			if got != tt.want {
				t.Errorf("Equivalent(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestParseFailures(t *testing.T) {
	inputs := []string{
		"",
		"o resultado é igual a 10",
		"resultado igual a 10",
		"1/0",
		"x^{1000}",
		"x = 1 = 2",
		"(x+1",
		`\text{area}`,
		"3!",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			if !errors.Is(err, ErrParse) {
				t.Errorf("Parse(%q) error = %v, want ErrParse", in, err)
			}
		})
	}
}

func TestEqualNil(t *testing.T) {
	e, err := Parse("x")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if Equal(nil, e) || Equal(e, nil) {
		t.Errorf("Equal with nil operand should be false")
	}
}

func TestCanonicalString(t *testing.T) {
	a, err := Parse("1 + x")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	b, err := Parse("x + 1")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if a.String() != b.String() {
		t.Errorf("canonical forms differ: %q vs %q", a.String(), b.String())
	}
	if a.IsRelation() {
		t.Errorf("expected plain expression")
	}
	if a.Source() != "1 + x" {
		t.Errorf("Source() = %q", a.Source())
	}
}

func TestExtractFragments(t *testing.T) {
	tests := []struct {
		name string
		blob string
		want []string
	}{
		{
			name: "inline and dollar",
			blob: `A resposta é \(x+1=2\) e também $y=3$.`,
			want: []string{"x+1=2", "y=3"},
		},
		{
			name: "display math",
			blob: `Temos \[ \frac{a}{b} \] e $$c^2$$`,
			want: []string{`\frac{a}{b}`, "c^2"},
		},
		{
			name: "aligned rows and cells",
			blob: `\[\begin{aligned}x+1&=2\\x&=1\end{aligned}\]`,
			want: []string{"x+1 =2", "x+1", "=2", "x =1", "x", "=1"},
		},
		{
			name: "array column layout skipped",
			blob: `\begin{array}{c}x=1\\y=2\end{array}`,
			want: []string{"x=1", "y=2"},
		},
		{
			name: "duplicates collapse",
			blob: `$x$ e $x$`,
			want: []string{"x"},
		},
		{
			name: "escaped dollar ignored",
			blob: `custa \$5 e $z=1$`,
			want: []string{"z=1"},
		},
		{
			name: "currency sign with spaces",
			blob: `Gastei R$ 5, então \(x+x=2\), sobrou R$ 3.`,
			want: []string{"x+x=2"},
		},
		{
			name: "currency sign before digits",
			blob: `Paguei R$5 e \(y=4\) deu troco de R$3`,
			want: []string{"y=4"},
		},
		{
			name: "dollar span never swallows delimited math",
			blob: `custo $a \(b=1\) c$`,
			want: []string{"b=1"},
		},
		{
			name: "no markup",
			blob: "  sem formulas aqui ",
			want: []string{"sem formulas aqui"},
		},
		{
			name: "empty",
			blob: "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractFragments(tt.blob)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractFragments(%q) = %q, want %q", tt.blob, got, tt.want)
			}
		})
	}
}
