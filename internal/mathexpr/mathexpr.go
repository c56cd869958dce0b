// Package mathexpr parses LaTeX and plain-text formulas and decides whether two
// of them are mathematically equivalent.
//
// Expressions are reduced to quotients of multivariate polynomials with exact
// rational coefficients. Functions and non-integer powers are kept as opaque
// atoms keyed by the canonical form of their arguments, so sin(x+1) and
// sin(1+x) compare equal while sin(x)^2+cos(x)^2 and 1 do not.
package mathexpr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrParse is returned for text that is not a supported formula
var ErrParse = errors.New("not a parseable formula")

// Expression is a parsed formula, optionally a relation between two sides
type Expression struct {
	source string
	rel    string
	left   *rational
	right  *rational
}

// Parse reads a formula in LaTeX or plain notation. Surrounding math
// delimiters and trailing sentence punctuation are ignored.
func Parse(text string) (expr *Expression, err error) {
	defer func() {
		if r := recover(); r != nil {
			expr = nil
			err = fmt.Errorf("%w: %v", ErrParse, r)
		}
	}()

	src := stripDelimiters(text)
	if src == "" {
		return nil, fmt.Errorf("%w: empty input", ErrParse)
	}
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	expr, err = p.parseStatement()
	if err != nil {
		return nil, err
	}
	expr.source = src
	return expr, nil
}

var delimiterPairs = [][2]string{
	{`\(`, `\)`},
	{`\[`, `\]`},
	{"$$", "$$"},
	{"$", "$"},
}

func stripDelimiters(text string) string {
	s := strings.TrimSpace(text)
	for {
		trimmed := strings.TrimRight(s, ".;, ")
		for _, pair := range delimiterPairs {
			if len(trimmed) >= len(pair[0])+len(pair[1]) &&
				strings.HasPrefix(trimmed, pair[0]) && strings.HasSuffix(trimmed, pair[1]) {
				trimmed = strings.TrimSpace(trimmed[len(pair[0]) : len(trimmed)-len(pair[1])])
				break
			}
		}
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}

// Source returns the formula text that was parsed
func (e *Expression) Source() string {
	return e.source
}

// IsRelation reports whether the expression is an equation or inequality
func (e *Expression) IsRelation() bool {
	return e.rel != ""
}

// String renders the canonical form
func (e *Expression) String() string {
	if e.rel == "" {
		return e.left.String()
	}
	return e.left.String() + " " + e.rel + " " + e.right.String()
}

// mirrored maps each relation to the one that holds with the sides swapped
var mirrored = map[string]string{
	"=":  "=",
	"!=": "!=",
	"<":  ">",
	">":  "<",
	"<=": ">=",
	">=": "<=",
}

// Equal reports whether a and b are equivalent. Plain expressions are equal
// when their difference simplifies to zero. Relations are equal when the
// sides match pairwise, or crosswise with the relation mirrored, so x=1
// matches 1=x but not x+1=2.
func Equal(a, b *Expression) bool {
	if a == nil || b == nil {
		return false
	}
	if a.rel == "" || b.rel == "" {
		if a.rel != b.rel {
			return false
		}
		return sameValue(a.left, b.left)
	}
	if a.rel == b.rel && sameValue(a.left, b.left) && sameValue(a.right, b.right) {
		return true
	}
	return mirrored[a.rel] == b.rel && sameValue(a.left, b.right) && sameValue(a.right, b.left)
}

func sameValue(a, b *rational) bool {
	diff, err := a.sub(b)
	if err != nil {
		return false
	}
	return diff.isZero()
}

// Equivalent parses both texts and compares them. Either side failing to
// parse yields false together with the parse error.
func Equivalent(a, b string) (bool, error) {
	ea, err := Parse(a)
	if err != nil {
		return false, err
	}
	eb, err := Parse(b)
	if err != nil {
		return false, err
	}
	return Equal(ea, eb), nil
}
