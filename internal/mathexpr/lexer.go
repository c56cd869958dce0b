package mathexpr

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokFunc
	tokFrac
	tokSqrt
	tokOp
	tokRel
	tokOpen
	tokClose
)

type token struct {
	kind tokenKind
	text string
}

// maxProseRun is the longest run of plain letters still read as implicit products
const maxProseRun = 3

var functionNames = map[string]bool{
	"sin": true, "cos": true, "tan": true, "sec": true, "csc": true, "cot": true,
	"sen": true, "tg": true,
	"arcsin": true, "arccos": true, "arctan": true,
	"sinh": true, "cosh": true, "tanh": true,
	"ln": true, "log": true, "exp": true,
}

// plainFunctions are recognised without a backslash, longest first
var plainFunctions = []string{
	"arcsin", "arccos", "arctan", "sinh", "cosh", "tanh", "sqrt",
	"sin", "sen", "cos", "tan", "sec", "csc", "cot", "log", "exp", "tg", "ln",
}

var greekNames = map[string]bool{
	"alpha": true, "beta": true, "gamma": true, "delta": true, "epsilon": true,
	"varepsilon": true, "zeta": true, "eta": true, "theta": true, "vartheta": true,
	"iota": true, "kappa": true, "lambda": true, "mu": true, "nu": true, "xi": true,
	"pi": true, "rho": true, "sigma": true, "tau": true, "upsilon": true, "phi": true,
	"varphi": true, "chi": true, "psi": true, "omega": true,
	"Gamma": true, "Delta": true, "Theta": true, "Lambda": true, "Xi": true,
	"Pi": true, "Sigma": true, "Phi": true, "Psi": true, "Omega": true,
}

var commandTokens = map[string]token{
	"frac": {kind: tokFrac}, "dfrac": {kind: tokFrac}, "tfrac": {kind: tokFrac},
	"sqrt":  {kind: tokSqrt},
	"cdot":  {kind: tokOp, text: "*"},
	"times": {kind: tokOp, text: "*"},
	"ast":   {kind: tokOp, text: "*"},
	"div":   {kind: tokOp, text: "/"},
	"le":    {kind: tokRel, text: "<="}, "leq": {kind: tokRel, text: "<="}, "leqslant": {kind: tokRel, text: "<="},
	"ge": {kind: tokRel, text: ">="}, "geq": {kind: tokRel, text: ">="}, "geqslant": {kind: tokRel, text: ">="},
	"ne": {kind: tokRel, text: "!="}, "neq": {kind: tokRel, text: "!="},
	"lt": {kind: tokRel, text: "<"}, "gt": {kind: tokRel, text: ">"},
}

// ignoredCommands carry no mathematical meaning for equivalence
var ignoredCommands = map[string]bool{
	"left": true, "right": true, "big": true, "Big": true, "bigg": true, "Bigg": true,
	"bigl": true, "bigr": true, "Bigl": true, "Bigr": true,
	"quad": true, "qquad": true, "displaystyle": true, "textstyle": true,
	"mathrm": true, "mathit": true, "mathbf": true, "operatorname": true,
}

type lexer struct {
	src    []rune
	pos    int
	tokens []token
}

func tokenize(input string) ([]token, error) {
	l := &lexer{src: []rune(input)}
	if err := l.run(); err != nil {
		return nil, err
	}
	return append(l.tokens, token{kind: tokEOF}), nil
}

func (l *lexer) emit(kind tokenKind, text string) {
	l.tokens = append(l.tokens, token{kind: kind, text: text})
}

func (l *lexer) peek(offset int) rune {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *lexer) run() error {
	for l.pos < len(l.src) {
		r := l.src[l.pos]
		switch {
		case unicode.IsSpace(r) || r == '&' || r == '~':
			l.pos++
		case isDigit(r) || (r == '.' && isDigit(l.peek(1))):
			l.number()
		case r == '\\':
			if err := l.command(); err != nil {
				return err
			}
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			if err := l.word(); err != nil {
				return err
			}
		case unicode.Is(unicode.Greek, r):
			l.emit(tokIdent, greekAtom(r))
			l.pos++
		default:
			if err := l.symbol(r); err != nil {
				return err
			}
		}
	}
	return nil
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// number reads digits with an optional fractional part. A comma between
// digits is read as a decimal separator.
func (l *lexer) number() {
	start := l.pos
	var b strings.Builder
	seenPoint := false
	for l.pos < len(l.src) {
		r := l.src[l.pos]
		if isDigit(r) {
			b.WriteRune(r)
			l.pos++
			continue
		}
		if (r == '.' || r == ',') && !seenPoint && isDigit(l.peek(1)) && (l.pos > start || r == '.') {
			seenPoint = true
			b.WriteRune('.')
			l.pos++
			continue
		}
		break
	}
	l.emit(tokNumber, b.String())
}

func (l *lexer) word() error {
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] < unicode.MaxASCII && unicode.IsLetter(l.src[l.pos]) {
		l.pos++
	}
	run := string(l.src[start:l.pos])
	for run != "" {
		if name, ok := functionPrefix(run); ok {
			if name == "sqrt" {
				l.emit(tokSqrt, "")
			} else {
				l.emit(tokFunc, canonicalFunction(name))
			}
			run = run[len(name):]
			continue
		}
		if len(run) > maxProseRun {
			return fmt.Errorf("%w: %q reads as prose", ErrParse, run)
		}
		for _, r := range run {
			l.emit(tokIdent, string(r))
		}
		break
	}
	return nil
}

func functionPrefix(run string) (string, bool) {
	for _, name := range plainFunctions {
		if strings.HasPrefix(run, name) {
			return name, true
		}
	}
	return "", false
}

// canonicalFunction maps localized spellings onto one name
func canonicalFunction(name string) string {
	switch name {
	case "sen":
		return "sin"
	case "tg":
		return "tan"
	}
	return name
}

func greekAtom(r rune) string {
	switch r {
	case 'π':
		return "pi"
	case 'θ':
		return "theta"
	case 'α':
		return "alpha"
	case 'β':
		return "beta"
	case 'Δ':
		return "Delta"
	}
	return string(r)
}

func (l *lexer) command() error {
	l.pos++ // backslash
	if l.pos >= len(l.src) {
		return fmt.Errorf("%w: dangling backslash", ErrParse)
	}
	r := l.src[l.pos]
	if !unicode.IsLetter(r) {
		l.pos++
		switch r {
		case ',', ';', ':', '!', ' ':
			return nil
		case '{':
			l.emit(tokOpen, "(")
			return nil
		case '}':
			l.emit(tokClose, ")")
			return nil
		}
		return fmt.Errorf("%w: unsupported command \\%c", ErrParse, r)
	}

	start := l.pos
	for l.pos < len(l.src) && unicode.IsLetter(l.src[l.pos]) {
		l.pos++
	}
	name := string(l.src[start:l.pos])

	switch {
	case ignoredCommands[name]:
		if (name == "left" || name == "right") && l.peek(0) == '.' {
			l.pos++
		}
		return nil
	case greekNames[name]:
		l.emit(tokIdent, name)
		return nil
	case functionNames[name]:
		l.emit(tokFunc, canonicalFunction(name))
		return nil
	}
	if tok, ok := commandTokens[name]; ok {
		l.tokens = append(l.tokens, tok)
		return nil
	}
	return fmt.Errorf("%w: unsupported command \\%s", ErrParse, name)
}

func (l *lexer) symbol(r rune) error {
	l.pos++
	switch r {
	case '+':
		l.emit(tokOp, "+")
	case '-', '−', '–':
		l.emit(tokOp, "-")
	case '*':
		if l.peek(0) == '*' {
			l.pos++
			l.emit(tokOp, "^")
			return nil
		}
		l.emit(tokOp, "*")
	case '×', '·', '⋅', '∗':
		l.emit(tokOp, "*")
	case '/', '÷':
		l.emit(tokOp, "/")
	case '^':
		l.emit(tokOp, "^")
	case '²':
		l.emit(tokOp, "^")
		l.emit(tokNumber, "2")
	case '³':
		l.emit(tokOp, "^")
		l.emit(tokNumber, "3")
	case '√':
		l.emit(tokSqrt, "")
	case '(', '[', '{':
		l.emit(tokOpen, string(r))
	case ')', ']', '}':
		l.emit(tokClose, string(r))
	case '=':
		l.emit(tokRel, "=")
	case '≠':
		l.emit(tokRel, "!=")
	case '≤':
		l.emit(tokRel, "<=")
	case '≥':
		l.emit(tokRel, ">=")
	case '<', '>':
		if l.peek(0) == '=' {
			l.pos++
			l.emit(tokRel, string(r)+"=")
			return nil
		}
		l.emit(tokRel, string(r))
	case '!':
		if l.peek(0) == '=' {
			l.pos++
			l.emit(tokRel, "!=")
			return nil
		}
		return fmt.Errorf("%w: factorial is not supported", ErrParse)
	default:
		return fmt.Errorf("%w: unexpected character %q", ErrParse, r)
	}
	return nil
}
