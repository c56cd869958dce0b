package mathexpr

import (
	"fmt"
	"math/big"
)

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(text string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == text
}

// parseStatement reads an expression with at most one relation
func (p *parser) parseStatement() (*Expression, error) {
	left, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	expr := &Expression{left: left}
	if t := p.peek(); t.kind == tokRel {
		p.next()
		right, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		expr.rel = t.text
		expr.right = right
	}
	switch t := p.peek(); t.kind {
	case tokEOF:
		return expr, nil
	case tokRel:
		return nil, fmt.Errorf("%w: chained relations are not supported", ErrParse)
	default:
		return nil, fmt.Errorf("%w: unexpected %q", ErrParse, t.text)
	}
}

func (p *parser) parseSum() (*rational, error) {
	acc, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := p.next().text
		rhs, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		if op == "+" {
			acc, err = acc.add(rhs)
		} else {
			acc, err = acc.sub(rhs)
		}
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func (p *parser) parseProduct() (*rational, error) {
	acc, err := p.parseSigned()
	if err != nil {
		return nil, err
	}
	for {
		var rhs *rational
		divide := false
		switch {
		case p.isOp("*") || p.isOp("/"):
			divide = p.next().text == "/"
			rhs, err = p.parseSigned()
		case p.startsOperand():
			rhs, err = p.parsePower()
		default:
			return acc, nil
		}
		if err != nil {
			return nil, err
		}
		if divide {
			acc, err = acc.div(rhs)
		} else {
			acc, err = acc.mul(rhs)
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseSigned() (*rational, error) {
	switch {
	case p.isOp("-"):
		p.next()
		v, err := p.parseSigned()
		if err != nil {
			return nil, err
		}
		return v.neg(), nil
	case p.isOp("+"):
		p.next()
		return p.parseSigned()
	}
	return p.parsePower()
}

func (p *parser) startsOperand() bool {
	switch p.peek().kind {
	case tokNumber, tokIdent, tokFunc, tokFrac, tokSqrt, tokOpen:
		return true
	}
	return false
}

// parsePower handles right-associative exponentiation
func (p *parser) parsePower() (*rational, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if !p.isOp("^") {
		return base, nil
	}
	p.next()
	exp, err := p.parseExponent()
	if err != nil {
		return nil, err
	}
	return base.pow(exp)
}

func (p *parser) parseExponent() (*rational, error) {
	if p.isOp("-") {
		p.next()
		v, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		return v.neg(), nil
	}
	return p.parsePower()
}

func (p *parser) parsePrimary() (*rational, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		r, ok := new(big.Rat).SetString(t.text)
		if !ok {
			return nil, fmt.Errorf("%w: bad number %q", ErrParse, t.text)
		}
		return constRational(r), nil
	case tokIdent:
		return atomRational(t.text), nil
	case tokOpen:
		return p.parseGroup(t)
	case tokFrac:
		num, err := p.parseArgument()
		if err != nil {
			return nil, err
		}
		den, err := p.parseArgument()
		if err != nil {
			return nil, err
		}
		return num.div(den)
	case tokSqrt:
		return p.parseRoot()
	case tokFunc:
		return p.parseFunction(t.text)
	case tokEOF:
		return nil, fmt.Errorf("%w: unexpected end of input", ErrParse)
	}
	return nil, fmt.Errorf("%w: unexpected %q", ErrParse, t.text)
}

func closerFor(open string) string {
	switch open {
	case "[":
		return "]"
	case "{":
		return "}"
	}
	return ")"
}

func (p *parser) parseGroup(open token) (*rational, error) {
	inner, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	closeTok := p.next()
	if closeTok.kind != tokClose || closeTok.text != closerFor(open.text) {
		return nil, fmt.Errorf("%w: unbalanced %q", ErrParse, open.text)
	}
	return inner, nil
}

// parseArgument reads a braced group or a single operand, as in \frac12
func (p *parser) parseArgument() (*rational, error) {
	if t := p.peek(); t.kind == tokOpen {
		return p.parseGroup(p.next())
	}
	if t := p.peek(); t.kind == tokNumber && len(t.text) > 1 && isDigitString(t.text) {
		// \frac12 lexes as one number; split off the first digit
		p.tokens[p.pos].text = t.text[1:]
		return constRational(big.NewRat(int64(t.text[0]-'0'), 1)), nil
	}
	return p.parsePrimary()
}

func isDigitString(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(rune(s[i])) {
			return false
		}
	}
	return true
}

func (p *parser) parseRoot() (*rational, error) {
	index := constRational(big.NewRat(2, 1))
	if t := p.peek(); t.kind == tokOpen && t.text == "[" {
		var err error
		if index, err = p.parseGroup(p.next()); err != nil {
			return nil, err
		}
	}
	radicand, err := p.parseArgument()
	if err != nil {
		return nil, err
	}
	exp, err := constRational(big.NewRat(1, 1)).div(index)
	if err != nil {
		return nil, err
	}
	return radicand.pow(exp)
}

// parseFunction builds an opaque atom such as sin(x); \sin^2 x squares the result
func (p *parser) parseFunction(name string) (*rational, error) {
	var power *rational
	if p.isOp("^") {
		p.next()
		var err error
		if power, err = p.parseExponent(); err != nil {
			return nil, err
		}
	}
	var arg *rational
	var err error
	if t := p.peek(); t.kind == tokOpen {
		arg, err = p.parseGroup(p.next())
	} else {
		arg, err = p.parsePower()
	}
	if err != nil {
		return nil, err
	}
	value := atomRational(name + "(" + arg.String() + ")")
	if power != nil {
		return value.pow(power)
	}
	return value, nil
}
