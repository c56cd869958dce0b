package mathexpr

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

const (
	// maxTerms bounds polynomial growth from expansion
	maxTerms = 1024
	// maxExponent bounds integer powers expanded by repeated multiplication
	maxExponent = 64
)

var errDivisionByZero = errors.New("division by zero")

// factor is one atom raised to a positive integer power
type factor struct {
	atom string
	exp  int
}

// monomial is a product of factors sorted by atom name; the empty monomial is the constant 1
type monomial []factor

func (m monomial) key() string {
	if len(m) == 0 {
		return ""
	}
	parts := make([]string, len(m))
	for i, f := range m {
		if f.exp == 1 {
			parts[i] = f.atom
		} else {
			parts[i] = f.atom + "^" + strconv.Itoa(f.exp)
		}
	}
	return strings.Join(parts, "*")
}

func (m monomial) mul(o monomial) monomial {
	out := make(monomial, 0, len(m)+len(o))
	i, j := 0, 0
	for i < len(m) && j < len(o) {
		switch {
		case m[i].atom == o[j].atom:
			out = append(out, factor{atom: m[i].atom, exp: m[i].exp + o[j].exp})
			i++
			j++
		case m[i].atom < o[j].atom:
			out = append(out, m[i])
			i++
		default:
			out = append(out, o[j])
			j++
		}
	}
	out = append(out, m[i:]...)
	return append(out, o[j:]...)
}

type term struct {
	mono monomial
	coef *big.Rat
}

// poly is a multivariate polynomial with exact rational coefficients
type poly map[string]term

func constPoly(r *big.Rat) poly {
	p := poly{}
	if r.Sign() != 0 {
		p[""] = term{coef: new(big.Rat).Set(r)}
	}
	return p
}

func atomPoly(atom string) poly {
	m := monomial{{atom: atom, exp: 1}}
	return poly{m.key(): term{mono: m, coef: big.NewRat(1, 1)}}
}

func (p poly) isZero() bool {
	return len(p) == 0
}

// constant returns the value of p when it has no variables
func (p poly) constant() (*big.Rat, bool) {
	switch len(p) {
	case 0:
		return new(big.Rat), true
	case 1:
		if t, ok := p[""]; ok {
			return new(big.Rat).Set(t.coef), true
		}
	}
	return nil, false
}

func (p poly) addTerm(t term) {
	k := t.mono.key()
	if cur, ok := p[k]; ok {
		sum := new(big.Rat).Add(cur.coef, t.coef)
		if sum.Sign() == 0 {
			delete(p, k)
			return
		}
		p[k] = term{mono: cur.mono, coef: sum}
		return
	}
	if t.coef.Sign() != 0 {
		p[k] = term{mono: t.mono, coef: new(big.Rat).Set(t.coef)}
	}
}

func (p poly) add(o poly) poly {
	out := make(poly, len(p)+len(o))
	for _, t := range p {
		out.addTerm(t)
	}
	for _, t := range o {
		out.addTerm(t)
	}
	return out
}

func (p poly) scale(r *big.Rat) poly {
	out := make(poly, len(p))
	if r.Sign() == 0 {
		return out
	}
	for k, t := range p {
		out[k] = term{mono: t.mono, coef: new(big.Rat).Mul(t.coef, r)}
	}
	return out
}

func (p poly) neg() poly {
	return p.scale(big.NewRat(-1, 1))
}

func (p poly) mul(o poly) (poly, error) {
	if len(p)*len(o) > maxTerms*maxTerms {
		return nil, fmt.Errorf("%w: expansion too large", ErrParse)
	}
	out := make(poly)
	for _, a := range p {
		for _, b := range o {
			out.addTerm(term{mono: a.mono.mul(b.mono), coef: new(big.Rat).Mul(a.coef, b.coef)})
		}
	}
	if len(out) > maxTerms {
		return nil, fmt.Errorf("%w: expansion too large", ErrParse)
	}
	return out, nil
}

func (p poly) equal(o poly) bool {
	if len(p) != len(o) {
		return false
	}
	for k, t := range p {
		ot, ok := o[k]
		if !ok || ot.coef.Cmp(t.coef) != 0 {
			return false
		}
	}
	return true
}

func (p poly) sortedKeys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// leading returns the coefficient of the first term in key order
func (p poly) leading() *big.Rat {
	keys := p.sortedKeys()
	if len(keys) == 0 {
		return new(big.Rat)
	}
	return p[keys[0]].coef
}

func (p poly) String() string {
	if len(p) == 0 {
		return "0"
	}
	var b strings.Builder
	for i, k := range p.sortedKeys() {
		t := p[k]
		coef := t.coef.RatString()
		if i > 0 {
			if t.coef.Sign() < 0 {
				b.WriteString(" - ")
				coef = new(big.Rat).Abs(t.coef).RatString()
			} else {
				b.WriteString(" + ")
			}
		}
		switch {
		case k == "":
			b.WriteString(coef)
		case coef == "1":
			b.WriteString(k)
		case coef == "-1":
			b.WriteString("-" + k)
		default:
			b.WriteString(coef + "*" + k)
		}
	}
	return b.String()
}

// rational is a quotient of polynomials; den is never the zero polynomial
type rational struct {
	num poly
	den poly
}

func constRational(r *big.Rat) *rational {
	return &rational{num: constPoly(r), den: constPoly(big.NewRat(1, 1))}
}

func atomRational(atom string) *rational {
	return &rational{num: atomPoly(atom), den: constPoly(big.NewRat(1, 1))}
}

// reduce folds a constant denominator into the numerator and makes the
// denominator's leading coefficient 1 so equal values print alike more often
func (r *rational) reduce() *rational {
	if c, ok := r.den.constant(); ok {
		inv := new(big.Rat).Inv(c)
		return &rational{num: r.num.scale(inv), den: constPoly(big.NewRat(1, 1))}
	}
	lead := r.den.leading()
	if lead.Cmp(big.NewRat(1, 1)) == 0 {
		return r
	}
	inv := new(big.Rat).Inv(lead)
	return &rational{num: r.num.scale(inv), den: r.den.scale(inv)}
}

func (r *rational) constant() (*big.Rat, bool) {
	r = r.reduce()
	return r.num.constant()
}

func (r *rational) isZero() bool {
	return r.num.isZero()
}

func (r *rational) add(o *rational) (*rational, error) {
	if r.den.equal(o.den) {
		return (&rational{num: r.num.add(o.num), den: r.den}).reduce(), nil
	}
	a, err := r.num.mul(o.den)
	if err != nil {
		return nil, err
	}
	b, err := o.num.mul(r.den)
	if err != nil {
		return nil, err
	}
	den, err := r.den.mul(o.den)
	if err != nil {
		return nil, err
	}
	return (&rational{num: a.add(b), den: den}).reduce(), nil
}

func (r *rational) neg() *rational {
	return &rational{num: r.num.neg(), den: r.den}
}

func (r *rational) sub(o *rational) (*rational, error) {
	return r.add(o.neg())
}

func (r *rational) mul(o *rational) (*rational, error) {
	num, err := r.num.mul(o.num)
	if err != nil {
		return nil, err
	}
	den, err := r.den.mul(o.den)
	if err != nil {
		return nil, err
	}
	return (&rational{num: num, den: den}).reduce(), nil
}

func (r *rational) inv() (*rational, error) {
	if r.num.isZero() {
		return nil, fmt.Errorf("%w: %v", ErrParse, errDivisionByZero)
	}
	return (&rational{num: r.den, den: r.num}).reduce(), nil
}

func (r *rational) div(o *rational) (*rational, error) {
	inv, err := o.inv()
	if err != nil {
		return nil, err
	}
	return r.mul(inv)
}

// pow raises r to exponent e. Integer exponents are expanded; anything else
// becomes an opaque atom keyed by the canonical base and exponent.
func (r *rational) pow(e *rational) (*rational, error) {
	k, ok := e.constant()
	if !ok {
		return atomRational("pow(" + r.String() + "," + e.String() + ")"), nil
	}
	if k.IsInt() {
		n := k.Num()
		if !n.IsInt64() || n.Int64() > maxExponent || n.Int64() < -maxExponent {
			return nil, fmt.Errorf("%w: exponent %s too large", ErrParse, k.RatString())
		}
		return r.intPow(int(n.Int64()))
	}
	if root, ok := r.exactSqrt(k); ok {
		return root, nil
	}
	return atomRational("pow(" + r.String() + "," + k.RatString() + ")"), nil
}

func (r *rational) intPow(n int) (*rational, error) {
	if n < 0 {
		inv, err := r.inv()
		if err != nil {
			return nil, err
		}
		return inv.intPow(-n)
	}
	result := constRational(big.NewRat(1, 1))
	base := r
	for n > 0 {
		if n&1 == 1 {
			var err error
			if result, err = result.mul(base); err != nil {
				return nil, err
			}
		}
		n >>= 1
		if n > 0 {
			var err error
			if base, err = base.mul(base); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

// exactSqrt resolves c^(m/2) for perfect-square rational constants c
func (r *rational) exactSqrt(k *big.Rat) (*rational, bool) {
	if k.Denom().Cmp(big.NewInt(2)) != 0 {
		return nil, false
	}
	c, ok := r.constant()
	if !ok || c.Sign() < 0 {
		return nil, false
	}
	num, numOK := perfectSqrt(c.Num())
	den, denOK := perfectSqrt(c.Denom())
	if !numOK || !denOK {
		return nil, false
	}
	root := constRational(new(big.Rat).SetFrac(num, den))
	m := k.Num()
	if !m.IsInt64() || m.Int64() > maxExponent || m.Int64() < -maxExponent {
		return nil, false
	}
	out, err := root.intPow(int(m.Int64()))
	if err != nil {
		return nil, false
	}
	return out, true
}

func perfectSqrt(n *big.Int) (*big.Int, bool) {
	if n.Sign() < 0 {
		return nil, false
	}
	s := new(big.Int).Sqrt(n)
	if new(big.Int).Mul(s, s).Cmp(n) != 0 {
		return nil, false
	}
	return s, true
}

// String renders the canonical form used for opaque atom keys and audit output
func (r *rational) String() string {
	r = r.reduce()
	if c, ok := r.den.constant(); ok && c.Cmp(big.NewRat(1, 1)) == 0 {
		return r.num.String()
	}
	return "(" + r.num.String() + ")/(" + r.den.String() + ")"
}
