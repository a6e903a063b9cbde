// Package symbolic implements the small computer-algebra layer that HDL
// constant and size expressions are parsed, simplified, substituted and
// evaluated through: a tagged union of integer literals, free names,
// products-over-quotients and signed sums, plus the transient token-stream
// form those are parsed out of.
package symbolic

import (
	"sort"
	"strconv"
	"strings"
)

// Expression is the sealed tagged union every node in this package
// implements: Int, Name, Mul, Add, and the transient Raw token stream.
type Expression interface {
	isExpression()
	key() string
}

// Int is an integer literal.
type Int int64

func (Int) isExpression() {}
func (n Int) key() string { return "i:" + strconv.FormatInt(int64(n), 10) }

// Name is a free reference to a constant or generic that has not (yet) been
// substituted with a value.
type Name string

func (Name) isExpression() {}
func (n Name) key() string { return "n:" + string(n) }

// Mul is a product of numerator factors divided by a product of denominator
// factors. Both Num and Den are multisets: two Muls built from the same
// factors, in any order, compare structurally equal. NewMul is the only
// supported constructor; it canonicalizes the ordering.
type Mul struct {
	Num []Expression
	Den []Expression
}

// NewMul builds a Mul with its numerator and denominator canonicalized into
// sorted order, so structurally identical products always compare equal
// regardless of the order their factors were discovered in.
func NewMul(num, den []Expression) Mul {
	return Mul{Num: sortedMultiset(num), Den: sortedMultiset(den)}
}

func (Mul) isExpression() {}

func (m Mul) key() string {
	var sb strings.Builder
	sb.WriteString("mul(")
	for _, e := range m.Num {
		sb.WriteString(e.key())
		sb.WriteByte(',')
	}
	sb.WriteByte(';')
	for _, e := range m.Den {
		sb.WriteString(e.key())
		sb.WriteByte(',')
	}
	sb.WriteByte(')')
	return sb.String()
}

// Term is one signed addend of an Add: Sign is always +1 or -1.
type Term struct {
	Sign int
	Expr Expression
}

// Add is a signed sum of terms.
type Add struct {
	Terms []Term
}

func (Add) isExpression() {}

func (a Add) key() string {
	terms := append([]Term(nil), a.Terms...)
	sort.Slice(terms, func(i, j int) bool { return terms[i].Expr.key() < terms[j].Expr.key() })
	var sb strings.Builder
	sb.WriteString("add(")
	for _, t := range terms {
		if t.Sign < 0 {
			sb.WriteByte('-')
		} else {
			sb.WriteByte('+')
		}
		sb.WriteString(t.Expr.key())
		sb.WriteByte(',')
	}
	sb.WriteByte(')')
	return sb.String()
}

// RawItem is one element of a Raw token stream: either an operator/paren
// token, or an already-structured operand (a leaf Expression, or a nested
// Raw group pulled out of a parenthesized span).
type RawItem struct {
	Op   string // "(", ")", "+", "-", "*", "/", or "" when Expr is set
	Expr Expression
}

// Raw is the transient token-stream form produced by Lex and consumed by the
// five-pass parser. It never survives a full Simplify call: every Raw is
// eventually rewritten into a Mul, Add, Int or Name.
type Raw struct {
	Items []RawItem
}

func (Raw) isExpression() {}

func (r Raw) key() string {
	var sb strings.Builder
	sb.WriteString("raw(")
	for _, it := range r.Items {
		if it.Op != "" {
			sb.WriteString(it.Op)
		} else {
			sb.WriteString(it.Expr.key())
		}
		sb.WriteByte(',')
	}
	sb.WriteByte(')')
	return sb.String()
}

func sortedMultiset(items []Expression) []Expression {
	out := append([]Expression(nil), items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].key() < out[j].key() })
	return out
}

func countByKey(xs []Expression) map[string]int {
	m := make(map[string]int, len(xs))
	for _, x := range xs {
		m[x.key()]++
	}
	return m
}

// Render produces the HDL surface syntax for an expression: "a * b / c" for
// products, "a + b - c" for sums, with parentheses around every nested sum
// (one inside a product, or any addend of another sum, the first included)
// and nowhere else.
func Render(e Expression) string {
	switch v := e.(type) {
	case Int:
		return strconv.FormatInt(int64(v), 10)
	case Name:
		return string(v)
	case Mul:
		numStrs := make([]string, len(v.Num))
		for i, f := range v.Num {
			numStrs[i] = renderFactor(f)
		}
		out := strings.Join(numStrs, " * ")
		if len(v.Den) == 0 {
			return out
		}
		denStrs := make([]string, len(v.Den))
		for i, f := range v.Den {
			denStrs[i] = renderFactor(f)
		}
		return out + " / " + strings.Join(denStrs, " / ")
	case Add:
		var sb strings.Builder
		for i, t := range v.Terms {
			s := renderFactor(t.Expr)
			if i == 0 {
				if t.Sign < 0 {
					sb.WriteByte('-')
				}
				sb.WriteString(s)
				continue
			}
			if t.Sign < 0 {
				sb.WriteString(" - ")
			} else {
				sb.WriteString(" + ")
			}
			sb.WriteString(s)
		}
		return sb.String()
	default:
		return "<unparsed>"
	}
}

func renderFactor(e Expression) string {
	if _, ok := e.(Add); ok {
		return "(" + Render(e) + ")"
	}
	return Render(e)
}
