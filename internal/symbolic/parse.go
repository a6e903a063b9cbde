package symbolic

import (
	cerrors "slvcodec/internal/errors"
)

// Simplify runs the full five-pass pipeline over a freshly lexed Raw token
// stream (or any expression still containing nested Raw spans) and returns
// the fully reduced Expression: parenthesize, multiplication grouping,
// multiplication simplification, addition grouping, addition simplification.
// No Raw survives a successful call.
func Simplify(e Expression) (Expression, error) {
	e, err := parseParentheses(e)
	if err != nil {
		return nil, err
	}
	e, err = parseMultiplication(e)
	if err != nil {
		return nil, err
	}
	e, err = simplifyMultiplication(e)
	if err != nil {
		return nil, err
	}
	e, err = parseAddition(e)
	if err != nil {
		return nil, err
	}
	return simplifyAddition(e)
}

// ParseAndSimplify lexes source and runs it through Simplify.
func ParseAndSimplify(source string) (Expression, error) {
	raw, err := Lex(source)
	if err != nil {
		return nil, err
	}
	return Simplify(raw)
}

// transformErr applies f to every operand position of a composite
// expression, used by the later passes to recurse into structure the
// earlier passes have already produced (Mul/Add nodes nested inside a
// still-pending Raw span, or vice versa). Leaves (Int, Name) pass through
// unchanged.
func transformErr(e Expression, f func(Expression) (Expression, error)) (Expression, error) {
	switch v := e.(type) {
	case Raw:
		items := make([]RawItem, len(v.Items))
		for i, it := range v.Items {
			if it.Op != "" {
				items[i] = it
				continue
			}
			ne, err := f(it.Expr)
			if err != nil {
				return nil, err
			}
			items[i] = RawItem{Expr: ne}
		}
		return Raw{Items: items}, nil
	case Mul:
		num := make([]Expression, len(v.Num))
		for i, n := range v.Num {
			nn, err := f(n)
			if err != nil {
				return nil, err
			}
			num[i] = nn
		}
		den := make([]Expression, len(v.Den))
		for i, d := range v.Den {
			nd, err := f(d)
			if err != nil {
				return nil, err
			}
			den[i] = nd
		}
		return NewMul(num, den), nil
	case Add:
		terms := make([]Term, len(v.Terms))
		for i, t := range v.Terms {
			nt, err := f(t.Expr)
			if err != nil {
				return nil, err
			}
			terms[i] = Term{Sign: t.Sign, Expr: nt}
		}
		return Add{Terms: terms}, nil
	default:
		return e, nil
	}
}

// --- pass 1: parenthesize -------------------------------------------------

func parseParentheses(e Expression) (Expression, error) {
	r, ok := e.(Raw)
	if !ok {
		return e, nil
	}
	return rawParseParens(r.Items)
}

func rawParseParens(items []RawItem) (Expression, error) {
	var out []RawItem
	var stack []RawItem
	depth := 0
	for _, it := range items {
		switch {
		case it.Op == "(":
			if depth > 0 {
				stack = append(stack, it)
			}
			depth++
		case it.Op == ")":
			if depth == 0 {
				return nil, cerrors.New(cerrors.ParseError, "unbalanced parentheses: unexpected ')'", nil)
			}
			depth--
			if depth == 0 {
				sub, err := rawParseParens(stack)
				if err != nil {
					return nil, err
				}
				out = append(out, RawItem{Expr: sub})
				stack = nil
			} else {
				stack = append(stack, it)
			}
		case depth > 0:
			stack = append(stack, it)
		default:
			out = append(out, it)
		}
	}
	if depth > 0 {
		return nil, cerrors.New(cerrors.ParseError, "unbalanced parentheses: not all closed", nil)
	}
	return Raw{Items: out}, nil
}

// --- pass 2: multiplication grouping --------------------------------------

func parseMultiplication(e Expression) (Expression, error) {
	r, ok := e.(Raw)
	if !ok {
		return e, nil
	}

	var parsed []RawItem
	var group []RawItem
	flush := func() error {
		piece, err := finishMultiplicationTerm(group)
		if err != nil {
			return err
		}
		parsed = append(parsed, piece...)
		group = nil
		return nil
	}
	for _, it := range r.Items {
		if it.Op == "+" || it.Op == "-" {
			if err := flush(); err != nil {
				return nil, err
			}
			parsed = append(parsed, it)
			continue
		}
		if it.Op != "" {
			group = append(group, it)
			continue
		}
		sub, err := parseMultiplication(it.Expr)
		if err != nil {
			return nil, err
		}
		group = append(group, RawItem{Expr: sub})
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return itemsToExpression(parsed), nil
}

func finishMultiplicationTerm(group []RawItem) ([]RawItem, error) {
	hasMulDiv := false
	for _, it := range group {
		if it.Op == "*" || it.Op == "/" {
			hasMulDiv = true
			break
		}
	}
	if !hasMulDiv {
		return group, nil
	}
	mul, err := mulFromItems(group)
	if err != nil {
		return nil, err
	}
	return []RawItem{{Expr: mul}}, nil
}

func mulFromItems(items []RawItem) (Expression, error) {
	if len(items) < 3 || len(items)%2 != 1 {
		return nil, cerrors.New(cerrors.ParseError, "malformed multiplication expression", nil)
	}
	if items[0].Op != "" {
		return nil, cerrors.New(cerrors.ParseError, "expected an operand at the start of a product", nil)
	}
	num := []Expression{items[0].Expr}
	var den []Expression
	for i := 1; i < len(items); i += 2 {
		op := items[i]
		val := items[i+1]
		if val.Op != "" {
			return nil, cerrors.New(cerrors.ParseError, "expected an operand after an operator", nil)
		}
		switch op.Op {
		case "*":
			num = append(num, val.Expr)
		case "/":
			den = append(den, val.Expr)
		default:
			return nil, cerrors.Newf(cerrors.ParseError, nil, "invalid operator %q in product", op.Op)
		}
	}
	return NewMul(num, den), nil
}

func itemsToExpression(items []RawItem) Expression {
	if len(items) == 1 && items[0].Op == "" {
		return items[0].Expr
	}
	return Raw{Items: items}
}

// --- pass 3: multiplication simplification --------------------------------

func simplifyMultiplication(e Expression) (Expression, error) {
	if m, ok := e.(Mul); ok {
		num := make([]Expression, len(m.Num))
		for i, n := range m.Num {
			sn, err := simplifyMultiplication(n)
			if err != nil {
				return nil, err
			}
			num[i] = sn
		}
		den := make([]Expression, len(m.Den))
		for i, d := range m.Den {
			sd, err := simplifyMultiplication(d)
			if err != nil {
				return nil, err
			}
			den[i] = sd
		}
		return mulSimplifyFlat(num, den), nil
	}
	return transformErr(e, simplifyMultiplication)
}

func mulSimplifyFlat(num, den []Expression) Expression {
	var flatNum, flatDen []Expression
	for _, x := range num {
		if mx, ok := x.(Mul); ok {
			flatNum = append(flatNum, mx.Num...)
			flatDen = append(flatDen, mx.Den...)
		} else {
			flatNum = append(flatNum, x)
		}
	}
	for _, x := range den {
		if mx, ok := x.(Mul); ok {
			flatNum = append(flatNum, mx.Den...)
			flatDen = append(flatDen, mx.Num...)
		} else {
			flatDen = append(flatDen, x)
		}
	}

	numCounts := countByKey(flatNum)
	denCounts := countByKey(flatDen)
	for k, dc := range denCounts {
		if nc, ok := numCounts[k]; ok {
			cancel := dc
			if nc < cancel {
				cancel = nc
			}
			numCounts[k] = nc - cancel
			denCounts[k] = dc - cancel
		}
	}

	numeratorInt := int64(1)
	var finalNum []Expression
	for _, x := range flatNum {
		k := x.key()
		if numCounts[k] <= 0 {
			continue
		}
		numCounts[k]--
		if iv, ok := x.(Int); ok {
			numeratorInt *= int64(iv)
		} else {
			finalNum = append(finalNum, x)
		}
	}
	denominatorInt := int64(1)
	var finalDen []Expression
	for _, x := range flatDen {
		k := x.key()
		if denCounts[k] <= 0 {
			continue
		}
		denCounts[k]--
		if iv, ok := x.(Int); ok {
			denominatorInt *= int64(iv)
		} else {
			finalDen = append(finalDen, x)
		}
	}

	if len(finalNum) == 0 && len(finalDen) == 0 && denominatorInt == 1 {
		return Int(numeratorInt)
	}
	if numeratorInt != 1 {
		finalNum = append(finalNum, Int(numeratorInt))
	}
	if denominatorInt != 1 {
		finalDen = append(finalDen, Int(denominatorInt))
	}
	if len(finalDen) == 0 && len(finalNum) == 1 {
		return finalNum[0]
	}
	return NewMul(finalNum, finalDen)
}

// --- pass 4: addition grouping ---------------------------------------------

func parseAddition(e Expression) (Expression, error) {
	if r, ok := e.(Raw); ok {
		return rawParseAddition(r)
	}
	return transformErr(e, parseAddition)
}

func rawParseAddition(r Raw) (Expression, error) {
	resolved := make([]RawItem, len(r.Items))
	for i, it := range r.Items {
		if it.Op == "+" || it.Op == "-" {
			resolved[i] = it
			continue
		}
		if it.Op != "" {
			return nil, cerrors.New(cerrors.ParseError, "unexpected token in a sum", nil)
		}
		ne, err := parseAddition(it.Expr)
		if err != nil {
			return nil, err
		}
		resolved[i] = RawItem{Expr: ne}
	}

	var terms []Term
	sign := 1
	signIsSet := true
	for _, it := range resolved {
		switch it.Op {
		case "+":
			if !signIsSet {
				sign = 1
				signIsSet = true
			}
		case "-":
			if !signIsSet {
				sign = -1
				signIsSet = true
			} else {
				sign = -1 * sign
			}
		default:
			if !signIsSet {
				return nil, cerrors.New(cerrors.ParseError, "missing operator between two operands", nil)
			}
			terms = append(terms, Term{Sign: sign, Expr: it.Expr})
			signIsSet = false
		}
	}
	if signIsSet {
		return nil, cerrors.New(cerrors.ParseError, "expression ends with a dangling operator", nil)
	}
	return Add{Terms: terms}, nil
}

// --- pass 5: addition simplification ----------------------------------------

func simplifyAddition(e Expression) (Expression, error) {
	if a, ok := e.(Add); ok {
		terms := make([]Term, len(a.Terms))
		for i, t := range a.Terms {
			st, err := simplifyAddition(t.Expr)
			if err != nil {
				return nil, err
			}
			terms[i] = Term{Sign: t.Sign, Expr: st}
		}
		return addSimplifyFlat(terms), nil
	}
	return transformErr(e, simplifyAddition)
}

type addendPiece struct {
	coef int
	expr Expression
}

func addSimplifyFlat(terms []Term) Expression {
	intPart := int64(0)
	var order []string
	coeff := map[string]int{}
	exprs := map[string]Expression{}
	for _, t := range terms {
		if iv, ok := t.Expr.(Int); ok {
			intPart += int64(t.Sign) * int64(iv)
			continue
		}
		k := t.Expr.key()
		if _, seen := exprs[k]; !seen {
			order = append(order, k)
			exprs[k] = t.Expr
		}
		coeff[k] += t.Sign
	}

	var pieces []addendPiece
	for _, k := range order {
		if c := coeff[k]; c != 0 {
			pieces = append(pieces, addendPiece{coef: c, expr: exprs[k]})
		}
	}
	var constPiece *addendPiece
	if intPart != 0 || len(pieces) == 0 {
		constPiece = &addendPiece{coef: 1, expr: Int(intPart)}
	}

	total := len(pieces)
	if constPiece != nil {
		total++
	}
	if total == 1 {
		p := pieces
		var only addendPiece
		if constPiece != nil {
			only = *constPiece
		} else {
			only = p[0]
		}
		if only.coef == 1 {
			return only.expr
		}
		return NewMul([]Expression{Int(int64(only.coef)), only.expr}, nil)
	}

	var newTerms []Term
	appendPiece := func(p addendPiece) {
		switch p.coef {
		case 1:
			newTerms = append(newTerms, Term{Sign: 1, Expr: p.expr})
		case -1:
			newTerms = append(newTerms, Term{Sign: -1, Expr: p.expr})
		default:
			abs, sign := p.coef, 1
			if abs < 0 {
				abs, sign = -abs, -1
			}
			newTerms = append(newTerms, Term{Sign: sign, Expr: NewMul([]Expression{Int(int64(abs)), p.expr}, nil)})
		}
	}
	for _, p := range pieces {
		appendPiece(p)
	}
	if constPiece != nil {
		appendPiece(*constPiece)
	}
	return Add{Terms: newTerms}
}
