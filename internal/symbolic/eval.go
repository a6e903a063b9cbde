package symbolic

import (
	"math/big"
	"sort"

	cerrors "slvcodec/internal/errors"
)

// Substitute returns a function that replaces every Name found in env with
// its bound Expression, leaving unbound names untouched. The returned
// function does not re-simplify; callers that need a canonical result call
// Simplify on what it returns.
func Substitute(env map[string]Expression) func(Expression) Expression {
	var sub func(Expression) Expression
	sub = func(e Expression) Expression {
		switch v := e.(type) {
		case Name:
			if val, ok := env[string(v)]; ok {
				return val
			}
			return v
		case Mul:
			num := make([]Expression, len(v.Num))
			for i, n := range v.Num {
				num[i] = sub(n)
			}
			den := make([]Expression, len(v.Den))
			for i, d := range v.Den {
				den[i] = sub(d)
			}
			return NewMul(num, den)
		case Add:
			terms := make([]Term, len(v.Terms))
			for i, t := range v.Terms {
				terms[i] = Term{Sign: t.Sign, Expr: sub(t.Expr)}
			}
			return Add{Terms: terms}
		case Raw:
			items := make([]RawItem, len(v.Items))
			for i, it := range v.Items {
				if it.Op != "" {
					items[i] = it
				} else {
					items[i] = RawItem{Expr: sub(it.Expr)}
				}
			}
			return Raw{Items: items}
		default:
			return e
		}
	}
	return sub
}

// GetConstantList returns the sorted, de-duplicated set of free names
// referenced anywhere in e.
func GetConstantList(e Expression) []string {
	seen := map[string]bool{}
	var out []string
	var walk func(Expression)
	walk = func(ex Expression) {
		switch v := ex.(type) {
		case Name:
			if !seen[string(v)] {
				seen[string(v)] = true
				out = append(out, string(v))
			}
		case Mul:
			for _, n := range v.Num {
				walk(n)
			}
			for _, d := range v.Den {
				walk(d)
			}
		case Add:
			for _, t := range v.Terms {
				walk(t.Expr)
			}
		case Raw:
			for _, it := range v.Items {
				if it.Op == "" {
					walk(it.Expr)
				}
			}
		}
	}
	walk(e)
	sort.Strings(out)
	return out
}

// Value evaluates a fully-resolved (no remaining Name or Raw) expression to
// an integer, failing with NonIntegralValue if the arithmetic does not land
// on a whole number and UnresolvedExpression if a free name remains.
func Value(e Expression) (int64, error) {
	r, err := valueRat(e)
	if err != nil {
		return 0, err
	}
	if !r.IsInt() {
		return 0, cerrors.Newf(cerrors.NonIntegralValue, nil, "expression evaluates to non-integral value %s", r.String())
	}
	return r.Num().Int64(), nil
}

func valueRat(e Expression) (*big.Rat, error) {
	switch v := e.(type) {
	case Int:
		return big.NewRat(int64(v), 1), nil
	case Name:
		return nil, cerrors.Newf(cerrors.UnresolvedExpression, map[string]string{"name": string(v)}, "free name %q is unresolved", string(v))
	case Raw:
		return nil, cerrors.New(cerrors.UnresolvedExpression, "a raw token stream was never fully parsed", nil)
	case Mul:
		acc := big.NewRat(1, 1)
		for _, n := range v.Num {
			nr, err := valueRat(n)
			if err != nil {
				return nil, err
			}
			acc.Mul(acc, nr)
		}
		for _, d := range v.Den {
			dr, err := valueRat(d)
			if err != nil {
				return nil, err
			}
			if dr.Sign() == 0 {
				return nil, cerrors.New(cerrors.NonIntegralValue, "division by zero", nil)
			}
			acc.Quo(acc, dr)
		}
		return acc, nil
	case Add:
		acc := big.NewRat(0, 1)
		for _, t := range v.Terms {
			tr, err := valueRat(t.Expr)
			if err != nil {
				return nil, err
			}
			if t.Sign < 0 {
				acc.Sub(acc, tr)
			} else {
				acc.Add(acc, tr)
			}
		}
		return acc, nil
	default:
		return nil, cerrors.New(cerrors.UnresolvedExpression, "unknown expression node", nil)
	}
}
