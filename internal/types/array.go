package types

import (
	"slvcodec/internal/symbolic"
)

// UnresolvedUnconstrainedArray is an array type without a defined length,
// whose element subtype may still be a bare name.
type UnresolvedUnconstrainedArray struct {
	TypeIdentifier    string
	SubtypeIdentifier string // used when Subtype is nil
	Subtype           UnresolvedType
}

func (u UnresolvedUnconstrainedArray) Identifier() string { return u.TypeIdentifier }

func (u UnresolvedUnconstrainedArray) TypeDependencies() []string {
	if u.Subtype != nil {
		return u.Subtype.TypeDependencies()
	}
	return []string{u.SubtypeIdentifier}
}

func (u UnresolvedUnconstrainedArray) Resolve(typs map[string]ResolvedType, constants map[string]*Constant, also map[string]bool) (ResolvedType, error) {
	var subtype ResolvedType
	if u.Subtype != nil {
		resolved, err := u.Subtype.Resolve(typs, constants, also)
		if err != nil {
			return nil, err
		}
		subtype = resolved
	} else {
		found, ok := typs[u.SubtypeIdentifier]
		if !ok {
			return nil, newResolutionError(map[string]string{"name": u.SubtypeIdentifier}, "unknown element subtype %q", u.SubtypeIdentifier)
		}
		subtype = found
	}
	return &UnconstrainedArray{TypeIdentifier: u.TypeIdentifier, Subtype: subtype}, nil
}

// UnconstrainedArray is an array type without a defined length, with its
// element subtype resolved. It is never directly encodable (there is no
// length to iterate); ConstrainedArray wraps it with a concrete Size.
type UnconstrainedArray struct {
	TypeIdentifier string
	Subtype        ResolvedType
}

func (a *UnconstrainedArray) Identifier() string { return a.TypeIdentifier }

// UnresolvedConstrainedArray is an array with a defined length, where the
// length expression and/or element subtype may still be unresolved.
type UnresolvedConstrainedArray struct {
	TypeIdentifier              string
	Size                        symbolic.Expression
	UnconstrainedTypeIdentifier string // used when Unconstrained is nil
	Unconstrained               *UnresolvedUnconstrainedArray
}

func (u UnresolvedConstrainedArray) Identifier() string { return u.TypeIdentifier }

func (u UnresolvedConstrainedArray) TypeDependencies() []string {
	if u.Unconstrained != nil {
		return u.Unconstrained.TypeDependencies()
	}
	return []string{u.UnconstrainedTypeIdentifier}
}

func (u UnresolvedConstrainedArray) Resolve(typs map[string]ResolvedType, constants map[string]*Constant, also map[string]bool) (ResolvedType, error) {
	var unconstrained *UnconstrainedArray
	if u.Unconstrained != nil {
		resolved, err := u.Unconstrained.Resolve(typs, constants, also)
		if err != nil {
			return nil, err
		}
		ua, ok := resolved.(*UnconstrainedArray)
		if !ok {
			return nil, newUnsupportedType("expected an unconstrained array, got %T", resolved)
		}
		unconstrained = ua
	} else {
		found, ok := typs[u.UnconstrainedTypeIdentifier]
		if !ok {
			return nil, newResolutionError(map[string]string{"name": u.UnconstrainedTypeIdentifier}, "unknown unconstrained array type %q", u.UnconstrainedTypeIdentifier)
		}
		ua, ok := found.(*UnconstrainedArray)
		if !ok {
			return nil, newUnsupportedType("%q is not an unconstrained array type", u.UnconstrainedTypeIdentifier)
		}
		unconstrained = ua
	}
	size, err := resolveExpression(u.Size, constants, also)
	if err != nil {
		return nil, err
	}
	return &ConstrainedArray{
		TypeIdentifier: u.TypeIdentifier,
		Unconstrained:  unconstrained,
		Size:           size,
		constants:      constants,
	}, nil
}

// ConstrainedArray is an array with a resolved element subtype and a
// (possibly generic-parameterized) length. Elements are encoded/decoded in
// reverse order, matching every other container in this codec.
type ConstrainedArray struct {
	TypeIdentifier string
	Unconstrained  *UnconstrainedArray
	Size           symbolic.Expression
	constants      map[string]*Constant
}

func (c *ConstrainedArray) Identifier() string { return c.TypeIdentifier }

func (c *ConstrainedArray) Width() symbolic.Expression {
	return symbolic.NewMul([]symbolic.Expression{c.Size, c.Unconstrained.Subtype.Width()}, nil)
}

func (c *ConstrainedArray) length(generics map[string]int64) (int64, error) {
	return Evaluate(c.Size, c.constants, generics)
}

func (c *ConstrainedArray) ToSLV(data interface{}, generics map[string]int64) (string, error) {
	elems, ok := data.([]interface{})
	if !ok {
		return "", newInvalidValue("%s expects a slice of elements, got %T", c.Identifier(), data)
	}
	n, err := c.length(generics)
	if err != nil {
		return "", err
	}
	if int64(len(elems)) != n {
		return "", newInvalidValue("%s expects %d elements, got %d", c.Identifier(), n, len(elems))
	}
	var out []byte
	for i := len(elems) - 1; i >= 0; i-- {
		piece, err := c.Unconstrained.Subtype.ToSLV(elems[i], generics)
		if err != nil {
			return "", err
		}
		out = append(out, piece...)
	}
	return string(out), nil
}

func (c *ConstrainedArray) FromSLV(slv string, generics map[string]int64) (interface{}, error) {
	n, err := c.length(generics)
	if err != nil {
		return nil, err
	}
	elemWidth, err := Evaluate(c.Unconstrained.Subtype.Width(), c.constants, generics)
	if err != nil {
		return nil, err
	}
	if int64(len(slv)) != n*elemWidth {
		return nil, newInvalidValue("%s expects %d bits, got %d", c.Identifier(), n*elemWidth, len(slv))
	}
	elems := make([]interface{}, n)
	for i := int64(0); i < n; i++ {
		piece := slv[i*elemWidth : (i+1)*elemWidth]
		elem, err := c.Unconstrained.Subtype.FromSLV(piece, generics)
		if err != nil {
			return nil, err
		}
		elems[n-1-i] = elem
	}
	return elems, nil
}

func (c *ConstrainedArray) ReduceSLV(slv string, generics map[string]int64) (interface{}, string, error) {
	width, err := Evaluate(c.Width(), c.constants, generics)
	if err != nil {
		return nil, "", err
	}
	if int64(len(slv)) < width {
		return nil, "", newInvalidValue("bit string too short to reduce a %d-bit %s", width, c.Identifier())
	}
	n := int64(len(slv))
	these := slv[n-width:]
	rest := slv[:n-width]
	data, err := c.FromSLV(these, generics)
	return data, rest, err
}
