package types

import (
	"strings"

	"slvcodec/internal/symbolic"
)

// Enumeration is a resolved-only type (there is nothing in an enumeration's
// declaration that can depend on an unresolved constant or generic): a fixed,
// ordered list of literals, encoded as the std_logic_vector representation of
// the literal's index.
type Enumeration struct {
	TypeIdentifier string
	Literals       []string
}

// NewEnumeration builds an Enumeration, lowercasing every literal the way
// VHDL identifiers are case-insensitive.
func NewEnumeration(identifier string, literals []string) *Enumeration {
	lowered := make([]string, len(literals))
	for i, l := range literals {
		lowered[i] = strings.ToLower(l)
	}
	return &Enumeration{TypeIdentifier: identifier, Literals: lowered}
}

func (e *Enumeration) Identifier() string { return e.TypeIdentifier }

// Resolve is a no-op: an Enumeration's literal list never references
// unresolved names.
func (e *Enumeration) Resolve(_ map[string]ResolvedType, _ map[string]*Constant, _ map[string]bool) (ResolvedType, error) {
	return e, nil
}

func (e *Enumeration) TypeDependencies() []string { return nil }

// logceil returns max(1, ceil(log2(n))), the bit width needed to index n
// distinct values (Open Question (b): the Python source leaves this width
// computation implicit behind a shared conversions helper).
func logceil(n int) int64 {
	if n <= 1 {
		return 1
	}
	width := int64(0)
	count := int64(1)
	for count < int64(n) {
		count <<= 1
		width++
	}
	if width == 0 {
		width = 1
	}
	return width
}

func (e *Enumeration) Width() symbolic.Expression {
	return symbolic.Int(logceil(len(e.Literals)))
}

func (e *Enumeration) indexOf(literal string) (int, bool) {
	lowered := strings.ToLower(literal)
	for i, l := range e.Literals {
		if l == lowered {
			return i, true
		}
	}
	return 0, false
}

func (e *Enumeration) ToSLV(data interface{}, generics map[string]int64) (string, error) {
	literal, ok := data.(string)
	if !ok {
		return "", newInvalidValue("%s expects a string literal, got %T", e.Identifier(), data)
	}
	idx, ok := e.indexOf(literal)
	if !ok {
		return "", newInvalidValue("%q is not a literal of %s", literal, e.Identifier())
	}
	width := int64(logceil(len(e.Literals)))
	bits := make([]byte, width)
	value := int64(idx)
	for i := int64(0); i < width; i++ {
		if value&1 == 1 {
			bits[width-1-i] = '1'
		} else {
			bits[width-1-i] = '0'
		}
		value >>= 1
	}
	return string(bits), nil
}

func (e *Enumeration) FromSLV(slv string, generics map[string]int64) (interface{}, error) {
	width := int64(logceil(len(e.Literals)))
	if int64(len(slv)) != width {
		return nil, newInvalidValue("%s expects a %d-bit string, got %d bits", e.Identifier(), width, len(slv))
	}
	var idx int64
	for i := 0; i < len(slv); i++ {
		bit := DecodeBit(slv[i])
		if bit == BitUndefined {
			return nil, nil
		}
		idx = (idx << 1) | int64(bit)
	}
	if idx < 0 || int(idx) >= len(e.Literals) {
		return nil, newInvalidValue("index %d out of range for %s", idx, e.Identifier())
	}
	return e.Literals[idx], nil
}

func (e *Enumeration) ReduceSLV(slv string, generics map[string]int64) (interface{}, string, error) {
	width := int64(logceil(len(e.Literals)))
	if int64(len(slv)) < width {
		return nil, "", newInvalidValue("bit string too short to reduce a %d-bit %s", width, e.Identifier())
	}
	n := int64(len(slv))
	these := slv[n-width:]
	rest := slv[:n-width]
	data, err := e.FromSLV(these, generics)
	return data, rest, err
}

// Declaration renders the VHDL type declaration for this enumeration
// (recovered from the Python source's Enumeration.declaration).
func (e *Enumeration) Declaration() string {
	return "type " + e.TypeIdentifier + " is (" + strings.Join(e.Literals, ", ") + ");"
}
