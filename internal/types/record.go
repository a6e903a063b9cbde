package types

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"slvcodec/internal/symbolic"
)

// UnresolvedRecord is a record type as parsed: a declared, insertion-ordered
// sequence of (field name, field subtype) pairs, where each subtype may
// either be a bare name (to be looked up in the package's resolved types) or
// a nested unresolved type (an inline array/record).
type UnresolvedRecord struct {
	TypeIdentifier string
	Fields         *orderedmap.OrderedMap[string, FieldType]
}

// FieldType is one record field's subtype reference: either a name to be
// looked up among already-resolved types, or an inline unresolved type.
type FieldType struct {
	Identifier string // used when Inline is nil
	Inline     UnresolvedType
}

func (u UnresolvedRecord) Identifier() string { return u.TypeIdentifier }

func (u UnresolvedRecord) TypeDependencies() []string {
	var deps []string
	for pair := u.Fields.Oldest(); pair != nil; pair = pair.Next() {
		f := pair.Value
		if f.Inline != nil {
			deps = append(deps, f.Inline.TypeDependencies()...)
		} else {
			deps = append(deps, f.Identifier)
		}
	}
	return deps
}

func (u UnresolvedRecord) Resolve(typs map[string]ResolvedType, constants map[string]*Constant, also map[string]bool) (ResolvedType, error) {
	resolvedFields := orderedmap.New[string, ResolvedType]()
	for pair := u.Fields.Oldest(); pair != nil; pair = pair.Next() {
		name, f := pair.Key, pair.Value
		if f.Inline != nil {
			resolved, err := f.Inline.Resolve(typs, constants, also)
			if err != nil {
				return nil, err
			}
			resolvedFields.Set(name, resolved)
			continue
		}
		found, ok := typs[f.Identifier]
		if !ok {
			return nil, newResolutionError(map[string]string{"field": name, "type": f.Identifier}, "unknown field type %q for field %q", f.Identifier, name)
		}
		resolvedFields.Set(name, found)
	}
	return NewRecord(u.TypeIdentifier, resolvedFields), nil
}

// Record is a record type with every field's subtype resolved. Its width is
// the sum of its fields' widths; to_slv concatenates field encodings in
// reverse declaration order, matching every other container codec here.
type Record struct {
	TypeIdentifier string
	Fields         *orderedmap.OrderedMap[string, ResolvedType]
	width          symbolic.Expression
}

// NewRecord builds a Record and precomputes its width as the simplified sum
// of its fields' widths.
func NewRecord(identifier string, fields *orderedmap.OrderedMap[string, ResolvedType]) *Record {
	var terms []symbolic.Term
	for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
		terms = append(terms, symbolic.Term{Sign: 1, Expr: pair.Value.Width()})
	}
	width, err := symbolic.Simplify(symbolic.Add{Terms: terms})
	if err != nil {
		width = symbolic.Add{Terms: terms}
	}
	return &Record{TypeIdentifier: identifier, Fields: fields, width: width}
}

func (r *Record) Identifier() string          { return r.TypeIdentifier }
func (r *Record) Width() symbolic.Expression { return r.width }

func (r *Record) ToSLV(data interface{}, generics map[string]int64) (string, error) {
	fields, ok := data.(map[string]interface{})
	if !ok {
		return "", newInvalidValue("%s expects a field map, got %T", r.Identifier(), data)
	}
	var pieces []string
	for pair := r.Fields.Oldest(); pair != nil; pair = pair.Next() {
		name, subtype := pair.Key, pair.Value
		value, present := fields[name]
		if !present {
			return "", newInvalidValue("missing field %q for record %s", name, r.Identifier())
		}
		slv, err := subtype.ToSLV(value, generics)
		if err != nil {
			return "", err
		}
		pieces = append(pieces, slv)
	}
	var sb strings.Builder
	for i := len(pieces) - 1; i >= 0; i-- {
		sb.WriteString(pieces[i])
	}
	return sb.String(), nil
}

func (r *Record) ReduceSLV(slv string, generics map[string]int64) (interface{}, string, error) {
	data := make(map[string]interface{}, r.Fields.Len())
	reduced := slv
	for pair := r.Fields.Oldest(); pair != nil; pair = pair.Next() {
		name, subtype := pair.Key, pair.Value
		value, rest, err := subtype.ReduceSLV(reduced, generics)
		if err != nil {
			return nil, "", err
		}
		data[name] = value
		reduced = rest
	}
	return data, reduced, nil
}

func (r *Record) FromSLV(slv string, generics map[string]int64) (interface{}, error) {
	data, reduced, err := r.ReduceSLV(slv, generics)
	if err != nil {
		return nil, err
	}
	if reduced != "" {
		return nil, newInvalidValue("%d bits left over after decoding record %s", len(reduced), r.Identifier())
	}
	return data, nil
}

// Declaration renders the VHDL type declaration for this record (recovered
// from the Python source's Record.declaration, beyond the codec functions
// spec.md already asks for).
func (r *Record) Declaration() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "type %s is\n", r.TypeIdentifier)
	sb.WriteString("record\n")
	for pair := r.Fields.Oldest(); pair != nil; pair = pair.Next() {
		fmt.Fprintf(&sb, "    %s: %s;\n", pair.Key, pair.Value.Identifier())
	}
	sb.WriteString("end record;")
	return sb.String()
}
