// Package astin adapts the external parser's parse-tree surface (§6 of the
// specification: a package's constants/types/references, and an entity's
// generics/ports/references, each already split into non-whitespace source
// text for any arithmetic) into this module's UnresolvedPackage/
// UnresolvedEntity shapes. Nothing in here does lexical analysis of VHDL
// itself beyond the constant/size-expression text handed to the symbolic
// package: turning source text into this parse tree is the external parser's
// job, out of scope per spec.md §1.
package astin

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	cerrors "slvcodec/internal/errors"
	"slvcodec/internal/hdlpkg"
	"slvcodec/internal/symbolic"
	"slvcodec/internal/types"
)

// Reference is one `use <library>.<design_unit>.<name_within>;` clause.
type Reference struct {
	Library    string `json:"library"`
	DesignUnit string `json:"design_unit"`
	NameWithin string `json:"name_within"`
}

// ConstantDecl is one package constant as the external parser hands it over:
// the declared name and the raw HDL source text of its right-hand side,
// still to be lexed and parsed by the symbolic package.
type ConstantDecl struct {
	Identifier string `json:"identifier"`
	Text       string `json:"text"`
}

// FieldDecl is one record field: a name and a subtype reference, which is
// either a bare identifier (Subtype) or a nested parsed-type (Inline).
type FieldDecl struct {
	Identifier string    `json:"identifier"`
	Subtype    string    `json:"subtype,omitempty"`
	Inline     *TypeDecl `json:"inline,omitempty"`
}

// TypeDecl is the discriminated parsed-type shape described in §6: Kind
// selects which of the remaining fields apply.
//
//   - "std_logic_vector" / "unsigned" / "signed": a constrained vector; Size
//     is the HDL source text of its length expression.
//   - "array": an unconstrained array; Subtype (or Inline) names its element
//     type.
//   - "constrained_array": a constrained array; Size is its length
//     expression text, Subtype (or Inline) its unconstrained base type.
//   - "record": Fields lists its named subtypes in declaration order.
//   - "enumeration": Literals lists its literals in declaration order.
type TypeDecl struct {
	Identifier string      `json:"identifier"`
	Kind       string      `json:"kind"`
	Size       string      `json:"size,omitempty"`
	Subtype    string      `json:"subtype,omitempty"`
	Inline     *TypeDecl   `json:"inline,omitempty"`
	Fields     []FieldDecl `json:"fields,omitempty"`
	Literals   []string    `json:"literals,omitempty"`
}

// PackageDecl is the top-level parse-tree shape for a package.
type PackageDecl struct {
	Identifier string         `json:"identifier"`
	Constants  []ConstantDecl `json:"constants"`
	Types      []TypeDecl     `json:"types"`
	References []Reference    `json:"references"`
}

// GenericDecl is one entity generic as the external parser hands it over.
type GenericDecl struct {
	Identifier        string `json:"identifier"`
	SubtypeIndication string `json:"subtype_indication"`
	Default           *int64 `json:"default,omitempty"`
}

// PortDecl is one entity port.
type PortDecl struct {
	Identifier        string `json:"identifier"`
	Mode              string `json:"mode"`
	SubtypeIndication string `json:"subtype_indication"`
}

// EntityDecl is the top-level parse-tree shape for an entity.
type EntityDecl struct {
	Identifier string        `json:"identifier"`
	Generics   []GenericDecl `json:"generics"`
	Ports      []PortDecl    `json:"ports"`
	References []Reference   `json:"references"`
}

// ParsePackage unmarshals raw JSON in the §6 package shape and builds the
// corresponding UnresolvedPackage, lexing and simplifying every constant's
// and size expression's source text along the way.
func ParsePackage(data []byte) (*hdlpkg.UnresolvedPackage, error) {
	var decl PackageDecl
	if err := json.Unmarshal(data, &decl); err != nil {
		return nil, cerrors.Wrap(err, cerrors.ParseError, "decoding package parse tree")
	}
	return BuildPackage(decl)
}

// BuildPackage is ParsePackage's non-JSON entry point, for callers (tests,
// other adapters) that already hold a decoded PackageDecl.
func BuildPackage(decl PackageDecl) (*hdlpkg.UnresolvedPackage, error) {
	uses, err := resolveReferences(decl.References)
	if err != nil {
		return nil, err
	}

	constants := make(map[string]symbolic.Expression, len(decl.Constants))
	constantOrder := make([]string, 0, len(decl.Constants))
	for _, c := range decl.Constants {
		expr, err := symbolic.ParseAndSimplify(c.Text)
		if err != nil {
			return nil, err
		}
		constants[c.Identifier] = expr
		constantOrder = append(constantOrder, c.Identifier)
	}

	typs := make(map[string]types.UnresolvedType, len(decl.Types))
	typeOrder := make([]string, 0, len(decl.Types))
	for _, t := range decl.Types {
		built, err := buildType(t)
		if err != nil {
			return nil, err
		}
		typs[t.Identifier] = built
		typeOrder = append(typeOrder, t.Identifier)
	}

	return &hdlpkg.UnresolvedPackage{
		Identifier:    decl.Identifier,
		Types:         typs,
		Constants:     constants,
		TypeOrder:     typeOrder,
		ConstantOrder: constantOrder,
		Uses:          uses,
	}, nil
}

// ParseEntity is ParsePackage's entity counterpart.
func ParseEntity(data []byte) (*hdlpkg.UnresolvedEntity, error) {
	var decl EntityDecl
	if err := json.Unmarshal(data, &decl); err != nil {
		return nil, cerrors.Wrap(err, cerrors.ParseError, "decoding entity parse tree")
	}
	return BuildEntity(decl)
}

// BuildEntity is ParseEntity's non-JSON entry point.
func BuildEntity(decl EntityDecl) (*hdlpkg.UnresolvedEntity, error) {
	uses, err := resolveReferences(decl.References)
	if err != nil {
		return nil, err
	}

	generics := make(map[string]hdlpkg.Generic, len(decl.Generics))
	genericOrder := make([]string, 0, len(decl.Generics))
	for _, g := range decl.Generics {
		generics[g.Identifier] = hdlpkg.Generic{
			Name:    g.Identifier,
			Typ:     g.SubtypeIndication,
			Default: g.Default,
		}
		genericOrder = append(genericOrder, g.Identifier)
	}

	ports := make(map[string]hdlpkg.UnresolvedPort, len(decl.Ports))
	portOrder := make([]string, 0, len(decl.Ports))
	for _, p := range decl.Ports {
		direction, err := parseDirection(p.Mode)
		if err != nil {
			return nil, err
		}
		ports[p.Identifier] = hdlpkg.UnresolvedPort{
			Name:           p.Identifier,
			Direction:      direction,
			TypeIdentifier: p.SubtypeIndication,
		}
		portOrder = append(portOrder, p.Identifier)
	}

	return &hdlpkg.UnresolvedEntity{
		Identifier:   decl.Identifier,
		Generics:     generics,
		Ports:        ports,
		GenericOrder: genericOrder,
		PortOrder:    portOrder,
		Uses:         uses,
	}, nil
}

func parseDirection(mode string) (hdlpkg.PortDirection, error) {
	switch hdlpkg.PortDirection(mode) {
	case hdlpkg.DirectionIn, hdlpkg.DirectionOut, hdlpkg.DirectionInout, hdlpkg.DirectionBuffer:
		return hdlpkg.PortDirection(mode), nil
	default:
		return "", cerrors.Newf(cerrors.ParseError, map[string]string{"mode": mode}, "unknown port direction %q", mode)
	}
}

// resolveReferences turns a references list into the plain design-unit-name
// Uses list hdlpkg expects, enforcing §6's two adapter-level invariants:
// every reference must select "all", and no design unit may be referenced
// twice.
func resolveReferences(refs []Reference) ([]string, error) {
	seen := make(map[string]bool, len(refs))
	uses := make([]string, 0, len(refs))
	for _, r := range refs {
		if r.NameWithin != "all" {
			return nil, cerrors.Newf(cerrors.UnsupportedUse,
				map[string]string{"design_unit": r.DesignUnit, "name_within": r.NameWithin},
				"use of %s.%s selects %q, not all", r.Library, r.DesignUnit, r.NameWithin)
		}
		if seen[r.DesignUnit] {
			return nil, cerrors.Newf(cerrors.DuplicateUse,
				map[string]string{"design_unit": r.DesignUnit},
				"design unit %q referenced more than once", r.DesignUnit)
		}
		seen[r.DesignUnit] = true
		uses = append(uses, r.DesignUnit)
	}
	return uses, nil
}

func vectorKind(kind string) (types.VectorKind, bool) {
	switch kind {
	case "std_logic_vector":
		return types.VectorPlain, true
	case "unsigned":
		return types.VectorUnsigned, true
	case "signed":
		return types.VectorSigned, true
	default:
		return 0, false
	}
}

// buildType dispatches a single TypeDecl to the matching
// types.UnresolvedType constructor, recursing into Fields/Inline as needed.
func buildType(t TypeDecl) (types.UnresolvedType, error) {
	if kind, ok := vectorKind(t.Kind); ok {
		size, err := symbolic.ParseAndSimplify(t.Size)
		if err != nil {
			return nil, err
		}
		return types.UnresolvedConstrainedStdLogicVector{
			TypeIdentifier: t.Identifier,
			Kind:           kind,
			Size:           size,
		}, nil
	}

	switch t.Kind {
	case "array":
		unconstrained := types.UnresolvedUnconstrainedArray{TypeIdentifier: t.Identifier}
		if t.Inline != nil {
			inline, err := buildType(*t.Inline)
			if err != nil {
				return nil, err
			}
			unconstrained.Subtype = inline
		} else {
			unconstrained.SubtypeIdentifier = t.Subtype
		}
		return unconstrained, nil

	case "constrained_array":
		size, err := symbolic.ParseAndSimplify(t.Size)
		if err != nil {
			return nil, err
		}
		constrained := types.UnresolvedConstrainedArray{TypeIdentifier: t.Identifier, Size: size}
		if t.Inline != nil {
			inlineDecl := *t.Inline
			inlineDecl.Kind = "array"
			inline, err := buildType(inlineDecl)
			if err != nil {
				return nil, err
			}
			ua, ok := inline.(types.UnresolvedUnconstrainedArray)
			if !ok {
				return nil, cerrors.Newf(cerrors.ParseError, map[string]string{"type": t.Identifier}, "inline base of a constrained array must itself be an array")
			}
			constrained.Unconstrained = &ua
		} else {
			constrained.UnconstrainedTypeIdentifier = t.Subtype
		}
		return constrained, nil

	case "record":
		fields := orderedmap.New[string, types.FieldType]()
		for _, f := range t.Fields {
			field := types.FieldType{Identifier: f.Subtype}
			if f.Inline != nil {
				inline, err := buildType(*f.Inline)
				if err != nil {
					return nil, err
				}
				field = types.FieldType{Inline: inline}
			}
			fields.Set(f.Identifier, field)
		}
		return types.UnresolvedRecord{TypeIdentifier: t.Identifier, Fields: fields}, nil

	case "enumeration":
		return types.NewEnumeration(t.Identifier, t.Literals), nil

	default:
		return nil, cerrors.Newf(cerrors.ParseError, map[string]string{"kind": t.Kind, "type": t.Identifier}, "unknown parsed-type kind %q", t.Kind)
	}
}
