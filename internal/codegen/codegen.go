// Package codegen implements §4.E: walking a resolved package and emitting,
// for each of its types, the pair of slvcodec functions (to_slvcodec,
// from_slvcodec) a VHDL simulator needs to serialize that type to and from a
// std_logic_vector, plus a width constant, wrapped in the
// <identifier>_slvcodec package boilerplate package_generator.py emits.
package codegen

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"slvcodec/internal/hdlpkg"
	"slvcodec/internal/symbolic"
	"slvcodec/internal/types"
)

// Generator emits slvcodec packages for resolved hdlpkg.Packages. Its two
// body templates are parsed once at construction (NewGenerator) so repeated
// calls to Generate never re-touch the embedded template files.
type Generator struct {
	tmpl *templates
}

// NewGenerator parses the two embedded body templates and returns a
// Generator ready to call Generate on any number of packages.
func NewGenerator() (*Generator, error) {
	t, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	return &Generator{tmpl: t}, nil
}

// declaredWidthExpr recovers typs.py's type_width_constant: the expression
// to print when some OTHER declaration needs this type's width. A type that
// gets its own "<id>_width" constant from declarations (a record or a
// constrained vector/array) is referenced by that name rather than having
// its size recomputed inline; a type with no width constant of its own
// (an enumeration, embedded by reference — §12 item 2) is referenced by the
// generator's "<id>_slvcodecwidth" convention instead. std_logic is the one
// fixed-width built-in with neither: it is simply 1.
func declaredWidthExpr(t types.ResolvedType) symbolic.Expression {
	switch t.(type) {
	case types.StdLogic:
		return symbolic.Int(1)
	case *types.ConstrainedStdLogicVector, *types.ConstrainedArray, *types.Record:
		return symbolic.Name(t.Identifier() + "_width")
	default:
		return symbolic.Name(t.Identifier() + "_slvcodecwidth")
	}
}

// arrayDeclaredWidth renders a constrained array's own width constant as
// size * (element type's declared width reference), rather than expanding
// the element's width inline.
func arrayDeclaredWidth(v *types.ConstrainedArray) symbolic.Expression {
	return symbolic.NewMul([]symbolic.Expression{declaredWidthExpr(v.Unconstrained.Subtype), v.Size}, nil)
}

// recordDeclaredWidth sums declaredWidthExpr over a record's fields, in
// field declaration order, for printing in its own width constant.
func recordDeclaredWidth(r *types.Record) symbolic.Expression {
	var terms []symbolic.Term
	for pair := r.Fields.Oldest(); pair != nil; pair = pair.Next() {
		terms = append(terms, symbolic.Term{Sign: 1, Expr: declaredWidthExpr(pair.Value)})
	}
	if len(terms) == 1 {
		return terms[0].Expr
	}
	return symbolic.Add{Terms: terms}
}

// declarations renders the width-constant + function-signature block for a
// single type, per §4.E: a record gets a width constant and both
// signatures; an unconstrained array gets both signatures but no width
// constant (it has no length); a constrained vector/array that merely wraps a previously
// declared unconstrained base gets only the width constant (its codec
// functions are the base's, inherited rather than redeclared).
func declarations(t types.ResolvedType) (string, error) {
	switch v := t.(type) {
	case *types.Record:
		width := symbolic.Render(recordDeclaredWidth(v))
		return fmt.Sprintf(
			"  constant %s_width: natural := %s;\n  function to_slvcodec (constant data: %s) return std_logic_vector;\n  function from_slvcodec (constant slv: std_logic_vector) return %s;",
			v.Identifier(), width, v.Identifier(), v.Identifier()), nil
	case *types.UnconstrainedArray:
		return fmt.Sprintf(
			"  function to_slvcodec (constant data: %s) return std_logic_vector;\n  function from_slvcodec (constant slv: std_logic_vector) return %s;",
			v.Identifier(), v.Identifier()), nil
	case *types.ConstrainedArray:
		width := symbolic.Render(arrayDeclaredWidth(v))
		return fmt.Sprintf("  constant %s_width: natural := %s;", v.Identifier(), width), nil
	case *types.ConstrainedStdLogicVector:
		width := symbolic.Render(v.Width())
		return fmt.Sprintf("  constant %s_width: natural := %s;", v.Identifier(), width), nil
	default:
		return "", newUnsupportedType(t.Identifier())
	}
}

// definitions renders the function-body block for a single type, via the
// matching embedded template. Constrained forms return an empty string:
// their codec is inherited from their unconstrained parent, per §4.E.
func (g *Generator) definitions(t types.ResolvedType) (string, error) {
	switch v := t.(type) {
	case *types.Record:
		fields := make([]recordField, 0, v.Fields.Len())
		i := 0
		for pair := v.Fields.Oldest(); pair != nil; pair = pair.Next() {
			fields = append(fields, recordField{
				Index: i,
				Name:  pair.Key,
				Width: symbolic.Render(declaredWidthExpr(pair.Value)),
			})
			i++
		}
		for i := range fields {
			fields[i].HasNext = i < len(fields)-1
		}
		return g.tmpl.renderRecord(recordData{Type: v.Identifier(), Fields: fields})
	case *types.UnconstrainedArray:
		return g.tmpl.renderArray(arrayData{Type: v.Identifier(), Subtype: v.Subtype.Identifier()})
	case *types.ConstrainedArray, *types.ConstrainedStdLogicVector:
		return "", nil
	default:
		return "", newUnsupportedType(t.Identifier())
	}
}

// declarationsAndDefinitions is make_declarations_and_definitions: it
// dispatches by the resolved variant and rejects anything outside
// {record, array, constrained vector} with UnsupportedType.
func (g *Generator) declarationsAndDefinitions(t types.ResolvedType) (decl, def string, err error) {
	switch t.(type) {
	case *types.Record, *types.UnconstrainedArray, *types.ConstrainedArray, *types.ConstrainedStdLogicVector:
	default:
		return "", "", newUnsupportedType(t.Identifier())
	}
	decl, err = declarations(t)
	if err != nil {
		return "", "", err
	}
	def, err = g.definitions(t)
	if err != nil {
		return "", "", err
	}
	return decl, def, nil
}

// Generate emits the <identifier>_slvcodec package for pkg: width constants
// and function declarations, then function bodies, in pkg's declaration
// order (§5, §9). runID is a correlation id (the caller's uuid.New(),
// typically) threaded only into the header comment so the output of
// concurrent per-package generation (GenerateAll) can be told apart; it never
// affects the emitted VHDL's semantics.
func (g *Generator) Generate(pkg *hdlpkg.Package, runID uuid.UUID) (string, error) {
	var allDecls, allDefs []string
	for _, name := range pkg.OrderedTypeNames() {
		typ := pkg.Types[name]
		decl, def, err := g.declarationsAndDefinitions(typ)
		if err != nil {
			return "", err
		}
		allDecls = append(allDecls, decl)
		if def != "" {
			allDefs = append(allDefs, def)
		}
	}

	// Mandatory headers per §4.E ("the generator emits library/use headers
	// drawn from P.uses plus mandatory ieee.numeric_std, work.<P.id>,
	// work.slvcodec"); the two built-in packages are covered by the
	// mandatory ieee imports, so any other use gets its own work.<name>.all.
	useLines := []string{"use ieee.std_logic_1164.all;", "use ieee.numeric_std.all;"}
	for _, use := range pkg.UseOrder {
		if use == "std_logic_1164" || use == "numeric_std" {
			continue
		}
		useLines = append(useLines, fmt.Sprintf("use work.%s.all;", use))
	}
	useLines = append(useLines, fmt.Sprintf("use work.%s.all;", pkg.Identifier))
	useLines = append(useLines, "use work.slvcodec.all;")

	var sb strings.Builder
	fmt.Fprintf(&sb, "-- generated by slvcodec (run %s)\n", runID)
	sb.WriteString("library ieee;\nlibrary work;\n")
	for _, line := range useLines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "\npackage %s_slvcodec is\n\n", pkg.Identifier)
	sb.WriteString(strings.Join(allDecls, "\n"))
	fmt.Fprintf(&sb, "\n\nend package;\n\npackage body %s_slvcodec is\n\n", pkg.Identifier)
	sb.WriteString(strings.Join(allDefs, "\n"))
	sb.WriteString("\n\nend package body;\n")
	return sb.String(), nil
}

// GenerateTypeDeclarations emits just the VHDL type declarations themselves
// (feature recovered from typs.py Record.declaration / Enumeration.
// declaration — SPEC_FULL §12 item 3), for every type in pkg that declares
// one. Types with no declaration of their own (arrays, vectors, the
// std_logic built-ins) are silently skipped: they were never separately
// declared by this package to begin with.
func (g *Generator) GenerateTypeDeclarations(pkg *hdlpkg.Package) string {
	type declarer interface{ Declaration() string }
	var sb strings.Builder
	for _, name := range pkg.OrderedTypeNames() {
		if d, ok := pkg.Types[name].(declarer); ok {
			sb.WriteString(d.Declaration())
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
