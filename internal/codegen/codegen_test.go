package codegen

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"slvcodec/internal/astin"
	cerrors "slvcodec/internal/errors"
	"slvcodec/internal/hdlpkg"
	"slvcodec/internal/symbolic"
	"slvcodec/internal/types"
)

func buildDummyPackage(t *testing.T) *hdlpkg.Package {
	t.Helper()
	decl := astin.PackageDecl{
		Identifier: "vhdl_type_pkg",
		Constants: []astin.ConstantDecl{
			{Identifier: "n", Text: "11"},
		},
		Types: []astin.TypeDecl{
			{Identifier: "byte_t", Kind: "unsigned", Size: "n"},
			{
				Identifier: "t_dummy",
				Kind:       "record",
				Fields: []astin.FieldDecl{
					{Identifier: "a", Subtype: "byte_t"},
					{Identifier: "b", Subtype: "byte_t"},
				},
			},
		},
		References: []astin.Reference{
			{Library: "ieee", DesignUnit: "numeric_std", NameWithin: "all"},
		},
	}
	unresolved, err := astin.BuildPackage(decl)
	if err != nil {
		t.Fatalf("BuildPackage: %v", err)
	}
	packages, err := hdlpkg.ResolvePackages(map[string]*hdlpkg.UnresolvedPackage{"vhdl_type_pkg": unresolved})
	if err != nil {
		t.Fatalf("ResolvePackages: %v", err)
	}
	return packages["vhdl_type_pkg"]
}

func TestGenerateProducesRecordAndVectorDeclarations(t *testing.T) {
	pkg := buildDummyPackage(t)
	gen, err := NewGenerator()
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	source, err := gen.Generate(pkg, uuid.Nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, want := range []string{
		"package vhdl_type_pkg_slvcodec is",
		"byte_t_width: natural := n",
		"t_dummy_width: natural :=",
		"function to_slvcodec (constant data: t_dummy) return std_logic_vector;",
		"function from_slvcodec (constant slv: std_logic_vector) return t_dummy;",
		"end package body;",
	} {
		if !strings.Contains(source, want) {
			t.Fatalf("generated source missing %q:\n%s", want, source)
		}
	}
	// byte_t is a constrained vector: it gets a width constant but no
	// function signatures of its own (inherited from unsigned).
	if strings.Contains(source, "return byte_t;") {
		t.Fatalf("constrained vector byte_t should not get its own codec functions:\n%s", source)
	}
}

func TestDeclaredWidthExprReferencesFieldTypeByName(t *testing.T) {
	pkg := buildDummyPackage(t)
	record := pkg.Types["t_dummy"].(*types.Record)
	width := recordDeclaredWidth(record)
	rendered := symbolic.Render(width)
	if rendered != "byte_t_width + byte_t_width" {
		t.Fatalf("got %q, want a sum of two byte_t_width references", rendered)
	}
}

func TestGenerateRejectsEnumeration(t *testing.T) {
	pkg := &hdlpkg.Package{
		Identifier: "bad_pkg",
		Types: map[string]types.ResolvedType{
			"t_color": types.NewEnumeration("t_color", []string{"red", "green"}),
		},
		TypeOrder: []string{"t_color"},
		Constants: map[string]*types.Constant{},
		Uses:      map[string]*hdlpkg.Package{},
	}
	gen, err := NewGenerator()
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	_, err = gen.Generate(pkg, uuid.Nil)
	if !cerrors.Is(err, cerrors.UnsupportedType) {
		t.Fatalf("got %v, want UnsupportedType", err)
	}
}

func TestGenerateAllReturnsResultPerPackage(t *testing.T) {
	pkg := buildDummyPackage(t)
	gen, err := NewGenerator()
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	results, err := gen.GenerateAll(map[string]*hdlpkg.Package{"vhdl_type_pkg": pkg})
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	if _, ok := results["vhdl_type_pkg"]; !ok {
		t.Fatalf("missing result for vhdl_type_pkg")
	}
}

func TestGenerateTypeDeclarationsEmitsRecordText(t *testing.T) {
	pkg := buildDummyPackage(t)
	gen, err := NewGenerator()
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	decls := gen.GenerateTypeDeclarations(pkg)
	if !strings.Contains(decls, "record") || !strings.Contains(decls, "end record;") {
		t.Fatalf("expected a record type declaration, got:\n%s", decls)
	}
}
