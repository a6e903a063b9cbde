package hdlpkg

import (
	"testing"

	"github.com/kr/pretty"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	cerrors "slvcodec/internal/errors"
	"slvcodec/internal/symbolic"
	"slvcodec/internal/types"
)

// TestEntityResolveWithGenericWidths exercises the entity.py worked example
// (test_dummy_width): an entity with a generic-sized port and a record-typed
// port, resolved against a package that depends on the built-in universe.
func TestEntityResolveWithGenericWidths(t *testing.T) {
	byteExpr := symbolic.Int(8)
	recordFields := orderedmap.New[string, types.FieldType]()
	recordFields.Set("a", types.FieldType{Identifier: "byte_t"})
	recordFields.Set("b", types.FieldType{Identifier: "byte_t"})
	recordFields.Set("c", types.FieldType{Identifier: "byte_t"})

	pkg := &UnresolvedPackage{
		Identifier: "vhdl_type_pkg",
		Types: map[string]types.UnresolvedType{
			"byte_t": types.UnresolvedConstrainedStdLogicVector{
				TypeIdentifier: "byte_t",
				Kind:           types.VectorUnsigned,
				Size:           byteExpr,
			},
			"t_dummy": types.UnresolvedRecord{
				TypeIdentifier: "t_dummy",
				Fields:         recordFields,
			},
		},
		Constants: map[string]symbolic.Expression{},
		Uses:      []string{"std_logic_1164", "numeric_std"},
	}

	packages, err := ResolvePackages(map[string]*UnresolvedPackage{"vhdl_type_pkg": pkg})
	if err != nil {
		t.Fatalf("ResolvePackages: %v", err)
	}
	resolvedPkg := packages["vhdl_type_pkg"]

	widthExpr, err := symbolic.ParseAndSimplify("dummy_width")
	if err != nil {
		t.Fatalf("ParseAndSimplify: %v", err)
	}

	entity := &UnresolvedEntity{
		Identifier: "dummy",
		Generics: map[string]Generic{
			"dummy_width": {Name: "dummy_width", Typ: "integer"},
		},
		Ports: map[string]UnresolvedPort{
			"o_data": {Name: "o_data", Direction: DirectionOut, TypeIdentifier: "t_dummy"},
			"i_dummy": {
				Name:      "i_dummy",
				Direction: DirectionIn,
				Typ: types.UnresolvedConstrainedStdLogicVector{
					Kind: types.VectorUnsigned,
					Size: widthExpr,
				},
			},
		},
		Uses: []string{"vhdl_type_pkg"},
	}

	universeWithPkg := map[string]*Package{}
	for k, v := range NewUniverse() {
		universeWithPkg[k] = v
	}
	universeWithPkg["vhdl_type_pkg"] = resolvedPkg

	resolvedEntity, err := entity.Resolve(universeWithPkg)
	if err != nil {
		t.Fatalf("entity.Resolve: %v", err)
	}

	oData := resolvedEntity.Ports["o_data"]
	oWidth, err := symbolic.Value(oData.Typ.Width())
	if err != nil {
		t.Fatalf("o_data.Width(): %v", err)
	}
	if oWidth != 24 {
		t.Fatalf("got o_data width %d, want 24", oWidth)
	}

	iDummy := resolvedEntity.Ports["i_dummy"]
	iWidth, err := types.Evaluate(iDummy.Typ.Width(), resolvedPkg.Constants, map[string]int64{"dummy_width": 11})
	if err != nil {
		t.Fatalf("i_dummy.Width(): %v", err)
	}
	if iWidth != 11 {
		t.Fatalf("got i_dummy width %d, want 11", iWidth)
	}
}

func TestNameCollisionOnCombinePackages(t *testing.T) {
	a := &Package{Identifier: "a", Types: map[string]types.ResolvedType{"dup": types.StdLogic{}}, Constants: map[string]*types.Constant{}}
	b := &Package{Identifier: "b", Types: map[string]types.ResolvedType{"dup": types.StdLogic{}}, Constants: map[string]*types.Constant{}}
	_, _, err := combinePackages([]*Package{a, b})
	if err == nil {
		t.Fatalf("expected a NameCollision error")
	}
	if !cerrors.Is(err, cerrors.NameCollision) {
		t.Fatalf("got %v, want NameCollision", err)
	}
}

func TestResolvePackagesFailsOnUnknownUse(t *testing.T) {
	pkg := &UnresolvedPackage{
		Identifier: "orphan",
		Types:      map[string]types.UnresolvedType{},
		Constants:  map[string]symbolic.Expression{},
		Uses:       []string{"does_not_exist"},
	}
	_, err := ResolvePackages(map[string]*UnresolvedPackage{"orphan": pkg})
	if err == nil {
		t.Fatalf("expected an error for an unresolvable use dependency")
	}
}

func TestResolvePackagesConstantChain(t *testing.T) {
	baseExpr := symbolic.Int(4)
	derivedExpr, err := symbolic.ParseAndSimplify("base * 2")
	if err != nil {
		t.Fatalf("ParseAndSimplify: %v", err)
	}
	pkg := &UnresolvedPackage{
		Identifier: "consts_pkg",
		Types:      map[string]types.UnresolvedType{},
		Constants: map[string]symbolic.Expression{
			"base":    baseExpr,
			"derived": derivedExpr,
		},
		Uses: nil,
	}
	packages, err := ResolvePackages(map[string]*UnresolvedPackage{"consts_pkg": pkg})
	if err != nil {
		t.Fatalf("ResolvePackages: %v", err)
	}
	derived := packages["consts_pkg"].Constants["derived"]
	value, err := derived.Value(packages["consts_pkg"].Constants)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if value != 8 {
		t.Fatalf("got %d, want 8", value)
	}
}

// TestResolvePackagesIsDeterministic exercises §8's "resolver determinism"
// property: running the resolver twice on the same unresolved model yields
// equal resolved models. pretty.Diff gives a readable field-by-field report
// if a future change makes resolution order-dependent.
func TestResolvePackagesIsDeterministic(t *testing.T) {
	newPkg := func() *UnresolvedPackage {
		fields := orderedmap.New[string, types.FieldType]()
		fields.Set("a", types.FieldType{Identifier: "byte_t"})
		fields.Set("b", types.FieldType{Identifier: "byte_t"})
		return &UnresolvedPackage{
			Identifier: "det_pkg",
			Types: map[string]types.UnresolvedType{
				"byte_t": types.UnresolvedConstrainedStdLogicVector{
					TypeIdentifier: "byte_t",
					Kind:           types.VectorUnsigned,
					Size:           symbolic.Int(8),
				},
				"t_pair": types.UnresolvedRecord{TypeIdentifier: "t_pair", Fields: fields},
			},
			Constants: map[string]symbolic.Expression{},
			Uses:      []string{"numeric_std"},
			TypeOrder: []string{"byte_t", "t_pair"},
		}
	}

	first, err := ResolvePackages(map[string]*UnresolvedPackage{"det_pkg": newPkg()})
	if err != nil {
		t.Fatalf("ResolvePackages (first): %v", err)
	}
	second, err := ResolvePackages(map[string]*UnresolvedPackage{"det_pkg": newPkg()})
	if err != nil {
		t.Fatalf("ResolvePackages (second): %v", err)
	}

	firstPair := first["det_pkg"].Types["t_pair"].(*types.Record)
	secondPair := second["det_pkg"].Types["t_pair"].(*types.Record)
	if diff := pretty.Diff(firstPair.Identifier(), secondPair.Identifier()); len(diff) > 0 {
		t.Fatalf("resolved identifiers differ: %v", diff)
	}
	firstWidth, err := symbolic.Value(firstPair.Width())
	if err != nil {
		t.Fatalf("Width: %v", err)
	}
	secondWidth, err := symbolic.Value(secondPair.Width())
	if err != nil {
		t.Fatalf("Width: %v", err)
	}
	if diff := pretty.Diff(firstWidth, secondWidth); len(diff) > 0 {
		t.Fatalf("resolved widths differ between runs: %v", diff)
	}
	if first["det_pkg"].OrderedTypeNames()[0] != second["det_pkg"].OrderedTypeNames()[0] {
		t.Fatalf("type declaration order is not stable across runs")
	}
}
