package types

import (
	"reflect"
	"testing"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"slvcodec/internal/symbolic"
)

func TestStdLogicRoundTrip(t *testing.T) {
	s := StdLogic{}
	slv, err := s.ToSLV(Bit1, nil)
	if err != nil {
		t.Fatalf("ToSLV: %v", err)
	}
	if slv != "1" {
		t.Fatalf("got %q, want %q", slv, "1")
	}
	data, err := s.FromSLV("1", nil)
	if err != nil {
		t.Fatalf("FromSLV: %v", err)
	}
	if data.(StdLogicBit) != Bit1 {
		t.Fatalf("got %v, want Bit1", data)
	}
}

func TestStdLogicUndefinedDecode(t *testing.T) {
	s := StdLogic{}
	data, err := s.FromSLV("X", nil)
	if err != nil {
		t.Fatalf("FromSLV: %v", err)
	}
	if data.(StdLogicBit) != BitUndefined {
		t.Fatalf("got %v, want BitUndefined", data)
	}
}

func TestConstrainedUnsignedRoundTrip(t *testing.T) {
	c := &ConstrainedStdLogicVector{Kind: VectorUnsigned, Size: symbolic.Int(4)}
	slv, err := c.ToSLV(int64(11), nil)
	if err != nil {
		t.Fatalf("ToSLV: %v", err)
	}
	if slv != "1011" {
		t.Fatalf("got %q, want %q", slv, "1011")
	}
	data, err := c.FromSLV(slv, nil)
	if err != nil {
		t.Fatalf("FromSLV: %v", err)
	}
	if data.(int64) != 11 {
		t.Fatalf("got %v, want 11", data)
	}
}

func TestConstrainedSignedBoundary(t *testing.T) {
	c := &ConstrainedStdLogicVector{Kind: VectorSigned, Size: symbolic.Int(4)}
	cases := []struct {
		value int64
		slv   string
	}{
		{-8, "1000"},
		{7, "0111"},
		{-1, "1111"},
		{0, "0000"},
	}
	for _, tc := range cases {
		slv, err := c.ToSLV(tc.value, nil)
		if err != nil {
			t.Fatalf("ToSLV(%d): %v", tc.value, err)
		}
		if slv != tc.slv {
			t.Fatalf("ToSLV(%d) = %q, want %q", tc.value, slv, tc.slv)
		}
		data, err := c.FromSLV(slv, nil)
		if err != nil {
			t.Fatalf("FromSLV(%q): %v", slv, err)
		}
		if data.(int64) != tc.value {
			t.Fatalf("FromSLV(%q) = %v, want %d", slv, data, tc.value)
		}
	}
	if _, err := c.ToSLV(int64(8), nil); err == nil {
		t.Fatalf("expected an out-of-range error for 8 in a 4-bit signed value")
	}
	if _, err := c.ToSLV(int64(-9), nil); err == nil {
		t.Fatalf("expected an out-of-range error for -9 in a 4-bit signed value")
	}
}

func TestConstrainedStdLogicVectorUndefinedBitPropagates(t *testing.T) {
	c := &ConstrainedStdLogicVector{Kind: VectorUnsigned, Size: symbolic.Int(4)}
	data, err := c.FromSLV("10X1", nil)
	if err != nil {
		t.Fatalf("FromSLV: %v", err)
	}
	if data != nil {
		t.Fatalf("got %v, want nil for an undefined bit", data)
	}
}

func TestConstrainedArrayRoundTrip(t *testing.T) {
	unconstrained := &UnconstrainedArray{TypeIdentifier: "word_array", Subtype: &ConstrainedStdLogicVector{Kind: VectorUnsigned, Size: symbolic.Int(2)}}
	arr := &ConstrainedArray{TypeIdentifier: "word_array_3", Unconstrained: unconstrained, Size: symbolic.Int(3)}
	elems := []interface{}{int64(1), int64(2), int64(3)}
	slv, err := arr.ToSLV(elems, nil)
	if err != nil {
		t.Fatalf("ToSLV: %v", err)
	}
	if slv != "111001" {
		t.Fatalf("got %q, want %q", slv, "111001")
	}
	data, err := arr.FromSLV(slv, nil)
	if err != nil {
		t.Fatalf("FromSLV: %v", err)
	}
	got := data.([]interface{})
	if !reflect.DeepEqual(got, elems) {
		t.Fatalf("got %v, want %v", got, elems)
	}
}

func TestConstrainedArrayUndefinedBitPropagates(t *testing.T) {
	unconstrained := &UnconstrainedArray{TypeIdentifier: "word_array", Subtype: &ConstrainedStdLogicVector{Kind: VectorUnsigned, Size: symbolic.Int(2)}}
	arr := &ConstrainedArray{TypeIdentifier: "word_array_2", Unconstrained: unconstrained, Size: symbolic.Int(2)}
	data, err := arr.FromSLV("1X01", nil)
	if err != nil {
		t.Fatalf("FromSLV: %v", err)
	}
	got := data.([]interface{})
	if got[1] != nil {
		t.Fatalf("got %v, want nil for the element holding the undefined bit", got[1])
	}
	if got[0].(int64) != 1 {
		t.Fatalf("got %v, want 1", got[0])
	}
}

func TestRecordRoundTrip(t *testing.T) {
	fields := orderedmap.New[string, ResolvedType]()
	fields.Set("a", &ConstrainedStdLogicVector{Kind: VectorUnsigned, Size: symbolic.Int(4)})
	fields.Set("b", StdLogic{})
	rec := NewRecord("pair_t", fields)

	width, err := symbolic.Value(rec.Width())
	if err != nil {
		t.Fatalf("Width: %v", err)
	}
	if width != 5 {
		t.Fatalf("got width %d, want 5", width)
	}

	data := map[string]interface{}{"a": int64(9), "b": Bit1}
	slv, err := rec.ToSLV(data, nil)
	if err != nil {
		t.Fatalf("ToSLV: %v", err)
	}
	if slv != "11001" {
		t.Fatalf("got %q, want %q", slv, "11001")
	}
	decoded, err := rec.FromSLV(slv, nil)
	if err != nil {
		t.Fatalf("FromSLV: %v", err)
	}
	got := decoded.(map[string]interface{})
	if got["a"].(int64) != 9 {
		t.Fatalf("field a = %v, want 9", got["a"])
	}
	if got["b"].(StdLogicBit) != Bit1 {
		t.Fatalf("field b = %v, want Bit1", got["b"])
	}
}

func TestRecordDeclaration(t *testing.T) {
	fields := orderedmap.New[string, ResolvedType]()
	fields.Set("a", &ConstrainedStdLogicVector{TypeIdentifier: "std_logic_vector(3 downto 0)", Kind: VectorUnsigned, Size: symbolic.Int(4)})
	fields.Set("b", StdLogic{})
	rec := NewRecord("pair_t", fields)
	want := "type pair_t is\nrecord\n    a: std_logic_vector(3 downto 0);\n    b: std_logic;\nend record;"
	if got := rec.Declaration(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestEnumerationRoundTrip(t *testing.T) {
	e := NewEnumeration("color_t", []string{"Red", "Green", "Blue", "Yellow"})
	if width, err := symbolic.Value(e.Width()); err != nil || width != 2 {
		t.Fatalf("got width %v err %v, want 2", width, err)
	}
	slv, err := e.ToSLV("green", nil)
	if err != nil {
		t.Fatalf("ToSLV: %v", err)
	}
	if slv != "01" {
		t.Fatalf("got %q, want %q", slv, "01")
	}
	data, err := e.FromSLV(slv, nil)
	if err != nil {
		t.Fatalf("FromSLV: %v", err)
	}
	if data.(string) != "green" {
		t.Fatalf("got %v, want green", data)
	}
	if _, err := e.ToSLV("purple", nil); err == nil {
		t.Fatalf("expected an error encoding a literal that doesn't exist")
	}
}

func TestEnumerationSingleLiteralWidth(t *testing.T) {
	e := NewEnumeration("unit_t", []string{"only"})
	width, err := symbolic.Value(e.Width())
	if err != nil {
		t.Fatalf("Width: %v", err)
	}
	if width != 1 {
		t.Fatalf("got width %d, want 1", width)
	}
}

func TestEnumerationDeclaration(t *testing.T) {
	e := NewEnumeration("color_t", []string{"Red", "Green", "Blue"})
	want := "type color_t is (red, green, blue);"
	if got := e.Declaration(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEvaluateSubstitutesConstantsAndGenerics(t *testing.T) {
	constants := map[string]*Constant{
		"base": {Name: "base", Expression: symbolic.Int(4)},
	}
	expr, err := symbolic.ParseAndSimplify("base + width")
	if err != nil {
		t.Fatalf("ParseAndSimplify: %v", err)
	}
	value, err := Evaluate(expr, constants, map[string]int64{"width": 3})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if value != 7 {
		t.Fatalf("got %d, want 7", value)
	}
}

func TestResolveExpressionMissingConstant(t *testing.T) {
	expr, err := symbolic.ParseAndSimplify("missing_thing")
	if err != nil {
		t.Fatalf("ParseAndSimplify: %v", err)
	}
	if _, err := resolveExpression(expr, nil, nil); err == nil {
		t.Fatalf("expected a resolution error for an unknown free name")
	}
}

func TestConstrainedArrayResolveFromUnresolved(t *testing.T) {
	unresolved := UnresolvedConstrainedArray{
		TypeIdentifier: "word_array_2",
		Size:           symbolic.Int(2),
		Unconstrained: &UnresolvedUnconstrainedArray{
			TypeIdentifier:    "word_array",
			SubtypeIdentifier: "word",
		},
	}
	typs := map[string]ResolvedType{
		"word": &ConstrainedStdLogicVector{TypeIdentifier: "word", Kind: VectorUnsigned, Size: symbolic.Int(8)},
	}
	resolved, err := unresolved.Resolve(typs, nil, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	arr, ok := resolved.(*ConstrainedArray)
	if !ok {
		t.Fatalf("got %T, want *ConstrainedArray", resolved)
	}
	width, err := symbolic.Value(arr.Width())
	if err != nil {
		t.Fatalf("Width: %v", err)
	}
	if width != 16 {
		t.Fatalf("got width %d, want 16", width)
	}
}
