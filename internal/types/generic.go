package types

import (
	"sort"
	"strings"

	"slvcodec/internal/symbolic"
)

// Generic is an entity or package generic parameter: a free name that only
// acquires a concrete value at encode/decode time, optionally carrying a
// declared default (recovered from the Python source's Generic.default —
// spec.md's distillation drops this). Evaluate and the codecs do not read
// Default: a generic missing from the generics map stays unresolved.
type Generic struct {
	Name    string
	Typ     string
	Default *int64
}

// StrExpression renders a Generic the way it appears inside another
// expression: by its bare name.
func (g Generic) StrExpression() string { return g.Name }

// Constant is a package-level constant bound to the expression that defines
// it (itself possibly referencing other constants or generics).
type Constant struct {
	Name       string
	Expression symbolic.Expression
}

// Value evaluates a constant's own expression to an integer. It does not
// accept a generics map: a true constant must not depend on any entity
// generic to be well-defined at package-resolution time.
func (c *Constant) Value(constants map[string]*Constant) (int64, error) {
	return Evaluate(c.Expression, constants, nil)
}

// StrExpression renders a Constant the way it appears inside another
// expression: by its bare name, never its expanded definition. This is the
// behavior `type_width_constant` recovers: a reference to a named constant
// renders as an identifier, not as the arithmetic that defines it.
func (c *Constant) StrExpression() string { return c.Name }

// resolveExpression validates that every free name e depends on is already
// known (either a resolved constant, passed in `constants`, or a name in
// `also`, typically the entity's own generic parameters merged in per
// entity.py's exclusive_dict_merge). It never rewrites e: named references
// are kept intact so later rendering can still print them as identifiers
// rather than their expanded definitions.
func resolveExpression(e symbolic.Expression, constants map[string]*Constant, also map[string]bool) (symbolic.Expression, error) {
	deps := symbolic.GetConstantList(e)
	var missing []string
	for _, d := range deps {
		if _, ok := constants[d]; ok {
			continue
		}
		if also[d] {
			continue
		}
		missing = append(missing, d)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, newResolutionError(map[string]string{"missing": strings.Join(missing, ", ")},
			"missing constants: %s", strings.Join(missing, ", "))
	}
	return e, nil
}

// Evaluate resolves e down to a concrete integer, substituting package
// constants (recursively, to settle constant-references-constant chains) and
// the caller-supplied generics map, then evaluating the result. This unifies
// the Python source's two-stage Constant-object/Generic-object substitution
// trick into one pass, since resolveExpression above already guarantees
// every free name in e is backed by one or the other.
func Evaluate(e symbolic.Expression, constants map[string]*Constant, generics map[string]int64) (int64, error) {
	env := make(map[string]symbolic.Expression, len(constants)+len(generics))
	for name, c := range constants {
		env[name] = c.Expression
	}
	for name, v := range generics {
		env[name] = symbolic.Int(v)
	}
	cur := e
	for i := 0; i < len(constants)+1; i++ {
		cur = symbolic.Substitute(env)(cur)
	}
	simplified, err := symbolic.Simplify(cur)
	if err != nil {
		return 0, err
	}
	return symbolic.Value(simplified)
}
