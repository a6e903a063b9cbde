package hdlpkg

import (
	"slvcodec/internal/resolve"
	"slvcodec/internal/types"
)

// StandardPackages names the built-in packages every universe is pre-seeded
// with, matching package.py's standard_packages tuple.
var StandardPackages = []string{"std_logic_1164", "numeric_std"}

// NewUniverse returns the two built-in packages (std_logic_1164, numeric_std)
// pre-resolved, the fixed starting point every call to ResolvePackages
// builds on.
func NewUniverse() map[string]*Package {
	return map[string]*Package{
		"std_logic_1164": {
			Identifier: "std_logic_1164",
			Types: map[string]types.ResolvedType{
				"std_logic":        types.StdLogic{},
				"std_logic_vector": types.UnconstrainedVector{Kind: types.VectorPlain},
			},
			TypeOrder: []string{"std_logic", "std_logic_vector"},
			Constants: map[string]*types.Constant{},
			Uses:      map[string]*Package{},
		},
		"numeric_std": {
			Identifier: "numeric_std",
			Types: map[string]types.ResolvedType{
				"unsigned": types.UnconstrainedVector{Kind: types.VectorUnsigned},
				"signed":   types.UnconstrainedVector{Kind: types.VectorSigned},
			},
			TypeOrder: []string{"unsigned", "signed"},
			Constants: map[string]*types.Constant{},
			Uses:      map[string]*Package{},
		},
	}
}

// ResolvePackages resolves a batch of unresolved packages against the
// built-in universe, repeatedly resolving whichever package currently has
// every "use" dependency available, mirroring package.py's process_packages
// fix-point loop.
func ResolvePackages(unresolved map[string]*UnresolvedPackage) (map[string]*Package, error) {
	available := NewUniverse()

	deps := resolve.Dependencies{}
	for name, p := range unresolved {
		deps[name] = p.Uses
	}

	resolved, err := resolve.Fixpoint(available, unresolved, deps,
		func(name string, p *UnresolvedPackage, available map[string]*Package) (*Package, error) {
			return p.Resolve(available)
		})
	if err != nil {
		return nil, err
	}
	for name, p := range resolved {
		available[name] = p
	}
	return available, nil
}
