// Package hdlpkg models VHDL packages and entities: a declared set of
// types/constants (a package) or generics/ports (an entity), each with an
// Unresolved form whose "uses" list may still name other unresolved packages,
// and a Resolved form where every reference has settled to a concrete type or
// value.
package hdlpkg

import (
	"sort"
	"strings"

	cerrors "slvcodec/internal/errors"
	"slvcodec/internal/resolve"
	"slvcodec/internal/symbolic"
	"slvcodec/internal/types"
)

// UnresolvedPackage is a package as parsed: its constants and types may
// reference names from the packages it uses, which are not necessarily
// resolved yet themselves.
//
// TypeOrder and ConstantOrder record the declaration order the adapter saw
// types/constants in (the parse-tree's types/constants arrays, §6); they are
// carried through to the resolved Package untouched by Resolve, since §5/§9
// require generator output to follow declaration order, not the order the
// dependency fix-point (§4.D) happened to settle names in.
type UnresolvedPackage struct {
	Identifier    string
	Types         map[string]types.UnresolvedType
	Constants     map[string]symbolic.Expression
	TypeOrder     []string
	ConstantOrder []string
	Uses          []string
}

// Package is a package with every type and constant resolved. TypeOrder and
// ConstantOrder are copied verbatim from the UnresolvedPackage that produced
// it; OrderedTypeNames/OrderedConstantNames give callers (the codegen package, in
// particular) that declaration order without needing to know the fallback
// rule below.
type Package struct {
	Identifier    string
	Types         map[string]types.ResolvedType
	Constants     map[string]*types.Constant
	TypeOrder     []string
	ConstantOrder []string
	UseOrder      []string
	Uses          map[string]*Package
}

// OrderedTypeNames returns p.TypeOrder when the adapter recorded one,
// falling back to a sorted name list so a Package built directly by a test
// (with no TypeOrder set) still iterates deterministically.
func (p *Package) OrderedTypeNames() []string {
	return orderedNames(p.TypeOrder, p.Types)
}

// OrderedConstantNames is OrderedTypeNames for p.Constants.
func (p *Package) OrderedConstantNames() []string {
	return orderedNames(p.ConstantOrder, p.Constants)
}

func orderedNames[V any](order []string, all map[string]V) []string {
	if len(order) > 0 {
		return order
	}
	names := make([]string, 0, len(all))
	for n := range all {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// exclusiveDictMerge merges b into a, raising NameCollision if any key
// appears in both (package.py's exclusive_dict_merge, generalized to any
// value type via Go generics).
func exclusiveDictMerge[V any](a, b map[string]V) (map[string]V, error) {
	merged := make(map[string]V, len(a)+len(b))
	for k, v := range a {
		merged[k] = v
	}
	var collisions []string
	for k, v := range b {
		if _, ok := a[k]; ok {
			collisions = append(collisions, k)
			continue
		}
		merged[k] = v
	}
	if len(collisions) > 0 {
		sort.Strings(collisions)
		return nil, cerrors.Newf(cerrors.NameCollision,
			map[string]string{"names": strings.Join(collisions, ", ")},
			"duplicate name(s): %s", strings.Join(collisions, ", "))
	}
	return merged, nil
}

// combinePackages merges the types and constants of every package in
// packages into two flat maps, raising NameCollision on any name shared
// between two of them.
func combinePackages(packages []*Package) (map[string]types.ResolvedType, map[string]*types.Constant, error) {
	combinedTypes := map[string]types.ResolvedType{}
	combinedConstants := map[string]*types.Constant{}
	var err error
	for _, p := range packages {
		combinedTypes, err = exclusiveDictMerge(combinedTypes, p.Types)
		if err != nil {
			return nil, nil, err
		}
		combinedConstants, err = exclusiveDictMerge(combinedConstants, p.Constants)
		if err != nil {
			return nil, nil, err
		}
	}
	return combinedTypes, combinedConstants, nil
}

func resolveUses(uses []string, packages map[string]*Package) (map[string]*Package, error) {
	resolved := make(map[string]*Package, len(uses))
	for _, use := range uses {
		found, ok := packages[use]
		if !ok {
			return nil, cerrors.Newf(cerrors.ResolutionError, map[string]string{"use": use}, "unknown dependency package %q", use)
		}
		resolved[use] = found
	}
	return resolved, nil
}

// Resolve settles every constant and type in the package, given the already
// (or newly-available-this-call) resolved packages it uses.
func (u *UnresolvedPackage) Resolve(packages map[string]*Package) (*Package, error) {
	resolvedUses, err := resolveUses(u.Uses, packages)
	if err != nil {
		return nil, err
	}
	usedPackages := make([]*Package, 0, len(resolvedUses))
	for _, p := range resolvedUses {
		usedPackages = append(usedPackages, p)
	}
	availableTypes, availableConstants, err := combinePackages(usedPackages)
	if err != nil {
		return nil, err
	}

	constantDeps := resolve.Dependencies{}
	for name, expr := range u.Constants {
		constantDeps[name] = symbolic.GetConstantList(expr)
	}
	resolvedConstants, err := resolve.Fixpoint(availableConstants, u.Constants, constantDeps,
		func(name string, expr symbolic.Expression, available map[string]*types.Constant) (*types.Constant, error) {
			env := make(map[string]symbolic.Expression, len(available))
			for n, c := range available {
				env[n] = c.Expression
			}
			substituted := symbolic.Substitute(env)(expr)
			simplified, err := symbolic.Simplify(substituted)
			if err != nil {
				return nil, err
			}
			return &types.Constant{Name: name, Expression: simplified}, nil
		})
	if err != nil {
		return nil, err
	}

	allConstants := make(map[string]*types.Constant, len(availableConstants)+len(resolvedConstants))
	for n, c := range availableConstants {
		allConstants[n] = c
	}
	for n, c := range resolvedConstants {
		allConstants[n] = c
	}

	typeDeps := resolve.Dependencies{}
	for name, t := range u.Types {
		typeDeps[name] = t.TypeDependencies()
	}
	resolvedTypes, err := resolve.Fixpoint(availableTypes, u.Types, typeDeps,
		func(name string, t types.UnresolvedType, available map[string]types.ResolvedType) (types.ResolvedType, error) {
			return t.Resolve(available, allConstants, nil)
		})
	if err != nil {
		return nil, err
	}

	return &Package{
		Identifier:    u.Identifier,
		Types:         resolvedTypes,
		Constants:     resolvedConstants,
		TypeOrder:     u.TypeOrder,
		ConstantOrder: u.ConstantOrder,
		UseOrder:      u.Uses,
		Uses:          resolvedUses,
	}, nil
}
