// Package resolve implements the dependency fix-point used to turn a batch
// of unresolved, possibly-interdependent items (package constants, package
// types, a universe of packages) into their resolved counterparts: repeatedly
// resolve whatever item currently has every dependency already available,
// until either everything resolves or a full pass makes no progress.
package resolve

import (
	"sort"
	"strings"

	cerrors "slvcodec/internal/errors"
)

// Dependencies reports, by name, the set of other unresolved names that a
// given item depends on.
type Dependencies map[string][]string

// Fixpoint resolves every item in unresolved by repeatedly calling resolveFn
// on whichever items have all of their dependencies already present in
// available (pre-seeded) or already resolved this call. It returns the
// resolved items keyed by name, or an UnresolvedDependencies error naming the
// items that could never become resolvable (a circular or missing
// dependency), mirroring package.py's resolve_dependencies.
func Fixpoint[T any, R any](
	available map[string]R,
	unresolved map[string]T,
	dependencies Dependencies,
	resolveFn func(name string, item T, available map[string]R) (R, error),
) (map[string]R, error) {
	updatedAvailable := make(map[string]R, len(available)+len(unresolved))
	for k, v := range available {
		updatedAvailable[k] = v
	}

	pending := make(map[string]bool, len(unresolved))
	for name := range unresolved {
		pending[name] = true
	}

	resolved := make(map[string]R, len(unresolved))

	for len(pending) > 0 {
		anyResolved := false
		for name := range pending {
			deps := dependencies[name]
			if !allAvailable(deps, updatedAvailable) {
				continue
			}
			item := unresolved[name]
			resolvedItem, err := resolveFn(name, item, updatedAvailable)
			if err != nil {
				return nil, err
			}
			resolved[name] = resolvedItem
			updatedAvailable[name] = resolvedItem
			delete(pending, name)
			anyResolved = true
		}
		if !anyResolved {
			names := make([]string, 0, len(pending))
			for name := range pending {
				names = append(names, name)
			}
			sort.Strings(names)
			return nil, cerrors.Newf(cerrors.UnresolvedDependencies,
				map[string]string{"names": strings.Join(names, ", ")},
				"failed to resolve: %s", strings.Join(names, ", "))
		}
	}
	return resolved, nil
}

func allAvailable[R any](deps []string, available map[string]R) bool {
	for _, d := range deps {
		if _, ok := available[d]; !ok {
			return false
		}
	}
	return true
}
