package hdlpkg

import (
	"sort"

	"slvcodec/internal/types"
)

// Generic is an entity generic parameter as parsed: a free name with a
// declared scalar type (e.g. "integer") and an optional default.
type Generic struct {
	Name    string
	Typ     string
	Default *int64
}

// StrExpression renders a Generic the way it appears inside another
// expression: its bare name.
func (g Generic) StrExpression() string { return g.Name }

// PortDirection is a port's declared signal direction.
type PortDirection string

const (
	DirectionIn     PortDirection = "in"
	DirectionOut    PortDirection = "out"
	DirectionInout  PortDirection = "inout"
	DirectionBuffer PortDirection = "buffer"
)

// UnresolvedPort is a port as parsed: its subtype may still be a bare name
// (to be looked up among available types) or an inline unresolved type.
type UnresolvedPort struct {
	Name              string
	Direction         PortDirection
	TypeIdentifier    string // used when Typ is nil
	Typ               types.UnresolvedType
}

// Port is a port with its subtype resolved.
type Port struct {
	Name      string
	Direction PortDirection
	Typ       types.ResolvedType
}

// UnresolvedEntity is an entity as parsed: its generics are already concrete
// declarations, but its ports' subtypes may reference names from its used
// packages or from its own generics.
//
// GenericOrder/PortOrder record declaration order the same way
// UnresolvedPackage.TypeOrder does, and are carried through to Entity
// unchanged.
type UnresolvedEntity struct {
	Identifier   string
	Generics     map[string]Generic
	Ports        map[string]UnresolvedPort
	GenericOrder []string
	PortOrder    []string
	Uses         []string
}

// Entity is an entity with every port's subtype resolved (though a subtype
// may still carry a width expression that references a generic, settled only
// at ToSLV/FromSLV call time via the generics map those methods take).
type Entity struct {
	Identifier   string
	Generics     map[string]Generic
	Ports        map[string]Port
	GenericOrder []string
	PortOrder    []string
	Uses         map[string]*Package
}

// OrderedPortNames returns e.PortOrder, falling back to a sorted name list.
func (e *Entity) OrderedPortNames() []string {
	if len(e.PortOrder) > 0 {
		return e.PortOrder
	}
	names := make([]string, 0, len(e.Ports))
	for n := range e.Ports {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve settles every port's subtype, merging the entity's own generics
// into the available-constants environment first (entity.py's
// exclusive_dict_merge(available_constants, self.generics)) so that a port's
// width expression may reference either a package constant or one of this
// entity's own generics.
func (u *UnresolvedEntity) Resolve(packages map[string]*Package) (*Entity, error) {
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

	alsoKnown := make(map[string]bool, len(u.Generics))
	for name := range u.Generics {
		alsoKnown[name] = true
	}

	resolvedPorts := make(map[string]Port, len(u.Ports))
	for name, port := range u.Ports {
		var resolvedTyp types.ResolvedType
		if port.Typ != nil {
			resolvedTyp, err = port.Typ.Resolve(availableTypes, availableConstants, alsoKnown)
			if err != nil {
				return nil, err
			}
		} else {
			found, ok := availableTypes[port.TypeIdentifier]
			if !ok {
				return nil, newPortResolutionError(name, port.TypeIdentifier)
			}
			resolvedTyp = found
		}
		resolvedPorts[name] = Port{Name: port.Name, Direction: port.Direction, Typ: resolvedTyp}
	}

	return &Entity{
		Identifier:   u.Identifier,
		Generics:     u.Generics,
		Ports:        resolvedPorts,
		GenericOrder: u.GenericOrder,
		PortOrder:    u.PortOrder,
		Uses:         resolvedUses,
	}, nil
}
