package resolve

import (
	"testing"

	cerrors "slvcodec/internal/errors"
)

func TestFixpointResolvesInDependencyOrder(t *testing.T) {
	unresolved := map[string]int{
		"a": 1,
		"b": 2,
		"c": 3,
	}
	deps := Dependencies{
		"a": nil,
		"b": {"a"},
		"c": {"a", "b"},
	}
	var order []string
	resolved, err := Fixpoint(map[string]int{}, unresolved, deps, func(name string, item int, available map[string]int) (int, error) {
		order = append(order, name)
		sum := item
		for _, d := range deps[name] {
			sum += available[d]
		}
		return sum, nil
	})
	if err != nil {
		t.Fatalf("Fixpoint: %v", err)
	}
	if resolved["a"] != 1 || resolved["b"] != 3 || resolved["c"] != 7 {
		t.Fatalf("got %v, want a=1 b=3 c=7", resolved)
	}
	if order[0] != "a" {
		t.Fatalf("expected a to resolve first, got order %v", order)
	}
}

func TestFixpointUsesPreseededAvailable(t *testing.T) {
	available := map[string]int{"base": 10}
	unresolved := map[string]int{"derived": 5}
	deps := Dependencies{"derived": {"base"}}
	resolved, err := Fixpoint(available, unresolved, deps, func(name string, item int, available map[string]int) (int, error) {
		return item + available["base"], nil
	})
	if err != nil {
		t.Fatalf("Fixpoint: %v", err)
	}
	if resolved["derived"] != 15 {
		t.Fatalf("got %d, want 15", resolved["derived"])
	}
}

func TestFixpointFailsOnCircularDependency(t *testing.T) {
	unresolved := map[string]int{"a": 1, "b": 2}
	deps := Dependencies{"a": {"b"}, "b": {"a"}}
	_, err := Fixpoint(map[string]int{}, unresolved, deps, func(name string, item int, available map[string]int) (int, error) {
		return item, nil
	})
	if err == nil {
		t.Fatalf("expected an error for a circular dependency")
	}
	if !cerrors.Is(err, cerrors.UnresolvedDependencies) {
		t.Fatalf("got %v, want an UnresolvedDependencies error", err)
	}
}

func TestFixpointFailsOnMissingDependency(t *testing.T) {
	unresolved := map[string]int{"a": 1}
	deps := Dependencies{"a": {"ghost"}}
	_, err := Fixpoint(map[string]int{}, unresolved, deps, func(name string, item int, available map[string]int) (int, error) {
		return item, nil
	})
	if !cerrors.Is(err, cerrors.UnresolvedDependencies) {
		t.Fatalf("got %v, want an UnresolvedDependencies error", err)
	}
}
