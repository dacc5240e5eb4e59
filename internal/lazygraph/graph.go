// Package lazygraph implements the lazy evaluation DAG:
// three-variant evaluable nodes, a memoizing depth-first evaluator, and
// reference-target validation.
package lazygraph

import (
	"fmt"
	"sort"

	"github.com/latticeforge/chz/internal/chzerr"
	"github.com/latticeforge/chz/internal/diag"
)

// Evaluable is exactly one of Value, ParamRef, or Thunk.
type Evaluable interface {
	isEvaluable()
}

// Value is a fully reduced evaluable.
type Value struct{ V any }

func (Value) isEvaluable() {}

// ParamRef is an indirection to another entry of the value mapping.
type ParamRef struct{ Ref string }

func (ParamRef) isEvaluable() {}

// Thunk is a deferred call: fn, invoked with each kwarg looked up by path.
// Fn receives the resolved keyword arguments and returns the constructed
// value, or an error if construction failed, since Go constructors return
// errors instead of raising.
type Thunk struct {
	Fn     func(kwargs map[string]any) (any, error)
	Kwargs map[string]ParamRef
	// Repr is a human-readable name for Fn, used in error messages.
	Repr string
}

func (Thunk) isEvaluable() {}

// ValueMapping maps parameter path to evaluable; always contains the empty
// key (the root thunk).
type ValueMapping map[string]Evaluable

// Evaluate runs the memoizing depth-first walk rooted at path "".
// Memoization is in-place: after a ParamRef is dereferenced, its
// slot is overwritten with Value(result), so a later dereference of it is
// O(1). Thunk slots are not overwritten: a second Evaluate of the same
// mapping calls every thunk again.
func Evaluate(vm ValueMapping) (any, error) {
	if _, ok := vm[""]; !ok {
		return nil, chzerr.NewConstruction("value mapping has no root entry")
	}
	inProgress := map[string]bool{}
	return evalRef(vm, "", inProgress)
}

func evalRef(vm ValueMapping, ref string, inProgress map[string]bool) (any, error) {
	node, ok := vm[ref]
	if !ok {
		return nil, chzerr.NewConstruction("no such parameter path %q", ref)
	}

	switch n := node.(type) {
	case Value:
		return n.V, nil

	case ParamRef:
		if inProgress[ref] {
			return nil, chzerr.NewConstruction("cycle detected while dereferencing %q", ref)
		}
		inProgress[ref] = true
		v, err := evalRef(vm, n.Ref, inProgress)
		inProgress[ref] = false
		if err != nil {
			return nil, fmt.Errorf("%w (when dereferencing %q)", err, ref)
		}
		vm[ref] = Value{V: v}
		return v, nil

	case Thunk:
		if inProgress[ref] {
			return nil, chzerr.NewConstruction("cycle detected while evaluating %q", ref)
		}
		inProgress[ref] = true
		kwargs := make(map[string]any, len(n.Kwargs))
		for name, pr := range n.Kwargs {
			v, err := evalRef(vm, pr.Ref, inProgress)
			if err != nil {
				inProgress[ref] = false
				return nil, fmt.Errorf("%w (when evaluating argument %q for %s)", err, name, n.Repr)
			}
			kwargs[name] = v
		}
		inProgress[ref] = false
		result, err := n.Fn(kwargs)
		if err != nil {
			return nil, chzerr.WrapConstruction(fmt.Sprintf("constructing %s", n.Repr), err)
		}
		return result, nil

	default:
		return nil, chzerr.NewConstruction("unrecognized evaluable at %q", ref)
	}
}

// CheckReferenceTargets walks the value mapping once; any ParamRef whose
// target is not in paramPaths is reported as InvalidBlueprintArg with
// typo/nesting suggestions.
func CheckReferenceTargets(vm ValueMapping, paramPaths map[string]bool) error {
	paths := make([]string, 0, len(paramPaths))
	for p := range paramPaths {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	// Iterate in a stable order so error reporting is deterministic.
	refs := make([]string, 0, len(vm))
	for k := range vm {
		refs = append(refs, k)
	}
	sort.Strings(refs)

	for _, paramPath := range refs {
		pr, ok := vm[paramPath].(ParamRef)
		if !ok {
			continue
		}
		if paramPaths[pr.Ref] {
			continue
		}
		extra := diag.BestMatch(pr.Ref, paths)
		extra += diag.NestingHint(pr.Ref, paths)
		return &chzerr.InvalidBlueprintArg{
			Message: fmt.Sprintf("Invalid reference target %q for %s", pr.Ref, paramPath) + extra,
		}
	}
	return nil
}
