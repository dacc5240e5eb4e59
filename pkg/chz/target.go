// Package chz is the public surface of the blueprint construction engine:
// a generic Blueprint[T] that layers argument bindings over a target and
// builds a fully-constructed T, or precise diagnostics when it can't.
package chz

import (
	"reflect"

	"github.com/latticeforge/chz/internal/params"
)

// Target[T] names what a Blueprint builds: either T's own struct schema
// (its exported fields become top-level parameters) or a function
// returning T (or (T, error)), whose parameters reflection alone cannot
// name. Struct is almost always what you want; Func is for constructors
// that do validation or defaulting Blueprint shouldn't reach past.
type Target[T any] struct {
	target any // reflect.Type (struct) or params.FuncTarget
	// ptrResult is set when T itself is a pointer to the struct type being
	// collected: Struct[*Model]() collects Model's fields but Make must
	// hand back a *Model, since params.Collect never produces pointers
	// itself (the optional-field pointer-unwrap convention applies to
	// fields, not to the root target).
	ptrResult bool
}

// Struct targets T's own declared field schema. T must be a struct type, or
// a pointer to one.
func Struct[T any]() Target[T] {
	var zero T
	// &zero is always a non-nil *T, so this recovers T's static type even
	// when T is itself an interface or pointer type with a nil zero value.
	t := reflect.TypeOf(&zero).Elem()
	if t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct {
		return Target[T]{target: t.Elem(), ptrResult: true}
	}
	return Target[T]{target: t}
}

// Func targets a constructor function. fn must have the shape
// func(...) T or func(...) (T, error); names must list one name per
// parameter, in order, since Go reflection cannot recover them on its own.
// docs is optional per-parameter help text, same length as names or empty.
func Func[T any](fn any, names []string, docs ...string) Target[T] {
	return Target[T]{target: params.FuncTarget{Fn: fn, Names: names, Docs: docs}}
}

func (t Target[T]) raw() any { return t.target }
