// Package params implements parameter descriptors and parameter
// collection: extracting a target's parameter list either by reflecting
// on a declared struct schema or a registered function signature, or by
// synthesizing a variadic parameter list from observed sub-paths.
package params

import (
	"fmt"
	"reflect"

	"github.com/latticeforge/chz/internal/cast"
	"github.com/latticeforge/chz/internal/chzerr"
	"github.com/latticeforge/chz/internal/metafactory"
)

// Default is either a literal value or a zero-argument factory.
type Default struct {
	HasValue bool
	Value    any
	// Factory, when set, is a zero-argument target (reflect.Type or
	// FuncTarget) producing the default lazily.
	Factory any
	// Sentinel marks a typed-dict-style optional key for help rendering
	// only; Blueprint never materializes this value.
	Sentinel bool
}

// ToHelpStr renders a compact representation for the help table.
func (d *Default) ToHelpStr() string {
	if d == nil {
		return "-"
	}
	if d.Sentinel {
		return "(optional)"
	}
	if d.Factory != nil {
		return fmt.Sprintf("%v()", d.Factory)
	}
	s := fmt.Sprintf("%#v", d.Value)
	if len(s) > 40 {
		return "<default>"
	}
	return s
}

// Param is a single parameter descriptor.
type Param struct {
	Name        string
	Type        reflect.Type
	MetaFactory metafactory.MetaFactory
	Default     *Default
	Doc         string
	// Cast overrides MetaFactory.PerformCast for this specific field.
	Cast func(string) (any, error)
}

// CastValue coerces s for this parameter: a field-level cast always wins;
// otherwise casting routes through the meta-factory so it agrees with
// whatever default type that meta-factory would otherwise construct.
func (p *Param) CastValue(s string) (any, error) {
	if p.Cast != nil {
		return p.Cast(s)
	}
	if p.MetaFactory != nil {
		return p.MetaFactory.PerformCast(s, p.Type)
	}
	return cast.TryCast(s, p.Type)
}

// BuildFunc constructs a value from resolved keyword arguments, the Go
// rendering of a Thunk's callable.
type BuildFunc func(kwargs map[string]any) (any, error)

// FuncTarget pairs a Go function with the parameter names (and optional
// docs) reflection cannot recover at runtime. Go's reflect package exposes
// a function's parameter *types* but never its parameter *names*; there is
// no runtime equivalent of Python's inspect.signature() here. The fix is
// the same one applied to meta-factory subclass resolution: require
// explicit registration. Any
// factory function usable by the construction walk must be wrapped in a
// FuncTarget naming its parameters, written by hand (cmd/chzgen only
// generates struct-type registrations).
type FuncTarget struct {
	Fn    any
	Names []string
	Docs  []string
}

func defaultMetaFactory(t reflect.Type) metafactory.MetaFactory {
	return metafactory.Standard(t, nil, "")
}

// ReturnType reports the reflect.Type a target produces: itself for a
// struct/container reflect.Type, or the function's first return value for
// a FuncTarget.
func ReturnType(t any) (reflect.Type, error) {
	switch v := t.(type) {
	case reflect.Type:
		return v, nil
	case FuncTarget:
		fv := reflect.ValueOf(v.Fn)
		if fv.Kind() != reflect.Func || fv.Type().NumOut() == 0 {
			return nil, chzerr.NewConstruction("FuncTarget.Fn must be a func with at least one return value")
		}
		return fv.Type().Out(0), nil
	case func(map[string]any) (any, error), BuildFunc:
		// A pre-built thunk's result type is unknowable statically.
		return nil, nil
	default:
		return nil, chzerr.NewConstruction("%v is not a recognized construction target", t)
	}
}

// Repr renders a human-readable name for a target, used in diagnostics.
func Repr(t any) string {
	switch v := t.(type) {
	case reflect.Type:
		return v.String()
	case FuncTarget:
		return reflect.ValueOf(v.Fn).Type().String()
	case func(map[string]any) (any, error), BuildFunc:
		return "<thunk>"
	default:
		return fmt.Sprintf("%v", t)
	}
}
