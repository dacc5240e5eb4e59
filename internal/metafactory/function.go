package metafactory

import (
	"reflect"
	"strings"

	"github.com/latticeforge/chz/internal/cast"
	"github.com/latticeforge/chz/internal/chzerr"
)

// FunctionFactory is the "function" meta-factory: any function
// can serve as a factory, not just constructors of the target's own type.
type FunctionFactory struct {
	// Unspecified is the default factory: a params.FuncTarget (when its
	// parameters need collecting), a func(map[string]any) (any, error)
	// (called with no arguments), or nil for no default.
	Unspecified   any
	DefaultModule string
}

// Function constructs a function meta-factory. defaultModule is the
// registry namespace bare names (no "module:" prefix) are resolved in.
func Function(unspecified any, defaultModule string) *FunctionFactory {
	return &FunctionFactory{Unspecified: unspecified, DefaultModule: defaultModule}
}

func (f *FunctionFactory) UnspecifiedFactory() any { return f.Unspecified }

// FromString resolves "module:fn" against the function registry, or "fn"
// within DefaultModule; "lambda:name" resolves a pre-registered closure,
// the Go stand-in for chz's inline "lambda: expr" strings (no runtime eval).
func (f *FunctionFactory) FromString(spec string) (any, error) {
	if i := strings.IndexByte(spec, ':'); i >= 0 {
		module, name := spec[:i], spec[i+1:]
		if module == "lambda" || strings.HasPrefix(module, "lambda ") {
			if fn, ok := Global.ResolveLambda(name); ok {
				return fn, nil
			}
			return nil, chzerr.NewMetaFromString("no lambda registered named %q", name)
		}
		if fn, ok := Global.ResolveFunction(module + ":" + name); ok {
			return fn, nil
		}
		return nil, chzerr.NewMetaFromString("no function registered for %q", spec)
	}
	if f.DefaultModule == "" {
		return nil, chzerr.NewMetaFromString("no module specified in %q and no default module specified", spec)
	}
	if fn, ok := Global.ResolveFunction(f.DefaultModule + ":" + spec); ok {
		return fn, nil
	}
	return nil, chzerr.NewMetaFromString("no function named %q in module %q", spec, f.DefaultModule)
}

func (f *FunctionFactory) PerformCast(value string, defaultTarget reflect.Type) (any, error) {
	return cast.TryCast(value, defaultTarget)
}
