package chz

import (
	"reflect"

	"github.com/latticeforge/chz/internal/metafactory"
	"github.com/latticeforge/chz/internal/params"
)

// RegisterSubclass makes a struct type constructible by name wherever a
// parameter is typed as base: a binding like `model=Transformer` resolves
// through this registration. impl must be a struct type assignable to base
// (or whose pointer is). Files generated by chzgen call this from init().
func RegisterSubclass(base reflect.Type, name string, impl reflect.Type) {
	metafactory.Global.RegisterSubclass(base, name, impl)
}

// RegisterSubclassFunc is RegisterSubclass for constructor functions: fn
// must have the shape func(...) T or func(...) (T, error) with T assignable
// to base, and names must list its parameter names in order.
func RegisterSubclassFunc(base reflect.Type, name string, fn any, paramNames []string) {
	metafactory.Global.RegisterSubclass(base, name, params.FuncTarget{Fn: fn, Names: paramNames})
}

// RegisterFunction associates a fully qualified "pkg:Fn" name with a
// constructor function, the stand-in for import-path-based "module:fn"
// factory strings.
func RegisterFunction(qualifiedName string, fn any, paramNames []string) {
	metafactory.Global.RegisterFunction(qualifiedName, params.FuncTarget{Fn: fn, Names: paramNames})
}

// RegisterLambda associates a short name with an inline zero-or-more
// argument closure so argument strings can select it as "lambda:name".
func RegisterLambda(name string, fn func(map[string]any) (any, error)) {
	metafactory.Global.RegisterLambda(name, fn)
}

// TypeOf is a convenience for registration call sites: the reflect.Type of
// T, with interfaces recovered correctly (reflect.TypeOf of an interface
// value would yield the dynamic type instead).
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// MetaFactory is the policy object mapping a parameter's static type to
// factories and casts. The standard variant is chosen automatically from
// each field's type; RegisterFieldFactory selects one of the other variants
// for a specific field.
type MetaFactory = metafactory.MetaFactory

// RegisterFieldFactory overrides the meta-factory for one field of owner
// (a struct type); fieldName is the parameter name, i.e. the `chz` tag
// value when set, the Go field name otherwise.
func RegisterFieldFactory(owner reflect.Type, fieldName string, mf MetaFactory) {
	metafactory.Global.RegisterFieldFactory(owner, fieldName, mf)
}

// SubclassFactory builds the "subclass" meta-factory: construct base (or
// defaultType, when given) unless the binding names a registered subclass.
func SubclassFactory(base reflect.Type, defaultType ...reflect.Type) MetaFactory {
	return metafactory.Subclass(base, defaultType...)
}

// FunctionFactory builds the "function" meta-factory: bindings name
// registered functions, with bare names resolved in defaultModule.
func FunctionFactory(defaultModule string) MetaFactory {
	return metafactory.Function(nil, defaultModule)
}

// UnionFactory builds the "union" meta-factory over the given alternatives.
func UnionFactory(typeArgs []reflect.Type, defaultType ...reflect.Type) MetaFactory {
	return metafactory.Union(typeArgs, defaultType...)
}

// TypeSubclassFactory builds the "type_subclass" meta-factory: the
// parameter receives the resolved reflect.Type itself, not an instance.
func TypeSubclassFactory(base reflect.Type, defaultType ...reflect.Type) MetaFactory {
	return metafactory.TypeSubclass(base, defaultType...)
}
