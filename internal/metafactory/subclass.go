package metafactory

import (
	"github.com/latticeforge/chz/internal/cast"
	"github.com/latticeforge/chz/internal/chzerr"
	"reflect"
)

// SubclassFactory is the "subclass" meta-factory: a field typed
// Base is constructed by instantiating Base itself (DefaultType) unless the
// user names a registered subclass. A "factory" produced by this package is
// either a reflect.Type (construct by reflecting on its exported fields, see
// internal/params) or a Go func (construct by calling it with its reflected
// parameters); uniformly a "target" the construction walk can recurse into.
type SubclassFactory struct {
	Base        reflect.Type
	DefaultType reflect.Type
}

// Subclass constructs a subclass meta-factory. defaultType defaults to base
// when omitted, matching chz.factories.subclass(base_cls, default_cls=None).
func Subclass(base reflect.Type, defaultType ...reflect.Type) *SubclassFactory {
	d := base
	if len(defaultType) > 0 && defaultType[0] != nil {
		d = defaultType[0]
	}
	return &SubclassFactory{Base: base, DefaultType: d}
}

func (s *SubclassFactory) UnspecifiedFactory() any {
	if s.DefaultType == nil {
		return nil
	}
	return s.DefaultType
}

// FromString resolves "module:Name" (registry key, Go has no runtime
// `importlib`) or a bare "Name[generic]" looked up in the subclass registry
// rooted at Base.
func (s *SubclassFactory) FromString(spec string) (any, error) {
	return resolveSubclassTarget(s.Base, spec)
}

func resolveSubclassTarget(base reflect.Type, spec string) (any, error) {
	if f, ok := Global.ResolveSubclass(base, spec); ok {
		return f, nil
	}

	module, name, generic, ok := splitSpec(spec)
	if !ok {
		return nil, chzerr.NewMetaFromString("failed to parse %q as a class name", spec)
	}
	if module != "" {
		qualified := module + ":" + name
		if generic != "" {
			qualified = module + ":" + name + "[" + generic + "]"
		}
		if f, ok := Global.ResolveSubclass(base, qualified); ok {
			return f, nil
		}
		return nil, chzerr.NewMetaFromString(
			"no subclass of %s registered for %q (module-qualified names must be registered "+
				"via metafactory.RegisterSubclass; Go has no runtime import)", typeRepr(base), spec)
	}
	if !isIdentifier(name) {
		return nil, chzerr.NewMetaFromString("no subclass of %s named %q (invalid identifier)", typeRepr(base), name)
	}
	if generic != "" {
		return nil, chzerr.NewMetaFromString(
			"generic variant %q of %s is not registered; register the instantiated variant "+
				"explicitly via metafactory.RegisterSubclass(base, %q, ...)", spec, typeRepr(base), spec)
	}
	return nil, chzerr.NewMetaFromString(
		"no subclass of %s named %q; try a fully qualified name e.g. module_name:%s, or register "+
			"it via metafactory.RegisterSubclass (cmd/chzgen can generate this)", typeRepr(base), name, name)
}

func (s *SubclassFactory) PerformCast(value string, _ reflect.Type) (any, error) {
	if s.DefaultType != nil {
		if v, err := cast.TryCast(value, s.DefaultType); err == nil {
			return v, nil
		}
	}
	return cast.TryCast(value, s.Base)
}
