package metafactory

import (
	"reflect"

	"github.com/latticeforge/chz/internal/cast"
	"github.com/latticeforge/chz/internal/chzerr"
)

// TypeSubclassFactory is the "type_subclass" meta-factory: the
// parameter wants a *type* (a reflect.Type value), not an instance of it.
// UnspecifiedFactory and FromString both produce a zero-argument factory
// that yields the resolved reflect.Type itself.
type TypeSubclassFactory struct {
	Base        reflect.Type
	DefaultType reflect.Type
}

func TypeSubclass(base reflect.Type, defaultType ...reflect.Type) *TypeSubclassFactory {
	d := base
	if len(defaultType) > 0 && defaultType[0] != nil {
		d = defaultType[0]
	}
	return &TypeSubclassFactory{Base: base, DefaultType: d}
}

func (t *TypeSubclassFactory) UnspecifiedFactory() any {
	def := t.DefaultType
	return func(map[string]any) (any, error) { return def, nil }
}

func (t *TypeSubclassFactory) FromString(spec string) (any, error) {
	resolved, err := resolveSubclassTarget(t.Base, spec)
	if err != nil {
		return nil, err
	}
	typ, ok := resolved.(reflect.Type)
	if !ok {
		return nil, chzerr.NewMetaFromString(
			"subclass %q registered against %s is not a plain type; type_subclass requires a "+
				"reflect.Type registration", spec, typeRepr(t.Base))
	}
	return func(map[string]any) (any, error) { return typ, nil }, nil
}

func (t *TypeSubclassFactory) PerformCast(value string, defaultTarget reflect.Type) (any, error) {
	if t.DefaultType != nil {
		if v, err := cast.TryCast(value, reflect.PointerTo(t.DefaultType)); err == nil {
			return v, nil
		}
	}
	return cast.TryCast(value, reflect.PointerTo(t.Base))
}
