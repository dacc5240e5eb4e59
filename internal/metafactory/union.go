package metafactory

import (
	"reflect"

	"github.com/latticeforge/chz/internal/cast"
	"github.com/latticeforge/chz/internal/chzerr"
)

// None is the Go stand-in for Python's NoneType, used as a TypeArgs element
// to express Optional[U] (a two-element union with None) in the "union"
// meta-factory, since Go's type system has no native union/optional types.
type None struct{}

// NilType is reflect.TypeOf(None{}), the sentinel used in UnionFactory's
// TypeArgs to mark "or nothing" in an Optional[U]-style union.
var NilType = reflect.TypeOf(None{})

// UnionFactory is the "union" meta-factory: a field whose
// static type is one of several alternatives.
type UnionFactory struct {
	TypeArgs    []reflect.Type
	DefaultType reflect.Type // nil if none
}

// Union constructs a union meta-factory over typeArgs. If defaultType is
// omitted and typeArgs is exactly {U, NilType} (Optional[U]), the default
// becomes U, matching chz.factories.union's Optional-unwrapping.
func Union(typeArgs []reflect.Type, defaultType ...reflect.Type) *UnionFactory {
	u := &UnionFactory{TypeArgs: typeArgs}
	if len(defaultType) > 0 && defaultType[0] != nil {
		u.DefaultType = defaultType[0]
		return u
	}
	if len(typeArgs) == 2 && (typeArgs[0] == NilType) != (typeArgs[1] == NilType) {
		for _, t := range typeArgs {
			if t != NilType {
				u.DefaultType = t
			}
		}
	}
	return u
}

func (u *UnionFactory) UnspecifiedFactory() any {
	if u.DefaultType == nil {
		return nil
	}
	return u.DefaultType
}

func (u *UnionFactory) FromString(spec string) (any, error) {
	if u.DefaultType != nil {
		return (&SubclassFactory{Base: u.DefaultType, DefaultType: u.DefaultType}).FromString(spec)
	}
	for _, t := range u.TypeArgs {
		if t == NilType {
			continue
		}
		if t.Name() == spec {
			return (&SubclassFactory{Base: t, DefaultType: t}).FromString(spec)
		}
	}
	return nil, chzerr.NewMetaFromString("could not produce a union instance from %q", spec)
}

func (u *UnionFactory) PerformCast(value string, _ reflect.Type) (any, error) {
	var lastErr error
	for _, t := range u.TypeArgs {
		if t == NilType {
			if value == "None" || value == "" {
				return nil, nil
			}
			continue
		}
		if v, err := cast.TryCast(value, t); err == nil {
			return v, nil
		} else {
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = chzerr.NewMetaFromString("no union member accepted %q", value)
	}
	return nil, lastErr
}
