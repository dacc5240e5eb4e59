package metafactory

import (
	"reflect"

	"github.com/latticeforge/chz/internal/cast"
	"github.com/latticeforge/chz/internal/chzerr"
)

// StandardFactory is the "standard" meta-factory: the default
// auto-chosen from a parameter's static annotation when no explicit
// meta-factory override is given.
type StandardFactory struct {
	// Annotation is the parameter's static type, or nil for an explicit
	// "None"-typed parameter.
	Annotation reflect.Type
	// Unspecified overrides the annotation-derived default, if non-nil.
	Unspecified   any
	DefaultModule string
}

// Standard derives the default meta-factory for annotation the way
// get_unspecified_from_annotation does: type[T]-shaped
// parameters (reflect.Type-typed fields) are handled by the caller
// constructing a TypeSubclassFactory directly, since Go has no
// generic "type[T]" annotation to introspect.
func Standard(annotation reflect.Type, unspecified any, defaultModule string) *StandardFactory {
	return &StandardFactory{Annotation: annotation, Unspecified: unspecified, DefaultModule: defaultModule}
}

func (s *StandardFactory) computedUnspecified() any {
	if s.Unspecified != nil {
		return s.Unspecified
	}
	return unspecifiedFromAnnotation(s.Annotation)
}

// unspecifiedFromAnnotation implements get_unspecified_from_annotation:
// a pointer-to-struct (Go's Optional[U] rendering) defaults to its element
// type; a plain struct defaults to itself; a slice, array, or map is its
// own factory (the construction walk synthesizes its variadic parameters
// from observed sub-paths); an interface has no default (polymorphism is
// mandatory); nil means "None" and is satisfied trivially.
func unspecifiedFromAnnotation(annotation reflect.Type) any {
	if annotation == nil {
		return func(map[string]any) (any, error) { return nil, nil }
	}
	switch annotation.Kind() {
	case reflect.Ptr:
		if annotation.Elem().Kind() == reflect.Struct {
			return annotation.Elem()
		}
		return nil
	case reflect.Struct, reflect.Slice, reflect.Array, reflect.Map:
		return annotation
	default:
		return nil
	}
}

func (s *StandardFactory) UnspecifiedFactory() any { return s.computedUnspecified() }

// subclassBase is the type from_string should search for candidates under:
// an interface searches its whole implementor registry, a pointer-to-struct
// searches its element, a struct searches itself.
func (s *StandardFactory) subclassBase() reflect.Type {
	if s.Annotation == nil {
		return nil
	}
	switch s.Annotation.Kind() {
	case reflect.Interface:
		return s.Annotation
	case reflect.Ptr:
		if s.Annotation.Elem().Kind() == reflect.Struct {
			return s.Annotation.Elem()
		}
		return nil
	case reflect.Struct:
		return s.Annotation
	default:
		return nil
	}
}

func (s *StandardFactory) FromString(spec string) (any, error) {
	base := s.subclassBase()
	var subclassErr error
	if base != nil {
		f, err := resolveSubclassTarget(base, spec)
		if err == nil {
			return f, nil
		}
		subclassErr = err
	}
	if s.DefaultModule != "" {
		if fn, ok := Global.ResolveFunction(s.DefaultModule + ":" + spec); ok {
			return fn, nil
		}
	}
	if subclassErr != nil {
		return nil, subclassErr
	}
	return nil, chzerr.NewMetaFromString("could not produce a %s instance from %q", typeRepr(s.Annotation), spec)
}

func (s *StandardFactory) PerformCast(value string, _ reflect.Type) (any, error) {
	if s.Unspecified != nil {
		if ut, ok := s.Unspecified.(reflect.Type); ok {
			if v, err := cast.TryCast(value, ut); err == nil {
				return v, nil
			}
		}
	}
	return cast.TryCast(value, s.Annotation)
}
