package params

import (
	"reflect"
	"strings"

	"github.com/latticeforge/chz/internal/cast"
	"github.com/latticeforge/chz/internal/chzerr"
	"github.com/latticeforge/chz/internal/metafactory"
)

// Collect dispatches on the shape of t (a declared struct/container type
// or a registered function) to produce its parameter list and the BuildFunc
// that assembles a value from resolved keyword arguments.
func Collect(t any) ([]*Param, BuildFunc, error) {
	switch v := t.(type) {
	case reflect.Type:
		if v.Kind() != reflect.Struct {
			return nil, nil, chzerr.NewConstruction("%s has no declared field schema", v)
		}
		return CollectStruct(v)
	case FuncTarget:
		return CollectFunc(v)
	case *FuncTarget:
		return CollectFunc(*v)
	case func(map[string]any) (any, error):
		// A ready-made zero-parameter thunk, e.g. a type_subclass factory
		// yielding the class itself.
		return nil, v, nil
	case BuildFunc:
		return nil, v, nil
	default:
		return nil, nil, chzerr.NewConstruction("%v (%T) is not a recognized construction target", t, t)
	}
}

// CollectStruct reflects over t's exported fields, the declared-schema
// path of parameter collection. An unexported field is not constructible
// from outside the package and is skipped.
//
// Field tags:
//
//	chz:"name"            override the parameter's path segment
//	chzdoc:"text"          help text for this parameter
//	chzdefault:"literal"   a literal default, cast via the field's own type
//	chzrequired:"true"     force required even for a pointer-typed field
//
// A pointer-typed field with neither chzdefault nor chzrequired defaults to
// nil, the Go rendering of an Optional[U] parameter defaulting to None.
func CollectStruct(t reflect.Type) ([]*Param, BuildFunc, error) {
	type fieldPlan struct {
		index int
		name  string
		def   *Default
	}
	var list []*Param
	var plans []fieldPlan

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		tag := parseFieldTag(f)
		name := tag.name
		if name == "" {
			name = f.Name
		}

		mf := defaultMetaFactory(f.Type)
		if override, ok := metafactory.Global.FieldFactory(t, name); ok {
			mf = override
		}
		p := &Param{
			Name:        name,
			Type:        f.Type,
			Doc:         tag.doc,
			MetaFactory: mf,
		}
		switch {
		case tag.hasDefault:
			v, err := cast.TryCast(tag.defaultLiteral, f.Type)
			if err != nil {
				return nil, nil, chzerr.WrapConstruction("parsing default for field "+f.Name, err)
			}
			p.Default = &Default{HasValue: true, Value: v}
		case !tag.required && f.Type.Kind() == reflect.Ptr:
			p.Default = &Default{HasValue: true, Value: reflect.Zero(f.Type).Interface()}
		}

		list = append(list, p)
		plans = append(plans, fieldPlan{index: i, name: name, def: p.Default})
	}

	build := func(kwargs map[string]any) (any, error) {
		v := reflect.New(t).Elem()
		for _, plan := range plans {
			val, ok := kwargs[plan.name]
			if !ok {
				if plan.def != nil && plan.def.HasValue {
					val = plan.def.Value
				} else {
					continue
				}
			}
			field := v.Field(plan.index)
			ft := field.Type()
			if val == nil {
				field.Set(reflect.Zero(ft))
				continue
			}
			rv := reflect.ValueOf(val)
			switch {
			case rv.Type() == ft:
			case ft.Kind() == reflect.Ptr && rv.Type() == ft.Elem():
				p := reflect.New(ft.Elem())
				p.Elem().Set(rv)
				rv = p
			case rv.Type().ConvertibleTo(ft):
				rv = rv.Convert(ft)
			}
			field.Set(rv)
		}
		return v.Interface(), nil
	}
	return list, build, nil
}

// CollectFunc builds the parameter list and BuildFunc for a registered
// FuncTarget. The callable may return either a single value or (value,
// error); any non-nil error becomes a ConstructionError.
func CollectFunc(ft FuncTarget) ([]*Param, BuildFunc, error) {
	fv := reflect.ValueOf(ft.Fn)
	if fv.Kind() != reflect.Func {
		return nil, nil, chzerr.NewConstruction("FuncTarget.Fn must be a func, got %T", ft.Fn)
	}
	fnType := fv.Type()
	if fnType.IsVariadic() {
		return nil, nil, chzerr.NewConstruction("cannot collect parameters from a variadic function")
	}
	if len(ft.Names) != fnType.NumIn() {
		return nil, nil, chzerr.NewConstruction(
			"FuncTarget has %d parameter name(s) for a function taking %d", len(ft.Names), fnType.NumIn())
	}
	switch fnType.NumOut() {
	case 1, 2:
	default:
		return nil, nil, chzerr.NewConstruction(
			"factory function must return (T) or (T, error), got %d results", fnType.NumOut())
	}

	var list []*Param
	for i := 0; i < fnType.NumIn(); i++ {
		pt := fnType.In(i)
		doc := ""
		if i < len(ft.Docs) {
			doc = ft.Docs[i]
		}
		list = append(list, &Param{Name: ft.Names[i], Type: pt, Doc: doc, MetaFactory: defaultMetaFactory(pt)})
	}

	build := func(kwargs map[string]any) (any, error) {
		args := make([]reflect.Value, fnType.NumIn())
		for i, name := range ft.Names {
			pt := fnType.In(i)
			val, ok := kwargs[name]
			if !ok || val == nil {
				args[i] = reflect.Zero(pt)
				continue
			}
			rv := reflect.ValueOf(val)
			if rv.Type() != pt && rv.Type().ConvertibleTo(pt) {
				rv = rv.Convert(pt)
			}
			args[i] = rv
		}
		out := fv.Call(args)
		if len(out) == 2 {
			if errVal := out[1]; !errVal.IsNil() {
				return nil, chzerr.WrapConstruction("constructing "+Repr(ft), errVal.Interface().(error))
			}
		}
		return out[0].Interface(), nil
	}
	return list, build, nil
}

type fieldTag struct {
	name           string
	doc            string
	hasDefault     bool
	defaultLiteral string
	required       bool
}

// parseFieldTag reads the `chz`, `chzdoc`, `chzdefault`, and `chzrequired`
// struct tags off f.
func parseFieldTag(f reflect.StructField) fieldTag {
	var ft fieldTag
	ft.name = f.Tag.Get("chz")
	ft.doc = f.Tag.Get("chzdoc")
	if lit, ok := f.Tag.Lookup("chzdefault"); ok {
		ft.hasDefault = true
		ft.defaultLiteral = lit
	}
	if req, ok := f.Tag.Lookup("chzrequired"); ok && strings.EqualFold(req, "true") {
		ft.required = true
	}
	return ft
}
