package params

import (
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/latticeforge/chz/internal/chzerr"
)

// CollectVariadic synthesizes a parameter list for a built-in container
// type from the sub-paths actually observed under path in the argument
// map: the fallback tried when a target has no declared field schema (it
// is not a struct) but its static type is a slice, array, or string-keyed
// map.
//
// Go has no heterogeneous tuple type and no typed-dictionary type distinct
// from an ordinary struct: a fixed-width heterogeneous product is already
// expressed as a Go struct and goes through CollectStruct, and an
// optional-keyed dictionary is a Go struct whose optional keys are
// pointer-typed fields. This function covers only the genuinely variadic,
// homogeneous-element container kinds: Slice, Array, and Map.
//
// Returns (nil, nil, nil, nil) when t's kind is not variadic-capable; the
// caller (the construction walk) treats that the same as any other
// collection failure and falls through to its next fallback.
func CollectVariadic(t reflect.Type, subpaths []string) ([]*Param, BuildFunc, []reflect.Type, error) {
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return collectSequence(t, subpaths)
	case reflect.Map:
		return collectMapping(t, subpaths)
	default:
		return nil, nil, nil, nil
	}
}

func collectSequence(t reflect.Type, subpaths []string) ([]*Param, BuildFunc, []reflect.Type, error) {
	elemType := t.Elem()
	maxIdx := -1
	for _, sp := range subpaths {
		seg := firstSegment(sp)
		n, err := strconv.Atoi(seg)
		if err != nil || n < 0 {
			continue
		}
		if n > maxIdx {
			maxIdx = n
		}
	}
	if t.Kind() == reflect.Array && maxIdx >= t.Len() {
		return nil, nil, nil, chzerr.NewConstruction(
			"index %d is out of range for %s (length %d)", maxIdx, t, t.Len())
	}
	n := maxIdx + 1

	var list []*Param
	for i := 0; i < n; i++ {
		list = append(list, &Param{
			Name:        strconv.Itoa(i),
			Type:        elemType,
			MetaFactory: defaultMetaFactory(elemType),
		})
	}

	build := func(kwargs map[string]any) (any, error) {
		var sl reflect.Value
		if t.Kind() == reflect.Array {
			sl = reflect.New(t).Elem()
		} else {
			sl = reflect.MakeSlice(t, n, n)
		}
		for i := 0; i < n; i++ {
			val, ok := kwargs[strconv.Itoa(i)]
			if !ok || val == nil {
				continue
			}
			rv := reflect.ValueOf(val)
			if rv.Type() != elemType && rv.Type().ConvertibleTo(elemType) {
				rv = rv.Convert(elemType)
			}
			sl.Index(i).Set(rv)
		}
		return sl.Interface(), nil
	}
	return list, build, []reflect.Type{elemType}, nil
}

func collectMapping(t reflect.Type, subpaths []string) ([]*Param, BuildFunc, []reflect.Type, error) {
	if t.Key().Kind() != reflect.String {
		if len(subpaths) > 0 {
			return nil, nil, nil, chzerr.NewConstruction(
				"cannot synthesize keyed parameters for %s: map keys must be strings", t)
		}
		return nil, nil, nil, nil
	}
	elemType := t.Elem()

	seen := map[string]bool{}
	var keys []string
	for _, sp := range subpaths {
		seg := firstSegment(sp)
		if seg == "" || seen[seg] {
			continue
		}
		seen[seg] = true
		keys = append(keys, seg)
	}
	sort.Strings(keys)

	var list []*Param
	for _, k := range keys {
		list = append(list, &Param{Name: k, Type: elemType, MetaFactory: defaultMetaFactory(elemType)})
	}

	build := func(kwargs map[string]any) (any, error) {
		m := reflect.MakeMapWithSize(t, len(keys))
		for _, k := range keys {
			val, ok := kwargs[k]
			if !ok || val == nil {
				continue
			}
			rv := reflect.ValueOf(val)
			if rv.Type() != elemType && rv.Type().ConvertibleTo(elemType) {
				rv = rv.Convert(elemType)
			}
			m.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), rv)
		}
		return m.Interface(), nil
	}
	return list, build, []reflect.Type{elemType}, nil
}

// firstSegment returns the leading path component of a sub-path produced by
// argmap.Subpaths, which is always prefixed with "." (e.g. ".2.name" ->
// "2").
func firstSegment(subpath string) string {
	s := strings.TrimPrefix(subpath, ".")
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i]
	}
	return s
}
