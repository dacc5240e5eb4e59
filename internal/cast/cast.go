// Package cast provides the minimal string-to-value coercion and
// subtype-relationship utilities the construction walk needs. A richer
// coercion layer could slot in behind the same two entry points; the rest
// of the engine is written against this thin one.
package cast

import (
	"fmt"
	"reflect"
	"strconv"
)

// CastError reports a failed attempt to coerce a string to a target type.
type CastError struct {
	Value  string
	Target reflect.Type
	Reason string
}

func (e *CastError) Error() string {
	return fmt.Sprintf("cannot cast %q to %s: %s", e.Value, e.Target, e.Reason)
}

// TryCast attempts to coerce s into a value assignable to target. It
// handles the primitive kinds directly and falls back to treating target as
// already satisfied when target is string-like or the empty interface.
func TryCast(s string, target reflect.Type) (any, error) {
	if target == nil || target.Kind() == reflect.Interface && target.NumMethod() == 0 {
		return s, nil
	}

	switch target.Kind() {
	case reflect.String:
		return reflect.ValueOf(s).Convert(target).Interface(), nil
	case reflect.Bool:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil, &CastError{Value: s, Target: target, Reason: err.Error()}
		}
		return v, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, &CastError{Value: s, Target: target, Reason: err.Error()}
		}
		return reflect.ValueOf(v).Convert(target).Interface(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, &CastError{Value: s, Target: target, Reason: err.Error()}
		}
		return reflect.ValueOf(v).Convert(target).Interface(), nil
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, &CastError{Value: s, Target: target, Reason: err.Error()}
		}
		return reflect.ValueOf(v).Convert(target).Interface(), nil
	case reflect.Ptr:
		elem, err := TryCast(s, target.Elem())
		if err != nil {
			return nil, err
		}
		p := reflect.New(target.Elem())
		p.Elem().Set(reflect.ValueOf(elem))
		return p.Interface(), nil
	default:
		return nil, &CastError{Value: s, Target: target, Reason: "no coercion rule for kind " + target.Kind().String()}
	}
}

// IsSubtypeInstance reports whether v's runtime type satisfies target: it is
// assignable to target, or (when target is an interface) implements it.
func IsSubtypeInstance(v any, target reflect.Type) bool {
	if v == nil {
		return target == nil || isNilable(target)
	}
	if target == nil {
		return true
	}
	vt := reflect.TypeOf(v)
	if vt.AssignableTo(target) {
		return true
	}
	if target.Kind() == reflect.Interface {
		return vt.Implements(target)
	}
	return false
}

// IsSubtype reports whether sub satisfies target the same way
// IsSubtypeInstance does, but comparing two static types rather than a
// value against a type.
func IsSubtype(sub, target reflect.Type) bool {
	if sub == nil || target == nil {
		return sub == target
	}
	if sub.AssignableTo(target) {
		return true
	}
	if target.Kind() == reflect.Interface {
		return sub.Implements(target)
	}
	return false
}

func isNilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return true
	default:
		return false
	}
}
