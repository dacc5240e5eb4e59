package chz

import (
	"fmt"
	"reflect"

	"github.com/latticeforge/chz/internal/argmap"
	"github.com/latticeforge/chz/internal/chzconfig"
	"github.com/latticeforge/chz/internal/chzerr"
	"github.com/latticeforge/chz/internal/entrypoint"
	"github.com/latticeforge/chz/internal/params"
	"github.com/latticeforge/chz/internal/walk"
)

// Blueprint[T] accumulates layered argument bindings over a Target[T] and
// builds a T from them. A Blueprint is immutable: every
// mutating method returns a new one, leaving the receiver untouched, so a
// single Blueprint can safely serve as a shared base for several Apply
// calls in the same goroutine
// model: a Blueprint itself is not meant to be shared across goroutines
// mid-construction).
type Blueprint[T any] struct {
	target Target[T]
	argMap *argmap.ArgumentMap
}

// New creates an empty Blueprint for target.
func New[T any](target Target[T]) *Blueprint[T] {
	return &Blueprint[T]{target: target, argMap: argmap.New()}
}

func (b *Blueprint[T]) shallowCopy() *Blueprint[T] {
	nb := &Blueprint[T]{target: b.target, argMap: argmap.New()}
	for _, l := range b.argMap.Layers() {
		nb.argMap.AddLayer(l)
	}
	return nb
}

// Apply layers values on top of the current bindings and returns a new
// Blueprint; the receiver is untouched. values may be a map[string]any
// (an ordinary set of bindings), a *Blueprint[T] (whose entire layer stack
// is spliced in, the mechanism Clone is built from), or nil (a no-op layer,
// useful for conditionally skipping a layer without branching on error).
func (b *Blueprint[T]) Apply(values any, layerName ...string) (*Blueprint[T], error) {
	name := "layer"
	if len(layerName) > 0 {
		name = layerName[0]
	}
	nb := b.shallowCopy()
	switch v := values.(type) {
	case nil:
	case map[string]any:
		nb.argMap.AddLayer(argmap.NewLayer(v, name))
	case *argmap.Layer:
		nb.argMap.AddLayer(v)
	case *Blueprint[T]:
		for _, l := range v.argMap.Layers() {
			nb.argMap.AddLayer(l)
		}
	default:
		return nil, chzerr.NewConstruction("Apply: unsupported values type %T", values)
	}
	return nb, nil
}

// ApplyFromArgv parses argv as a sequence of "key=value" / "key@=path" /
// "key~=name" tokens and layers the result on top of the current
// bindings.
func (b *Blueprint[T]) ApplyFromArgv(argv []string, allowHyphens bool, layerName ...string) (*Blueprint[T], error) {
	name := "argv"
	if len(layerName) > 0 {
		name = layerName[0]
	}
	layer, err := entrypoint.ParseArgv(argv, allowHyphens, name)
	if err != nil {
		return nil, err
	}
	return b.Apply(layer)
}

// Clone returns a deep-enough copy of b: the argument map's layers are
// shared (they are immutable once built) but the layer stack itself is
// independent, so appending to the clone never affects b. It is
// implemented, per the source system, as a special case of Apply.
func (b *Blueprint[T]) Clone() *Blueprint[T] {
	nb, _ := New[T](b.target).Apply(b)
	return nb
}

// Make runs the construction walk and evaluates the resulting graph into a
// T, or returns one of the typed errors in errors.go.
func (b *Blueprint[T]) Make() (T, error) {
	var zero T
	trace := ""
	if chzconfig.IsDebug {
		trace = chzconfig.NewTraceID()
	}

	result, err := walk.Construct(b.target.raw(), b.argMap, params.Repr(b.target.raw()))
	if err != nil {
		if trace != "" {
			err = fmt.Errorf("[trace %s] %w", trace, err)
		}
		return zero, err
	}

	if b.target.ptrResult {
		rv := reflect.ValueOf(result)
		p := reflect.New(rv.Type())
		p.Elem().Set(rv)
		out, ok := p.Interface().(T)
		if !ok {
			return zero, chzerr.NewConstruction("constructed *%T does not satisfy the requested type", result)
		}
		return out, nil
	}

	out, ok := result.(T)
	if !ok {
		return zero, chzerr.NewConstruction("constructed value has type %T, want a different type", result)
	}
	return out, nil
}

// MakeFromArgv is ApplyFromArgv followed by Make, except that a bare
// "--help" anywhere in argv short-circuits construction and returns
// *EntrypointHelpException carrying GetHelp()'s rendered text.
func (b *Blueprint[T]) MakeFromArgv(argv []string, allowHyphens bool) (T, error) {
	var zero T
	nb, err := b.ApplyFromArgv(argv, allowHyphens)
	if err != nil {
		return zero, err
	}
	// Help renders against the applied arguments, so polymorphic
	// selections made on the same command line show their parameters.
	if entrypoint.IsHelp(argv) {
		return zero, &chzerr.EntrypointHelpException{HelpText: nb.GetHelp()}
	}
	return nb.Make()
}
