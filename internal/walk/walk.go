// Package walk implements the construction walk: the depth-first
// traversal that, given a root target and a populated argument map,
// produces the lazy evaluation graph internal/lazygraph evaluates into a
// constructed value, plus the diagnostic side channels the audits and the
// help renderer read.
package walk

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/latticeforge/chz/internal/argmap"
	"github.com/latticeforge/chz/internal/cast"
	"github.com/latticeforge/chz/internal/chzerr"
	"github.com/latticeforge/chz/internal/lazygraph"
	"github.com/latticeforge/chz/internal/params"
)

// maxDepth bounds target recursion. Self-referential struct types probe
// into themselves one level per field; without bound arguments that descent
// never consumes anything and would otherwise run until the stack dies.
const maxDepth = 64

// emptyVariadicSentinel is the path segment probed by the
// variadic-default-wildcard audit. It only needs to be a segment no user
// would write, so that only wildcard keys can match it.
const emptyVariadicSentinel = "__chz_empty_variadic"

// Result carries the value mapping a walk produced together with its
// diagnostic side channels: every parameter discovered (in discovery
// order), every (key, layer) pair consulted, the factories chosen by
// unspecified-factory fallback, and the required-but-unbound paths.
type Result struct {
	VM               lazygraph.ValueMapping
	AllParams        map[string]*params.Param
	ParamOrder       []string
	Used             map[argmap.UsedKey]bool
	MetaFactoryValue map[string]string
	Missing          []string
}

// ParamPaths returns the discovered parameter set keyed for the audits.
func (r *Result) ParamPaths() map[string]bool {
	set := make(map[string]bool, len(r.AllParams))
	for p := range r.AllParams {
		set[p] = true
	}
	return set
}

// diagnostics is the write-only side-channel bundle threaded through the
// walk. Tentative sub-walks (unspecified-factory probes) own a private
// bundle and merge it into the parent afterwards; missing is the one
// channel merged conditionally, per the commit rules in resolveUnbound.
type diagnostics struct {
	allParams   map[string]*params.Param
	order       []string
	used        map[argmap.UsedKey]bool
	metaFactory map[string]string
	missing     []string
}

func newDiagnostics() *diagnostics {
	return &diagnostics{
		allParams:   map[string]*params.Param{},
		used:        map[argmap.UsedKey]bool{},
		metaFactory: map[string]string{},
	}
}

func (d *diagnostics) recordParam(path string, p *params.Param) {
	if _, ok := d.allParams[path]; !ok {
		d.order = append(d.order, path)
	}
	d.allParams[path] = p
}

// absorb merges everything except missing, which the caller decides about.
func (d *diagnostics) absorb(sub *diagnostics) {
	for _, path := range sub.order {
		d.recordParam(path, sub.allParams[path])
	}
	for k := range sub.used {
		d.used[k] = true
	}
	for k, v := range sub.metaFactory {
		d.metaFactory[k] = v
	}
}

// collectFailure wraps a ConstructionError produced while collecting the
// immediate target's parameters. An unspecified-factory probe is allowed to
// swallow exactly this failure and fall back to the parameter's default;
// every deeper failure propagates. Explicit-factory recursion sites unwrap
// it so callers see the underlying error.
type collectFailure struct{ err error }

func (c *collectFailure) Error() string { return c.err.Error() }
func (c *collectFailure) Unwrap() error { return c.err }

func unwrapCollect(err error) error {
	var cf *collectFailure
	if errors.As(err, &cf) {
		return cf.err
	}
	return err
}

// MakeLazy runs the walk without any auditing: the help renderer wants the
// side channels even when the bindings would not survive Make's checks.
func MakeLazy(target any, am *argmap.ArgumentMap) (*Result, error) {
	d := newDiagnostics()
	vm, err := constructTarget(target, "", am, d, 0)
	if err != nil {
		return nil, unwrapCollect(err)
	}
	return &Result{
		VM:               vm,
		AllParams:        d.allParams,
		ParamOrder:       d.order,
		Used:             d.used,
		MetaFactoryValue: d.metaFactory,
		Missing:          d.missing,
	}, nil
}

// Walk is MakeLazy followed by the audits: extraneity first (so typos
// never masquerade as missing arguments), then reference-target validity,
// then missingness.
func Walk(target any, am *argmap.ArgumentMap, targetRepr string) (*Result, error) {
	r, err := MakeLazy(target, am)
	if err != nil {
		return nil, err
	}
	paths := r.ParamPaths()
	if err := am.AuditExtraneous(r.Used, paths, targetRepr); err != nil {
		return nil, err
	}
	if err := lazygraph.CheckReferenceTargets(r.VM, paths); err != nil {
		return nil, err
	}
	if len(r.Missing) > 0 {
		return nil, chzerr.NewMissing(r.Missing)
	}
	return r, nil
}

// Construct runs Walk and evaluates the resulting graph in one step.
func Construct(target any, am *argmap.ArgumentMap, targetRepr string) (any, error) {
	r, err := Walk(target, am, targetRepr)
	if err != nil {
		return nil, err
	}
	return lazygraph.Evaluate(r.VM)
}

// constructTarget collects obj's parameters (struct fields, a registered
// function's signature, or, when obj has no declared schema, a variadic
// container synthesized from observed sub-paths) and resolves each one into
// a fresh value-mapping fragment. objPath is "" for the root.
func constructTarget(obj any, objPath string, am *argmap.ArgumentMap, d *diagnostics, depth int) (lazygraph.ValueMapping, error) {
	if depth > maxDepth {
		return nil, chzerr.NewConstruction(
			"construction exceeds %d levels of nesting at %s; is a type recursively constructing itself?",
			maxDepth, displayPath(objPath))
	}

	list, build, err := params.Collect(obj)
	if err != nil {
		if t, ok := obj.(reflect.Type); ok {
			vlist, vbuild, _, verr := params.CollectVariadic(t, am.Subpaths(objPath, true))
			if verr != nil {
				return nil, &collectFailure{err: verr}
			}
			if vbuild != nil {
				list, build, err = vlist, vbuild, nil
			}
		}
		if err != nil {
			return nil, &collectFailure{err: err}
		}
	}

	vm := lazygraph.ValueMapping{}
	kwargs := map[string]lazygraph.ParamRef{}
	for _, p := range list {
		paramPath, frag, committed, aerr := constructArg(p, objPath, am, d, depth)
		if aerr != nil {
			return nil, aerr
		}
		if !committed {
			continue
		}
		for k, v := range frag {
			vm[k] = v
		}
		kwargs[p.Name] = lazygraph.ParamRef{Ref: paramPath}
	}
	vm[objPath] = lazygraph.Thunk{Fn: build, Kwargs: kwargs, Repr: params.Repr(obj)}
	return vm, nil
}

// constructArg decides the evaluable(s) for one parameter. committed=false
// with a nil error means no kwarg is emitted and the host constructor's own
// default applies.
func constructArg(p *params.Param, objPath string, am *argmap.ArgumentMap, d *diagnostics, depth int) (paramPath string, frag lazygraph.ValueMapping, committed bool, err error) {
	paramPath = joinPath(objPath, p.Name)
	d.recordParam(paramPath, p)

	found, ok := am.Lookup(paramPath)
	if !ok {
		frag, committed, uerr := resolveUnbound(p, paramPath, am, d, depth)
		return paramPath, frag, committed, uerr
	}

	d.used[argmap.UsedKey{Key: found.Key, LayerIndex: found.LayerIndex}] = true
	spec := found.Value

	// A concrete value of the expected runtime type is used as-is.
	if !isSpecialArg(spec) {
		if cast.IsSubtypeInstance(spec, p.Type) {
			return paramPath, lazygraph.ValueMapping{paramPath: lazygraph.Value{V: spec}}, true, nil
		}
		return "", nil, false, &chzerr.InvalidBlueprintArg{Message: fmt.Sprintf(
			"Expected %q to be %s, got %T", paramPath, typeRepr(p.Type), spec)}
	}

	if c, isCastable := spec.(argmap.Castable); isCastable {
		// If the parameter has a meta-factory and sub-paths address below it,
		// the string must name a factory: casting it to a value here would
		// only strand those sub-arguments as extraneous.
		if !(p.MetaFactory != nil && len(am.Subpaths(paramPath, true)) > 0) {
			if v, cerr := p.CastValue(string(c)); cerr == nil {
				return paramPath, lazygraph.ValueMapping{paramPath: lazygraph.Value{V: v}}, true, nil
			}
		}
	}

	if r, isRef := spec.(argmap.Reference); isRef {
		return paramPath, lazygraph.ValueMapping{paramPath: lazygraph.ParamRef{Ref: string(r)}}, true, nil
	}

	// A directly bound callable constructing a subtype of the expected type.
	if target, isFactory := asFactoryTarget(spec, p.Type); isFactory {
		sub, serr := constructTarget(target, paramPath, am, d, depth+1)
		if serr != nil {
			return "", nil, false, unwrapCollect(serr)
		}
		return paramPath, sub, true, nil
	}

	switch v := spec.(type) {
	case argmap.Castable:
		return resolveCastableFactory(p, paramPath, string(v), am, d, depth)
	case argmap.FactoryName:
		return resolveFactoryName(p, paramPath, string(v), am, d, depth)
	}

	return "", nil, false, &chzerr.InvalidBlueprintArg{Message: fmt.Sprintf(
		"Expected %q to be %s, got %T", paramPath, typeRepr(p.Type), spec)}
}

// resolveUnbound handles a parameter with no binding: tentatively probe the
// meta-factory's unspecified factory with isolated diagnostic buffers, and
// commit the sub-walk only if it consumed sub-arguments or produces an
// all-defaults instance. committed=false means no kwarg
// is emitted and the host constructor's own default applies. The
// non-nil-error cases are the variadic-default-wildcard audit and deep
// failures inside the probe.
func resolveUnbound(p *params.Param, paramPath string, am *argmap.ArgumentMap, d *diagnostics, depth int) (lazygraph.ValueMapping, bool, error) {
	if p.MetaFactory != nil {
		if factory := p.MetaFactory.UnspecifiedFactory(); factory != nil {
			sub := newDiagnostics()
			vm, err := constructTarget(factory, paramPath, am, sub, depth+1)
			d.absorb(sub)

			var cf *collectFailure
			if err != nil && !errors.As(err, &cf) {
				return nil, false, err
			}
			if err == nil {
				thunk := vm[paramPath].(lazygraph.Thunk)

				// Sub-arguments were consumed: commit the sub-walk.
				if len(thunk.Kwargs) > 0 {
					d.metaFactory[paramPath] = params.Repr(factory)
					d.missing = append(d.missing, sub.missing...)
					return vm, true, nil
				}

				// No default, but instantiating the factory would succeed
				// with every parameter defaulted: commit that instance.
				if p.Default == nil && isStructTarget(factory) && allDefaulted(sub) {
					return vm, true, nil
				}

				if p.Default == nil {
					if len(sub.missing) > 0 {
						d.missing = append(d.missing, sub.missing...)
					} else {
						d.missing = append(d.missing, paramPath)
					}
					return nil, false, nil
				}

				// The default wins; make sure no wildcard silently expected
				// to reach inside it.
				return nil, false, checkWildcardMatchingVariadic(factory, p, paramPath, am)
			}
			// Collect failure: the factory is not introspectable here, fall
			// back to the default/missing logic below.
		}
	}
	if p.Default == nil {
		d.missing = append(d.missing, paramPath)
	}
	return nil, false, nil
}

func resolveCastableFactory(p *params.Param, paramPath, raw string, am *argmap.ArgumentMap, d *diagnostics, depth int) (string, lazygraph.ValueMapping, bool, error) {
	if p.MetaFactory == nil {
		if _, cerr := p.CastValue(raw); cerr != nil {
			return "", nil, false, &chzerr.InvalidBlueprintArg{Message: fmt.Sprintf(
				"Could not cast %q to %s:\n%v", raw, typeRepr(p.Type), cerr)}
		}
		return "", nil, false, &chzerr.InvalidBlueprintArg{Message: fmt.Sprintf(
			"Expected %q to be castable to %s, got %q", paramPath, typeRepr(p.Type), raw)}
	}

	factory, ferr := p.MetaFactory.FromString(raw)
	if ferr != nil {
		var mfs *chzerr.MetaFromString
		if !errors.As(ferr, &mfs) {
			return "", nil, false, ferr
		}
		castIssue := ""
		if _, cerr := p.CastValue(raw); cerr != nil {
			castIssue = cerr.Error()
		} else if sub := am.Subpaths(paramPath, true); len(sub) > 0 {
			castIssue = fmt.Sprintf("Not a value, since subparameters were provided (e.g. %q)", paramPath+sub[0])
		}
		return "", nil, false, &chzerr.InvalidBlueprintArg{Message: fmt.Sprintf(
			"Could not interpret argument %q provided for param %q...\n\n"+
				"- Failed to interpret it as a value:\n%s\n\n"+
				"- Failed to interpret it as a factory for polymorphic construction:\n%v",
			raw, paramPath, castIssue, ferr)}
	}

	sub, serr := constructTarget(factory, paramPath, am, d, depth+1)
	if serr != nil {
		return "", nil, false, unwrapCollect(serr)
	}
	d.metaFactory[paramPath] = params.Repr(factory)
	return paramPath, sub, true, nil
}

func resolveFactoryName(p *params.Param, paramPath, raw string, am *argmap.ArgumentMap, d *diagnostics, depth int) (string, lazygraph.ValueMapping, bool, error) {
	if p.MetaFactory == nil {
		return "", nil, false, &chzerr.InvalidBlueprintArg{Message: fmt.Sprintf(
			"%q has no meta-factory able to resolve factory name %q", paramPath, raw)}
	}
	factory, ferr := p.MetaFactory.FromString(raw)
	if ferr != nil {
		return "", nil, false, &chzerr.InvalidBlueprintArg{Message: fmt.Sprintf(
			"Failed to interpret %q as a factory for param %q:\n%v", raw, paramPath, ferr)}
	}
	sub, serr := constructTarget(factory, paramPath, am, d, depth+1)
	if serr != nil {
		return "", nil, false, unwrapCollect(serr)
	}
	d.metaFactory[paramPath] = params.Repr(factory)
	return paramPath, sub, true, nil
}

// checkWildcardMatchingVariadic implements the variadic-default-wildcard
// audit: a defaulted, variadic-capable parameter with no
// observed sub-paths, whose element parameters a wildcard would have
// matched, is an error: defaults are opaque to wildcards.
func checkWildcardMatchingVariadic(factory any, p *params.Param, objPath string, am *argmap.ArgumentMap) error {
	if p.Default != nil && p.Default.HasValue && p.Default.Value != nil {
		v := reflect.ValueOf(p.Default.Value)
		switch v.Kind() {
		case reflect.Slice, reflect.Map, reflect.Array:
			if v.Len() == 0 {
				return nil
			}
		}
	}

	t, ok := factory.(reflect.Type)
	if !ok {
		return nil
	}
	vparams, _, vtypes, verr := params.CollectVariadic(t, am.Subpaths(objPath, true))
	if verr != nil || len(vtypes) == 0 || len(vparams) > 0 {
		return nil
	}

	for _, elemType := range vtypes {
		elemParams, _, err := params.Collect(elemType)
		if err != nil {
			continue
		}
		for _, ep := range elemParams {
			probe := objPath + "." + emptyVariadicSentinel + "." + ep.Name
			found, hit := am.Lookup(probe)
			if !hit {
				continue
			}
			shown := objPath + ".(variadic)." + ep.Name
			return chzerr.NewConstruction(
				"\n\nIt is possible to construct %q using variadics, but no variadic (or "+
					"polymorphic) parametrisation was found.\nThis is fine in theory, because %q "+
					"has a default value.\n\nHowever, you also specified the wildcard %q and you "+
					"may have expected it to modify the default value. This is not possible -- "+
					"default values are opaque to the blueprint; the only way they interact with "+
					"it is presence or absence. So out of caution, here's an error!\n\n"+
					"If this is a false positive, consider scoping the wildcard more narrowly or "+
					"using exact keys.",
				shown, shown, found.Key)
		}
	}
	return nil
}

// isSpecialArg reports whether spec is one of the engine's tagged binding
// shapes rather than a plain value.
func isSpecialArg(spec any) bool {
	switch spec.(type) {
	case argmap.Castable, argmap.Reference, argmap.Factory, argmap.FactoryName:
		return true
	case reflect.Type, params.FuncTarget, *params.FuncTarget:
		return true
	default:
		return false
	}
}

// asFactoryTarget unwraps a directly bound callable (an argmap.Factory, a
// bare reflect.Type, or a params.FuncTarget) whose constructed type
// satisfies want.
func asFactoryTarget(spec any, want reflect.Type) (any, bool) {
	var target any
	switch v := spec.(type) {
	case argmap.Factory:
		target = v.Fn
	case reflect.Type:
		target = v
	case params.FuncTarget:
		target = v
	case *params.FuncTarget:
		target = *v
	default:
		return nil, false
	}
	// A Factory wrapper may itself hold a FuncTarget or reflect.Type.
	if f, ok := target.(argmap.Factory); ok {
		target = f.Fn
	}
	rt, err := params.ReturnType(target)
	if err != nil {
		return nil, false
	}
	if rt == nil {
		// A pre-built thunk; its result type is checked at evaluation time.
		return target, true
	}
	if want != nil && !cast.IsSubtype(rt, want) {
		// Allow the pointer-to-struct rendering of an optional field to be
		// satisfied by the struct's own schema.
		if !(want.Kind() == reflect.Ptr && cast.IsSubtype(rt, want.Elem())) {
			return nil, false
		}
	}
	return target, true
}

func isStructTarget(factory any) bool {
	t, ok := factory.(reflect.Type)
	return ok && t.Kind() == reflect.Struct
}

func allDefaulted(d *diagnostics) bool {
	if len(d.missing) > 0 {
		return false
	}
	for _, p := range d.allParams {
		if p.Default == nil {
			return false
		}
	}
	return true
}

func typeRepr(t reflect.Type) string {
	if t == nil {
		return "<none>"
	}
	return t.String()
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func displayPath(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}
