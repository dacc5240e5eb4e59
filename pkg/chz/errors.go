package chz

import "github.com/latticeforge/chz/internal/chzerr"

// MissingBlueprintArg reports a required parameter path with no binding, no
// viable default, and no fully-default polymorphic instance.
type MissingBlueprintArg = chzerr.MissingBlueprintArg

// ExtraneousBlueprintArg reports a layer key that the walk did not use and
// that matches no discovered parameter path (an unused key that does match
// one was shadowed by another binding and is not reported).
type ExtraneousBlueprintArg = chzerr.ExtraneousBlueprintArg

// InvalidBlueprintArg reports a Reference targeting a non-existent path, an
// ill-typed binding, or a Castable/FactoryName the meta-factory could not
// resolve either as a value or as a factory name.
type InvalidBlueprintArg = chzerr.InvalidBlueprintArg

// ConstructionError reports a structural failure: an un-introspectable
// target, variadic misuse, or a target constructor returning an error.
type ConstructionError = chzerr.ConstructionError

// EntrypointHelpException carries rendered help text when --help is
// requested via MakeFromArgv.
type EntrypointHelpException = chzerr.EntrypointHelpException
