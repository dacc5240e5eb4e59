package chz

import "github.com/latticeforge/chz/internal/argmap"

// Castable is a string value that the engine coerces via the bound
// parameter's meta-factory before use: either as a literal value, or,
// failing that, as a factory name to recurse into.
type Castable = argmap.Castable

// Reference is a string value naming another parameter path whose
// resolved value should be reused here. It must never contain
// the wildcard token "...".
type Reference = argmap.Reference

// Factory binds a ready-made target (a struct reflect.Type, or an
// internal params.FuncTarget) directly, skipping string resolution
// entirely. A Target built by Func is not accepted as Fn.
type Factory = argmap.Factory

// FactoryName is a string value that must resolve through the bound
// parameter's meta-factory FromString, never attempted as a literal value
// first. This is the programmatic equivalent of the "key~=name" CLI token.
type FactoryName = argmap.FactoryName
