package argmap

// Castable is a string binding that requires type-aware coercion before it
// can be used as a value. It is one of the two special value
// tags recognized on the wire, alongside Reference.
type Castable string

// Reference is a string binding naming another parameter path. A Reference
// value never contains the wildcard token "...".
type Reference string

// Factory is a callable bound directly as a value: the engine will recurse
// into it as a sub-target rather than using it literally. It is the
// programmatic equivalent of a Castable that resolves to a factory name.
type Factory struct {
	Fn any
}

// FactoryName is a string binding that must resolve through the
// parameter's meta-factory FromString, skipping the value-cast attempt
// Castable makes first. This is what the "key~=name" entrypoint token
// produces: the user is explicitly naming a factory, not a
// literal value that merely happens to also be interpretable as one.
type FactoryName string
