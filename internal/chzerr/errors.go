// Package chzerr defines the diagnostic error taxonomy shared across the
// blueprint engine: one concrete type per failure kind, so callers can
// type-switch on it instead of parsing messages.
package chzerr

import "fmt"

// MissingBlueprintArg reports a required parameter path with no binding, no
// viable default, and no fully-default polymorphic instance.
type MissingBlueprintArg struct {
	Message string
}

func (e *MissingBlueprintArg) Error() string { return e.Message }

// NewMissing builds a MissingBlueprintArg from the set of missing paths.
func NewMissing(paths []string) *MissingBlueprintArg {
	msg := "Missing required arguments for parameter(s): "
	for i, p := range paths {
		if i > 0 {
			msg += ", "
		}
		msg += p
	}
	return &MissingBlueprintArg{Message: msg}
}

// ExtraneousBlueprintArg reports a layer key that is neither used nor
// clobbered by a later layer.
type ExtraneousBlueprintArg struct {
	Message string
}

func (e *ExtraneousBlueprintArg) Error() string { return e.Message }

// InvalidBlueprintArg reports a Reference targeting a non-existent path, or
// a Castable that could not be interpreted as either a value or a factory.
type InvalidBlueprintArg struct {
	Message string
}

func (e *InvalidBlueprintArg) Error() string { return e.Message }

// ConstructionError reports a structural failure: an un-introspectable
// target, variadic misuse, a wildcard-vs-default ambiguity, or a cycle in
// references.
type ConstructionError struct {
	Issue string
	Cause error
}

func (e *ConstructionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Issue, e.Cause)
	}
	return e.Issue
}

func (e *ConstructionError) Unwrap() error { return e.Cause }

// NewConstruction builds a ConstructionError from a plain message.
func NewConstruction(format string, args ...any) *ConstructionError {
	return &ConstructionError{Issue: fmt.Sprintf(format, args...)}
}

// WrapConstruction builds a ConstructionError that chains an underlying
// cause, e.g. a target constructor returning a non-nil error.
func WrapConstruction(issue string, cause error) *ConstructionError {
	return &ConstructionError{Issue: issue, Cause: cause}
}

// MetaFromString is internal to meta-factories: it is always caught and
// converted to an InvalidBlueprintArg at the construction-walk boundary,
// never returned to a caller of the public API.
type MetaFromString struct {
	Message string
}

func (e *MetaFromString) Error() string { return e.Message }

func NewMetaFromString(format string, args ...any) *MetaFromString {
	return &MetaFromString{Message: fmt.Sprintf(format, args...)}
}

// EntrypointHelpException carries rendered help text when --help is
// requested via an argv entrypoint.
type EntrypointHelpException struct {
	HelpText string
}

func (e *EntrypointHelpException) Error() string { return e.HelpText }
