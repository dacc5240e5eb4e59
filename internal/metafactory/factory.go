// Package metafactory implements the five meta-factory variants:
// subclass, function, union, type_subclass, and standard. A meta-factory
// is the policy object that decides, for a parameter's static type, (a)
// the default factory when nothing is specified, (b) how a user-supplied
// string becomes a factory, and (c) how a string is cast to a value.
package metafactory

import (
	"reflect"
	"regexp"
	"strings"
)

// MetaFactory is the shared interface all five variants implement.
type MetaFactory interface {
	// UnspecifiedFactory returns the default callable to use when nothing
	// is bound, or nil if there is no default.
	UnspecifiedFactory() any

	// FromString resolves a user-supplied factory name to a callable.
	// Returns a *chzerr.MetaFromString on failure; the construction walk
	// converts that into an InvalidBlueprintArg at its boundary.
	FromString(name string) (any, error)

	// PerformCast tries to coerce value into defaultTarget.
	PerformCast(value string, defaultTarget reflect.Type) (any, error)
}

var identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
var specRE = regexp.MustCompile(`^(?P<base>[^\s\[\]]+)(\[(?P<generic>.+)\])?$`)

func isIdentifier(s string) bool { return identifierRE.MatchString(s) }

func typeRepr(t reflect.Type) string {
	if t == nil {
		return "<none>"
	}
	return t.String()
}

// splitSpec parses "base[generic]" or "module:base[generic]".
func splitSpec(spec string) (module, base, generic string, ok bool) {
	module = ""
	rest := spec
	if i := strings.IndexByte(spec, ':'); i >= 0 {
		module, rest = spec[:i], spec[i+1:]
	}
	m := specRE.FindStringSubmatch(rest)
	if m == nil {
		return "", "", "", false
	}
	return module, m[specRE.SubexpIndex("base")], m[specRE.SubexpIndex("generic")], true
}
