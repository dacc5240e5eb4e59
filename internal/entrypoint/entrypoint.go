// Package entrypoint implements the CLI token grammar adapter: turning
// an argv slice into a Layer the argument map can consume, and
// recognizing "--help".
package entrypoint

import (
	"strings"

	"github.com/latticeforge/chz/internal/argmap"
	"github.com/latticeforge/chz/internal/chzerr"
)

// HelpToken is the token that requests rendered help instead of
// construction.
const HelpToken = "--help"

// IsHelp reports whether argv requests help: a bare "--help" anywhere in
// the token list counts. It does not stop parsing; ParseArgv skips the
// token and still parses every other one.
func IsHelp(argv []string) bool {
	for _, tok := range argv {
		if tok == HelpToken {
			return true
		}
	}
	return false
}

// ParseArgv turns a list of "key=value", "key@=path" (Reference), and
// "key~=factory-name" (explicit factory-by-string) tokens into a Layer
// named layerName. allowHyphens, when true, permits keys to begin with "--"
// (stripped before use) the way a conventional flag-style CLI would accept
// them; otherwise a leading "--" is kept as-is, an accidental flag-style
// argument surfaced later as an ExtraneousBlueprintArg with a "did you
// mean allow_hyphens=true" hint (internal/diag.HyphenHint).
func ParseArgv(argv []string, allowHyphens bool, layerName string) (*argmap.Layer, error) {
	params := map[string]any{}
	for _, tok := range argv {
		if tok == HelpToken {
			continue
		}
		key, val, err := splitToken(tok, allowHyphens)
		if err != nil {
			return nil, err
		}
		params[key] = val
	}
	return argmap.NewLayer(params, layerName), nil
}

// splitToken recognizes, in priority order: "key@=ref" (Reference),
// "key~=name" (an argmap.FactoryName, bypassing value-cast attempts
// entirely), and the default "key=value" (Castable).
func splitToken(tok string, allowHyphens bool) (key string, val any, err error) {
	raw := tok
	if allowHyphens {
		raw = strings.TrimPrefix(raw, "--")
	}

	if i := strings.Index(raw, "@="); i >= 0 {
		key, refPath := raw[:i], raw[i+2:]
		if strings.Contains(refPath, "...") {
			return "", nil, chzerr.NewConstruction("reference target %q must not contain a wildcard", refPath)
		}
		return key, argmap.Reference(refPath), nil
	}
	if i := strings.Index(raw, "~="); i >= 0 {
		key, name := raw[:i], raw[i+2:]
		return key, argmap.FactoryName(name), nil
	}
	i := strings.IndexByte(raw, '=')
	if i < 0 {
		return "", nil, chzerr.NewConstruction("argument %q is missing '=' (expected key=value, key@=path, or --help)", tok)
	}
	return raw[:i], argmap.Castable(raw[i+1:]), nil
}
