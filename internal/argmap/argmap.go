// Package argmap implements the layered argument map: an ordered stack
// of Layers, exact/wildcard lookup, sub-path enumeration under a prefix,
// and the extraneity audit.
package argmap

import (
	"sort"
	"strings"

	"github.com/latticeforge/chz/internal/chzerr"
	"github.com/latticeforge/chz/internal/diag"
	"github.com/latticeforge/chz/internal/wildcard"
)

// FoundArgument is the result of a successful Lookup: which key matched,
// its bound value, and where it came from.
type FoundArgument struct {
	Key        string
	Value      any
	LayerIndex int
	LayerName  string
}

// UsedKey identifies one (key, layer) pair that the construction walk
// consulted, for the extraneity audit.
type UsedKey struct {
	Key        string
	LayerIndex int
}

// ArgumentMap is an append-only, ordered stack of Layers.
type ArgumentMap struct {
	layers []*Layer
}

// New creates an empty argument map.
func New() *ArgumentMap { return &ArgumentMap{} }

// AddLayer appends a layer; layers are never removed or mutated in place.
func (m *ArgumentMap) AddLayer(l *Layer) { m.layers = append(m.layers, l) }

// Layers returns the underlying layer stack, in application order. Callers
// must treat the result as read-only; it is exposed so Blueprint.Apply can
// splice another Blueprint's layers in without re-parsing them.
func (m *ArgumentMap) Layers() []*Layer { return m.layers }

// Lookup scans layers from newest to oldest, returning the first hit.
func (m *ArgumentMap) Lookup(path string) (*FoundArgument, bool) {
	for i := len(m.layers) - 1; i >= 0; i-- {
		if key, value, ok := m.layers[i].GetKV(path); ok {
			return &FoundArgument{Key: key, Value: value, LayerIndex: i, LayerName: m.layers[i].Name}, true
		}
	}
	return nil, false
}

// Subpaths returns, for every key in every layer that addresses something
// below prefix, the suffix string s such that prefix+s equals or
// wildcard-matches that key. When strict is true, the
// exact-equal-to-prefix case is suppressed.
func (m *ArgumentMap) Subpaths(prefix string, strict bool) []string {
	segs := strings.Split(prefix, ".")
	wildcardLiteral := segs[len(segs)-1]

	var ret []string
	for _, layer := range m.layers {
		for _, entry := range layer.IterKeys() {
			key := entry.Key
			if entry.IsWildcard {
				matcher := layer.Matcher(key)
				i := strings.LastIndex(key, wildcardLiteral)
				if i == -1 {
					continue
				}
				if matcher.Match(prefix) {
					if !strict {
						ret = append(ret, "")
					}
					continue
				}
				boundary := i + len(wildcardLiteral)
				if boundary < len(key) && key[boundary] == '.' {
					if wildcard.Compile(key[:boundary]).Match(prefix) {
						ret = append(ret, key[boundary:])
					}
				}
			} else {
				if key == prefix {
					if !strict {
						ret = append(ret, "")
					}
					continue
				}
				if strings.HasPrefix(key, prefix+".") {
					ret = append(ret, strings.TrimPrefix(key, prefix))
				}
			}
		}
	}
	return ret
}

// AuditExtraneous reports the first (key, layer) pair that is neither in
// used nor matches a discovered parameter path; a key that is not in
// used but does match a path was merely clobbered by a later layer. The
// error embeds typo, nesting, hyphen, and valid-parent hints.
func (m *ArgumentMap) AuditExtraneous(used map[UsedKey]bool, paramPaths map[string]bool, targetRepr string) error {
	sortedPaths := make([]string, 0, len(paramPaths))
	for p := range paramPaths {
		sortedPaths = append(sortedPaths, p)
	}
	sort.Strings(sortedPaths)

	for index, layer := range m.layers {
		for _, entry := range layer.IterKeys() {
			key := entry.Key
			if used[UsedKey{Key: key, LayerIndex: index}] {
				continue
			}

			var matched bool
			if entry.IsWildcard {
				matcher := layer.Matcher(key)
				for _, p := range sortedPaths {
					if matcher.Match(p) {
						matched = true
						break
					}
				}
			} else {
				matched = paramPaths[key]
			}
			if matched {
				continue
			}

			extra := diag.BestMatch(key, sortedPaths)
			if !entry.IsWildcard {
				extra += diag.NestingHint(key, sortedPaths)
			}
			extra += diag.HyphenHint(key)

			validParentHelp := ""
			if !entry.IsWildcard {
				validParentHelp = diag.ValidParentHint(key, paramPaths)
			}

			return &chzerr.ExtraneousBlueprintArg{
				Message: "Extraneous argument " + quote(key) + " to Blueprint for " + targetRepr +
					extra +
					"\nAppend --help to your command to see valid arguments" +
					validParentHelp,
			}
		}
	}
	return nil
}

func quote(s string) string { return "'" + s + "'" }
