package argmap

import (
	"sort"

	"github.com/latticeforge/chz/internal/wildcard"
)

// Layer is a labeled mapping from keys (exact or wildcard) to bound
// values. Within a layer, exact keys take precedence over wildcards; a
// layer is immutable once constructed.
type Layer struct {
	Name string

	exact    map[string]any
	wildKeys []string // sorted by descending length: more specific wildcards first
	wildVal  map[string]any
	wildM    map[string]*wildcard.Matcher
}

// NewLayer partitions params into exact and wildcard keys.
func NewLayer(params map[string]any, name string) *Layer {
	l := &Layer{
		Name:    name,
		exact:   map[string]any{},
		wildVal: map[string]any{},
		wildM:   map[string]*wildcard.Matcher{},
	}
	for k, v := range params {
		if wildcard.IsWildcard(k) {
			l.wildVal[k] = v
			l.wildM[k] = wildcard.Compile(k)
			l.wildKeys = append(l.wildKeys, k)
		} else {
			l.exact[k] = v
		}
	}
	sort.Slice(l.wildKeys, func(i, j int) bool { return len(l.wildKeys[i]) > len(l.wildKeys[j]) })
	return l
}

// GetKV returns the matching key and value for exactKey, preferring an
// exact hit, falling back to the first (most specific) wildcard match.
func (l *Layer) GetKV(exactKey string) (key string, value any, ok bool) {
	if v, hit := l.exact[exactKey]; hit {
		return exactKey, v, true
	}
	for _, wk := range l.wildKeys {
		if l.wildM[wk].Match(exactKey) {
			return wk, l.wildVal[wk], true
		}
	}
	return "", nil, false
}

// KeyEntry is one key in a layer, tagged with whether it is a wildcard.
type KeyEntry struct {
	Key        string
	IsWildcard bool
}

// IterKeys enumerates every key in the layer, exact keys first.
func (l *Layer) IterKeys() []KeyEntry {
	out := make([]KeyEntry, 0, len(l.exact)+len(l.wildKeys))
	for k := range l.exact {
		out = append(out, KeyEntry{Key: k})
	}
	for _, k := range l.wildKeys {
		out = append(out, KeyEntry{Key: k, IsWildcard: true})
	}
	return out
}

// Matcher returns the compiled matcher backing a wildcard key in this layer.
func (l *Layer) Matcher(wildcardKey string) *wildcard.Matcher { return l.wildM[wildcardKey] }
