// Package chzconfig carries the engine's ambient state: run-mode flags and
// the YAML-backed default argument layer loader. None of it is consulted
// by the construction walk itself, which stays synchronous and
// side-effect free; file loading happens once, before Make.
package chzconfig

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/latticeforge/chz/internal/argmap"
)

// IsTestMode indicates the process is running under `go test`. Nothing in
// this module reads it; LoadLayersFromYAML reads its file whatever its value.
var IsTestMode = false

// IsDebug, when true, attaches a per-make() trace id to construction
// errors so overlapping Make calls in one process are distinguishable in
// logs.
var IsDebug = false

// NewTraceID mints an id for one Make() call, attached to diagnostics when
// IsDebug is set.
func NewTraceID() string { return uuid.NewString() }

// Binding is one YAML-document entry: either a literal scalar/sequence/
// mapping value, or a `{"@ref": "other.path"}` object naming a reference.
type Binding struct {
	Key   string
	Value any
}

// LoadLayersFromYAML parses a YAML document of "key: value" /
// "key: {'@ref': 'other.path'}" pairs into a Layer suitable for
// Blueprint.Apply. Keys containing "..." in the document are treated as
// wildcard keys by Layer's own partitioning, so a config file can set
// broad defaults the same way a programmatic wildcard layer would.
func LoadLayersFromYAML(path string) (*argmap.Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("chzconfig: reading %s: %w", path, err)
	}
	return ParseYAMLLayer(data, path)
}

// ParseYAMLLayer is LoadLayersFromYAML's in-memory counterpart, exported so
// callers that already have the document (embedded config, tests) can skip
// the file read entirely without violating the walk's no-I/O invariant.
func ParseYAMLLayer(data []byte, layerName string) (*argmap.Layer, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("chzconfig: parsing %s: %w", layerName, err)
	}

	params := make(map[string]any, len(raw))
	for k, v := range raw {
		params[k] = normalizeYAMLValue(v)
	}
	return argmap.NewLayer(params, layerName), nil
}

// normalizeYAMLValue recognizes the {"@ref": "..."} reference shape and
// recursively normalizes maps/slices so that map[any]any produced by some
// YAML decodings doesn't leak into bound values.
func normalizeYAMLValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		if len(val) == 1 {
			if ref, ok := val["@ref"]; ok {
				if s, ok := ref.(string); ok {
					return argmap.Reference(s)
				}
			}
		}
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[k] = normalizeYAMLValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, vv := range val {
			out[i] = normalizeYAMLValue(vv)
		}
		return out
	default:
		return val
	}
}
