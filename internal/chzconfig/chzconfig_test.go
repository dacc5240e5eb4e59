package chzconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/latticeforge/chz/internal/argmap"
)

func TestParseYAMLLayer(t *testing.T) {
	doc := []byte(`
name: baseline
seed: 7
"...lr": 0.001
alias:
  "@ref": name
nested:
  plain: map
`)
	layer, err := ParseYAMLLayer(doc, "test")
	if err != nil {
		t.Fatalf("ParseYAMLLayer: %v", err)
	}

	if _, v, ok := layer.GetKV("name"); !ok || v != "baseline" {
		t.Errorf("name = %v, %v", v, ok)
	}
	if _, v, ok := layer.GetKV("seed"); !ok || v != 7 {
		t.Errorf("seed = %v, %v", v, ok)
	}
	if _, v, ok := layer.GetKV("alias"); !ok || v != argmap.Reference("name") {
		t.Errorf("alias = %#v, want a Reference to name", v)
	}

	// The wildcard key participates in wildcard matching.
	if key, v, ok := layer.GetKV("model.opt.lr"); !ok || v != 0.001 || key != "...lr" {
		t.Errorf("wildcard lookup = %q, %v, %v", key, v, ok)
	}

	// A mapping without the @ref shape stays a plain value.
	if _, v, ok := layer.GetKV("nested"); !ok {
		t.Errorf("nested missing")
	} else if m, isMap := v.(map[string]any); !isMap || m["plain"] != "map" {
		t.Errorf("nested = %#v", v)
	}
}

func TestParseYAMLLayerBadDocument(t *testing.T) {
	if _, err := ParseYAMLLayer([]byte("\t: ["), "bad"); err == nil {
		t.Errorf("malformed YAML should fail")
	}
}

func TestLoadLayersFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chz.yaml")
	if err := os.WriteFile(path, []byte("name: fromfile\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	layer, err := LoadLayersFromYAML(path)
	if err != nil {
		t.Fatalf("LoadLayersFromYAML: %v", err)
	}
	if _, v, ok := layer.GetKV("name"); !ok || v != "fromfile" {
		t.Errorf("name = %v, %v", v, ok)
	}

	if _, err := LoadLayersFromYAML(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("a missing file should fail")
	}
}

func TestNewTraceID(t *testing.T) {
	a, b := NewTraceID(), NewTraceID()
	if a == "" || a == b {
		t.Errorf("trace ids should be unique and non-empty: %q, %q", a, b)
	}
}
