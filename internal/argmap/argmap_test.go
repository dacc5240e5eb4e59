package argmap

import (
	"errors"
	"strings"
	"testing"

	"github.com/latticeforge/chz/internal/chzerr"
)

func TestLookupLayerPrecedence(t *testing.T) {
	m := New()
	m.AddLayer(NewLayer(map[string]any{"lr": 1}, "defaults"))
	m.AddLayer(NewLayer(map[string]any{"lr": 2}, "overrides"))

	found, ok := m.Lookup("lr")
	if !ok {
		t.Fatalf("expected a hit for lr")
	}
	if found.Value != 2 {
		t.Errorf("value = %v, want 2 (newest layer wins)", found.Value)
	}
	if found.LayerIndex != 1 || found.LayerName != "overrides" {
		t.Errorf("layer = %d/%q, want 1/overrides", found.LayerIndex, found.LayerName)
	}
}

func TestLookupExactBeatsWildcard(t *testing.T) {
	m := New()
	m.AddLayer(NewLayer(map[string]any{"...x": "wild", "a.b.x": "exact"}, ""))

	found, ok := m.Lookup("a.b.x")
	if !ok {
		t.Fatalf("expected a hit for a.b.x")
	}
	if found.Value != "exact" {
		t.Errorf("value = %v, want exact (exact key beats wildcard in a layer)", found.Value)
	}
}

func TestLookupLongestWildcardWins(t *testing.T) {
	m := New()
	m.AddLayer(NewLayer(map[string]any{"...x": "short", "a...x": "long"}, ""))

	found, ok := m.Lookup("a.b.x")
	if !ok {
		t.Fatalf("expected a hit")
	}
	if found.Value != "long" {
		t.Errorf("value = %v, want long (more specific wildcard binds first)", found.Value)
	}
}

func TestLookupMiss(t *testing.T) {
	m := New()
	m.AddLayer(NewLayer(map[string]any{"a": 1}, ""))
	if _, ok := m.Lookup("b"); ok {
		t.Errorf("expected a miss for b")
	}
}

func TestSubpaths(t *testing.T) {
	m := New()
	m.AddLayer(NewLayer(map[string]any{
		"model":          1,
		"model.n_layers": 2,
		"model.opt.lr":   3,
		"unrelated":      4,
	}, ""))

	got := m.Subpaths("model", false)
	want := map[string]bool{"": true, ".n_layers": true, ".opt.lr": true}
	if len(got) != len(want) {
		t.Fatalf("Subpaths = %v, want %v", got, want)
	}
	for _, s := range got {
		if !want[s] {
			t.Errorf("unexpected suffix %q", s)
		}
	}

	strict := m.Subpaths("model", true)
	for _, s := range strict {
		if s == "" {
			t.Errorf("strict Subpaths should suppress the exact-equal suffix")
		}
	}
	if len(strict) != 2 {
		t.Errorf("strict Subpaths = %v, want 2 entries", strict)
	}
}

func TestSubpathsWildcard(t *testing.T) {
	m := New()
	m.AddLayer(NewLayer(map[string]any{"opt...lr": 1}, ""))

	got := m.Subpaths("opt", true)
	if len(got) != 1 {
		t.Fatalf("Subpaths = %v, want one wildcard suffix", got)
	}
	if got[0] != "...lr" {
		t.Errorf("suffix = %q, want ...lr", got[0])
	}
}

func TestAuditExtraneousUsedAndMatched(t *testing.T) {
	m := New()
	m.AddLayer(NewLayer(map[string]any{"lr": 1, "seed": 2}, ""))

	used := map[UsedKey]bool{{Key: "lr", LayerIndex: 0}: true}
	paths := map[string]bool{"lr": true, "seed": true}
	if err := m.AuditExtraneous(used, paths, "Config"); err != nil {
		t.Errorf("seed matches a parameter path, audit should pass: %v", err)
	}
}

func TestAuditExtraneousTypo(t *testing.T) {
	m := New()
	m.AddLayer(NewLayer(map[string]any{"learnin_rate": 0.1}, ""))

	err := m.AuditExtraneous(map[UsedKey]bool{}, map[string]bool{"learning_rate": true}, "Config")
	if err == nil {
		t.Fatalf("expected ExtraneousBlueprintArg")
	}
	var extraneous *chzerr.ExtraneousBlueprintArg
	if !errors.As(err, &extraneous) {
		t.Fatalf("error type = %T, want ExtraneousBlueprintArg", err)
	}
	if !strings.Contains(err.Error(), "learning_rate") {
		t.Errorf("message should suggest learning_rate, got:\n%s", err.Error())
	}
	if !strings.Contains(err.Error(), "'learnin_rate'") {
		t.Errorf("message should name the offending key, got:\n%s", err.Error())
	}
}

func TestAuditExtraneousHyphenHint(t *testing.T) {
	m := New()
	m.AddLayer(NewLayer(map[string]any{"--lr": 0.1}, ""))

	err := m.AuditExtraneous(map[UsedKey]bool{}, map[string]bool{"lr": true}, "Config")
	if err == nil {
		t.Fatalf("expected ExtraneousBlueprintArg")
	}
	if !strings.Contains(err.Error(), "allow_hyphens") {
		t.Errorf("message should hint at allow_hyphens, got:\n%s", err.Error())
	}
}

func TestAuditExtraneousWildcardMatchingNothing(t *testing.T) {
	m := New()
	m.AddLayer(NewLayer(map[string]any{"...zzzz": 1}, ""))

	err := m.AuditExtraneous(map[UsedKey]bool{}, map[string]bool{"lr": true}, "Config")
	if err == nil {
		t.Fatalf("a wildcard matching no parameter path should be extraneous")
	}
}
