package walk

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/latticeforge/chz/internal/argmap"
	"github.com/latticeforge/chz/internal/chzerr"
	"github.com/latticeforge/chz/internal/lazygraph"
	"github.com/latticeforge/chz/internal/metafactory"
	"github.com/latticeforge/chz/internal/params"
)

type opt struct {
	LR       float64 `chz:"lr" chzdefault:"0.001"`
	Momentum float64 `chz:"momentum" chzdefault:"0.9"`
}

type run struct {
	Name string `chz:"name"`
	Seed int    `chz:"seed" chzdefault:"0"`
	Opt  opt    `chz:"opt"`
}

func mapOf(layers ...map[string]any) *argmap.ArgumentMap {
	am := argmap.New()
	for _, l := range layers {
		am.AddLayer(argmap.NewLayer(l, ""))
	}
	return am
}

func TestConstructBasic(t *testing.T) {
	am := mapOf(map[string]any{
		"name":   "baseline",
		"opt.lr": 0.1,
	})
	got, err := Construct(reflect.TypeOf(run{}), am, "run")
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	r := got.(run)
	if r.Name != "baseline" || r.Seed != 0 {
		t.Errorf("got %+v", r)
	}
	if r.Opt.LR != 0.1 || r.Opt.Momentum != 0.9 {
		t.Errorf("sub-binding should override one field and leave the other defaulted, got %+v", r.Opt)
	}
}

func TestConstructCastable(t *testing.T) {
	am := mapOf(map[string]any{
		"name": argmap.Castable("baseline"),
		"seed": argmap.Castable("7"),
	})
	got, err := Construct(reflect.TypeOf(run{}), am, "run")
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	r := got.(run)
	if r.Name != "baseline" || r.Seed != 7 {
		t.Errorf("got %+v", r)
	}
}

func TestConstructMissing(t *testing.T) {
	_, err := Construct(reflect.TypeOf(run{}), mapOf(map[string]any{}), "run")
	if err == nil {
		t.Fatalf("name is required")
	}
	var missing *chzerr.MissingBlueprintArg
	if !errors.As(err, &missing) {
		t.Fatalf("error type = %T, want MissingBlueprintArg", err)
	}
	if !strings.Contains(err.Error(), "name") {
		t.Errorf("message should name the missing path, got: %v", err)
	}
}

func TestExtraneousAuditedBeforeMissing(t *testing.T) {
	// A typo must be reported as extraneous, not as the resulting missing
	// parameter.
	am := mapOf(map[string]any{"nmae": "x"})
	_, err := Construct(reflect.TypeOf(run{}), am, "run")
	if err == nil {
		t.Fatalf("expected an error")
	}
	var extraneous *chzerr.ExtraneousBlueprintArg
	if !errors.As(err, &extraneous) {
		t.Fatalf("error type = %T, want ExtraneousBlueprintArg first", err)
	}
	if !strings.Contains(err.Error(), "name") {
		t.Errorf("message should suggest the real parameter, got: %v", err)
	}
}

func TestInvalidTypeBinding(t *testing.T) {
	am := mapOf(map[string]any{"name": "ok", "seed": "a string, not an int"})
	_, err := Construct(reflect.TypeOf(run{}), am, "run")
	if err == nil {
		t.Fatalf("expected an error for an ill-typed concrete value")
	}
	var invalid *chzerr.InvalidBlueprintArg
	if !errors.As(err, &invalid) {
		t.Errorf("error type = %T, want InvalidBlueprintArg", err)
	}
}

type allDefaultedSub struct {
	A int `chz:"a" chzdefault:"1"`
	B int `chz:"b" chzdefault:"2"`
}

type host struct {
	Sub allDefaultedSub `chz:"sub"`
}

func TestAllDefaultsInstanceCommit(t *testing.T) {
	// sub has no default of its own, but its factory's parameters are all
	// defaulted, so an instance is committed instead of reporting missing.
	got, err := Construct(reflect.TypeOf(host{}), mapOf(map[string]any{}), "host")
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	h := got.(host)
	if h.Sub.A != 1 || h.Sub.B != 2 {
		t.Errorf("got %+v", h.Sub)
	}
}

type withSlice struct {
	Name string `chz:"name"`
	Xs   []int  `chz:"xs"`
}

func TestVariadicSequence(t *testing.T) {
	am := mapOf(map[string]any{
		"name": "v",
		"xs.0": 10,
		"xs.1": 11,
	})
	got, err := Construct(reflect.TypeOf(withSlice{}), am, "withSlice")
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	w := got.(withSlice)
	if !reflect.DeepEqual(w.Xs, []int{10, 11}) {
		t.Errorf("Xs = %v", w.Xs)
	}
}

type withMap struct {
	Name string         `chz:"name"`
	Tags map[string]int `chz:"tags"`
}

func TestVariadicMapping(t *testing.T) {
	am := mapOf(map[string]any{
		"name":     "v",
		"tags.fst": 1,
		"tags.snd": 2,
	})
	got, err := Construct(reflect.TypeOf(withMap{}), am, "withMap")
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	w := got.(withMap)
	if !reflect.DeepEqual(w.Tags, map[string]int{"fst": 1, "snd": 2}) {
		t.Errorf("Tags = %v", w.Tags)
	}
}

func TestReferenceBinding(t *testing.T) {
	am := mapOf(map[string]any{
		"name": "a",
		"seed": argmap.Reference("opt.lr"),
	})
	_, err := Walk(reflect.TypeOf(run{}), am, "run")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
}

func TestDanglingReference(t *testing.T) {
	am := mapOf(map[string]any{
		"name": "a",
		"seed": argmap.Reference("nonexistent"),
	})
	_, err := Walk(reflect.TypeOf(run{}), am, "run")
	if err == nil {
		t.Fatalf("expected InvalidBlueprintArg")
	}
	var invalid *chzerr.InvalidBlueprintArg
	if !errors.As(err, &invalid) {
		t.Errorf("error type = %T, want InvalidBlueprintArg", err)
	}
}

func TestWildcardBinding(t *testing.T) {
	am := mapOf(map[string]any{
		"name":  "a",
		"...lr": 0.5,
	})
	got, err := Construct(reflect.TypeOf(run{}), am, "run")
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	r := got.(run)
	if r.Opt.LR != 0.5 {
		t.Errorf("wildcard should reach opt.lr, got %+v", r.Opt)
	}
}

func TestLayerShadowing(t *testing.T) {
	am := mapOf(
		map[string]any{"name": "first", "seed": 1},
		map[string]any{"name": "second"},
	)
	got, err := Construct(reflect.TypeOf(run{}), am, "run")
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	r := got.(run)
	if r.Name != "second" || r.Seed != 1 {
		t.Errorf("got %+v, want the newest layer to win per key", r)
	}
}

type recursive struct {
	Name string     `chz:"name" chzdefault:"n"`
	Next *recursive `chz:"next"`
}

func TestRecursiveTypeTerminates(t *testing.T) {
	// A self-referential type with a matching wildcard descends forever in
	// principle; the walk's depth guard must turn that into an error.
	am := mapOf(map[string]any{"...name": "x"})
	_, err := Construct(reflect.TypeOf(recursive{}), am, "recursive")
	if err == nil {
		t.Fatalf("expected the depth guard to fire")
	}
	var cerr *chzerr.ConstructionError
	if !errors.As(err, &cerr) {
		t.Errorf("error type = %T, want ConstructionError", err)
	}
}

type elem struct {
	Count int `chz:"count" chzdefault:"1"`
}

func TestWildcardMatchingVariadicDefault(t *testing.T) {
	am := mapOf(map[string]any{"...count": 5})
	p := &params.Param{
		Name:    "xs",
		Type:    reflect.TypeOf([]elem{}),
		Default: &params.Default{HasValue: true, Value: []elem{{Count: 9}}},
	}
	err := checkWildcardMatchingVariadic(reflect.TypeOf([]elem{}), p, "xs", am)
	if err == nil {
		t.Fatalf("a wildcard that would match a variadic element must error against an opaque default")
	}
	if !strings.Contains(err.Error(), "...count") {
		t.Errorf("message should name the wildcard, got: %v", err)
	}

	// An empty default is exempt: nothing the wildcard could have meant.
	p.Default = &params.Default{HasValue: true, Value: []elem{}}
	if err := checkWildcardMatchingVariadic(reflect.TypeOf([]elem{}), p, "xs", am); err != nil {
		t.Errorf("empty container default should pass: %v", err)
	}
}

func TestPolymorphicFromString(t *testing.T) {
	base := reflect.TypeOf((*noise)(nil)).Elem()
	metafactory.Global.RegisterSubclass(base, "Horn", reflect.TypeOf(horn{}))

	am := mapOf(map[string]any{
		"name":         "p",
		"sound":        argmap.Castable("Horn"),
		"sound.volume": 11,
	})
	got, err := Construct(reflect.TypeOf(noisyRun{}), am, "noisyRun")
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	r := got.(noisyRun)
	h, ok := r.Sound.(horn)
	if !ok {
		t.Fatalf("Sound = %T, want horn", r.Sound)
	}
	if h.Volume != 11 {
		t.Errorf("Volume = %d, want 11", h.Volume)
	}
}

type noise interface{ Decibels() int }

type horn struct {
	Volume int `chz:"volume" chzdefault:"5"`
}

func (h horn) Decibels() int { return h.Volume * 10 }

type noisyRun struct {
	Name  string `chz:"name"`
	Sound noise  `chz:"sound"`
}

func TestPolymorphicBadNameCombinesFailures(t *testing.T) {
	am := mapOf(map[string]any{
		"name":  "p",
		"sound": argmap.Castable("NoSuchThing"),
	})
	_, err := Construct(reflect.TypeOf(noisyRun{}), am, "noisyRun")
	if err == nil {
		t.Fatalf("expected InvalidBlueprintArg")
	}
	var invalid *chzerr.InvalidBlueprintArg
	if !errors.As(err, &invalid) {
		t.Fatalf("error type = %T, want InvalidBlueprintArg", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "as a value") || !strings.Contains(msg, "as a factory") {
		t.Errorf("message should explain both failures, got:\n%s", msg)
	}
}

func TestThunkKwargsReferenceDiscoveredPaths(t *testing.T) {
	am := mapOf(map[string]any{"name": "a"})
	r, err := Walk(reflect.TypeOf(run{}), am, "run")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	root, ok := r.VM[""].(lazygraph.Thunk)
	if !ok {
		t.Fatalf("root is %T, want Thunk", r.VM[""])
	}
	for name, ref := range root.Kwargs {
		if _, present := r.VM[ref.Ref]; !present {
			t.Errorf("kwarg %q references %q which is absent from the value mapping", name, ref.Ref)
		}
	}
}
