package cast

import (
	"reflect"
	"testing"
)

func TestTryCast(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		target reflect.Type
		want   any
		fails  bool
	}{
		{"string", "hello", reflect.TypeOf(""), "hello", false},
		{"int", "42", reflect.TypeOf(0), 42, false},
		{"int8", "7", reflect.TypeOf(int8(0)), int8(7), false},
		{"uint", "42", reflect.TypeOf(uint(0)), uint(42), false},
		{"float", "0.5", reflect.TypeOf(0.0), 0.5, false},
		{"bool true", "true", reflect.TypeOf(false), true, false},
		{"bool one", "1", reflect.TypeOf(false), true, false},
		{"bad int", "forty", reflect.TypeOf(0), nil, true},
		{"bad bool", "yes please", reflect.TypeOf(false), nil, true},
		{"struct has no rule", "x", reflect.TypeOf(struct{}{}), nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TryCast(tt.value, tt.target)
			if tt.fails {
				if err == nil {
					t.Fatalf("TryCast(%q, %s) should fail, got %v", tt.value, tt.target, got)
				}
				if _, ok := err.(*CastError); !ok {
					t.Errorf("error type = %T, want *CastError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("TryCast(%q, %s): %v", tt.value, tt.target, err)
			}
			if got != tt.want {
				t.Errorf("TryCast(%q, %s) = %v (%T), want %v (%T)", tt.value, tt.target, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestTryCastPointer(t *testing.T) {
	got, err := TryCast("5", reflect.TypeOf((*int)(nil)))
	if err != nil {
		t.Fatalf("TryCast to *int: %v", err)
	}
	p, ok := got.(*int)
	if !ok || p == nil || *p != 5 {
		t.Errorf("got %v (%T), want *int pointing at 5", got, got)
	}
}

type shape interface{ area() float64 }

type square struct{ side float64 }

func (s square) area() float64 { return s.side * s.side }

func TestIsSubtypeInstance(t *testing.T) {
	shapeType := reflect.TypeOf((*shape)(nil)).Elem()

	if !IsSubtypeInstance(square{2}, shapeType) {
		t.Errorf("square implements shape")
	}
	if IsSubtypeInstance("nope", shapeType) {
		t.Errorf("string does not implement shape")
	}
	if !IsSubtypeInstance(3, reflect.TypeOf(0)) {
		t.Errorf("int satisfies int")
	}
	if !IsSubtypeInstance(nil, reflect.TypeOf((*int)(nil))) {
		t.Errorf("nil satisfies a nilable type")
	}
	if IsSubtypeInstance(nil, reflect.TypeOf(0)) {
		t.Errorf("nil does not satisfy int")
	}
}

func TestIsSubtype(t *testing.T) {
	shapeType := reflect.TypeOf((*shape)(nil)).Elem()
	if !IsSubtype(reflect.TypeOf(square{}), shapeType) {
		t.Errorf("square <: shape")
	}
	if IsSubtype(reflect.TypeOf(0), shapeType) {
		t.Errorf("int is not <: shape")
	}
	if !IsSubtype(reflect.TypeOf(0), reflect.TypeOf(0)) {
		t.Errorf("int <: int")
	}
}
