package core

import (
	"errors"
	"math"
	"testing"
)

func TestRNGDeterministic(t *testing.T) {
	a := NewRNG(99)
	b := NewRNG(99)
	for i := 0; i < 100; i++ {
		if a.Float64() != b.Float64() || a.ExpFloat64() != b.ExpFloat64() || a.IntN(17) != b.IntN(17) {
			t.Fatalf("draw %d diverged for equal seeds", i)
		}
	}

	c := NewRNG(100)
	same := true
	for i := 0; i < 10; i++ {
		if NewRNG(99).Float64() != c.Float64() {
			same = false
		}
	}
	if same {
		t.Fatal("different seeds should produce different streams")
	}
}

func TestRNGIntNGuardsNonPositive(t *testing.T) {
	r := NewRNG(1)
	if got := r.IntN(0); got != 0 {
		t.Fatalf("IntN(0) = %d, want 0", got)
	}
	if got := r.IntN(-3); got != 0 {
		t.Fatalf("IntN(-3) = %d, want 0", got)
	}
}

func TestConfigErrorUnwraps(t *testing.T) {
	err := CheckFinite("fire", "boost", math.NaN())
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if CheckFinite("fire", "boost", 1) != nil {
		t.Fatal("finite values must pass")
	}
}
