package gonumdist

import (
	"math"
	"testing"
)

func TestSurvivalKnownValues(t *testing.T) {
	f := NewF()

	// F(1,1) at 1 splits the mass evenly.
	if got := f.Survival(1, 1, 1); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("sf(1; 1, 1): want 0.5, got %v", got)
	}

	// Closed form via the t distribution with 4 degrees of freedom.
	if got := f.Survival(6.75, 1, 4); math.Abs(got-0.060148) > 1e-4 {
		t.Fatalf("sf(6.75; 1, 4): want ~0.060148, got %v", got)
	}
}

func TestSurvivalBoundaryInputs(t *testing.T) {
	f := NewF()

	if got := f.Survival(0, 2, 10); got != 1 {
		t.Fatalf("sf(0): want 1, got %v", got)
	}
	if got := f.Survival(-3, 2, 10); got != 1 {
		t.Fatalf("sf(-3): want 1, got %v", got)
	}
	if got := f.Survival(math.Inf(1), 2, 10); got != 0 {
		t.Fatalf("sf(+Inf): want 0, got %v", got)
	}
	if got := f.Survival(math.NaN(), 2, 10); !math.IsNaN(got) {
		t.Fatalf("sf(NaN): want NaN, got %v", got)
	}
}

func TestSurvivalIsDecreasing(t *testing.T) {
	f := NewF()
	prev := 1.0
	for x := 0.25; x <= 32; x *= 2 {
		p := f.Survival(x, 2, 9)
		if p >= prev {
			t.Fatalf("survival not strictly decreasing at x=%v: %v >= %v", x, p, prev)
		}
		if p < 0 || p > 1 {
			t.Fatalf("survival out of [0,1] at x=%v: %v", x, p)
		}
		prev = p
	}
}
