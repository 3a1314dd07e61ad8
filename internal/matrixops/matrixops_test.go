package matrixops

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func newMatrix(t *testing.T, labels []string, values []float64) *Matrix {
	t.Helper()
	m, err := New(labels, mat.NewDense(len(labels), len(labels), values))
	if err != nil {
		t.Fatalf("new matrix: %v", err)
	}
	return m
}

func TestNewRejectsBadShapes(t *testing.T) {
	if _, err := New([]string{"x"}, mat.NewDense(1, 2, []float64{1, 2})); err == nil {
		t.Fatal("expected error for non-square matrix")
	}
	if _, err := New([]string{"x", "y", "z"}, mat.NewDense(2, 2, []float64{1, 2, 3, 4})); err == nil {
		t.Fatal("expected error for label count mismatch")
	}
}

func TestTraceAndFrobeniusNorm(t *testing.T) {
	m := newMatrix(t, []string{"x", "y"}, []float64{3, 4, 0, 5})
	if got := Trace(m); got != 8 {
		t.Fatalf("trace: want 8, got %v", got)
	}
	want := math.Sqrt(9 + 16 + 0 + 25)
	if got := FrobeniusNorm(m); math.Abs(got-want) > 1e-12 {
		t.Fatalf("frobenius: want %v, got %v", want, got)
	}
}

func TestArithmeticRequiresAlignedLabels(t *testing.T) {
	a := newMatrix(t, []string{"x", "y"}, []float64{1, 0, 0, 1})
	b := newMatrix(t, []string{"y", "x"}, []float64{1, 0, 0, 1})
	if _, err := Add(a, b); err == nil {
		t.Fatal("expected error adding matrices with different label order")
	}
	if _, err := Sub(a, b); err == nil {
		t.Fatal("expected error subtracting matrices with different label order")
	}
	if _, err := Mul(a, b); err == nil {
		t.Fatal("expected error multiplying matrices with different label order")
	}
}

func TestPseudoInverseRecoversTrueInverse(t *testing.T) {
	m := newMatrix(t, []string{"x", "y"}, []float64{4, 7, 2, 6})
	inv, err := PseudoInverse(m)
	if err != nil {
		t.Fatalf("pseudo-inverse: %v", err)
	}
	// det = 10, inverse = [[0.6, -0.7], [-0.2, 0.4]]
	want := [][]float64{{0.6, -0.7}, {-0.2, 0.4}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(inv.At(i, j)-want[i][j]) > 1e-12 {
				t.Fatalf("inverse[%d][%d]: want %v, got %v", i, j, want[i][j], inv.At(i, j))
			}
		}
	}
}

func TestPseudoInverseToleratesSingularInput(t *testing.T) {
	// Rank-1 matrix v v^T with v = (4, 2): pinv = v v^T / |v|^4.
	m := newMatrix(t, []string{"x", "y"}, []float64{16, 8, 8, 4})
	pinv, err := PseudoInverse(m)
	if err != nil {
		t.Fatalf("pseudo-inverse of singular matrix: %v", err)
	}
	want := [][]float64{{16.0 / 400, 8.0 / 400}, {8.0 / 400, 4.0 / 400}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(pinv.At(i, j)-want[i][j]) > 1e-12 {
				t.Fatalf("pinv[%d][%d]: want %v, got %v", i, j, want[i][j], pinv.At(i, j))
			}
		}
	}

	// Moore-Penrose identity: M pinv(M) M == M.
	mp, err := Mul(m, pinv)
	if err != nil {
		t.Fatalf("mul: %v", err)
	}
	mpm, err := Mul(mp, m)
	if err != nil {
		t.Fatalf("mul: %v", err)
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(mpm.At(i, j)-m.At(i, j)) > 1e-9 {
				t.Fatalf("M pinv(M) M != M at [%d][%d]: %v vs %v", i, j, mpm.At(i, j), m.At(i, j))
			}
		}
	}
}

func TestDet(t *testing.T) {
	m := newMatrix(t, []string{"x", "y"}, []float64{70, 8, 8, 4})
	if got := Det(m); math.Abs(got-216) > 1e-9 {
		t.Fatalf("det: want 216, got %v", got)
	}
}

func TestIsSymmetric(t *testing.T) {
	sym := newMatrix(t, []string{"x", "y"}, []float64{1, 2, 2, 3})
	if !sym.IsSymmetric(1e-12) {
		t.Fatal("expected symmetric")
	}
	asym := newMatrix(t, []string{"x", "y"}, []float64{1, 2, 2.1, 3})
	if asym.IsSymmetric(1e-12) {
		t.Fatal("expected asymmetric")
	}
}
