// Package matrixops provides the small set of labeled-matrix operations the
// MANOVA engine needs: Moore-Penrose pseudo-inverse, trace, Frobenius norm,
// determinant and label-aligned arithmetic. Matrices are square and carry
// the same label slice on rows and columns.
package matrixops

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a square matrix whose rows and columns are indexed by the same
// ordered label set. Operations validate label alignment instead of
// trusting incidental ordering.
type Matrix struct {
	labels []string
	data   *mat.Dense
}

// New wraps data with labels. The matrix must be square with one label per
// row.
func New(labels []string, data *mat.Dense) (*Matrix, error) {
	r, c := data.Dims()
	if r != c {
		return nil, fmt.Errorf("matrix must be square, got %dx%d", r, c)
	}
	if r != len(labels) {
		return nil, fmt.Errorf("label count %d does not match dimension %d", len(labels), r)
	}
	out := make([]string, len(labels))
	copy(out, labels)
	return &Matrix{labels: out, data: data}, nil
}

// NewZero creates a zero matrix for the given labels.
func NewZero(labels []string) *Matrix {
	n := len(labels)
	m, _ := New(labels, mat.NewDense(n, n, nil))
	return m
}

// Labels returns the label ordering shared by rows and columns.
func (m *Matrix) Labels() []string {
	out := make([]string, len(m.labels))
	copy(out, m.labels)
	return out
}

// Dim returns the matrix dimension.
func (m *Matrix) Dim() int { return len(m.labels) }

// At returns the element at (i, j).
func (m *Matrix) At(i, j int) float64 { return m.data.At(i, j) }

// Set assigns the element at (i, j).
func (m *Matrix) Set(i, j int, v float64) { m.data.Set(i, j, v) }

// Aligned reports whether two matrices share the same label ordering.
func (m *Matrix) Aligned(other *Matrix) bool {
	if len(m.labels) != len(other.labels) {
		return false
	}
	for i, l := range m.labels {
		if other.labels[i] != l {
			return false
		}
	}
	return true
}

// IsSymmetric reports whether the matrix is symmetric within tol.
func (m *Matrix) IsSymmetric(tol float64) bool {
	n := m.Dim()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if math.Abs(m.data.At(i, j)-m.data.At(j, i)) > tol {
				return false
			}
		}
	}
	return true
}

func checkAligned(op string, a, b *Matrix) error {
	if !a.Aligned(b) {
		return fmt.Errorf("%s: label sets are not aligned (%v vs %v)", op, a.labels, b.labels)
	}
	return nil
}

// Add returns a + b.
func Add(a, b *Matrix) (*Matrix, error) {
	if err := checkAligned("add", a, b); err != nil {
		return nil, err
	}
	var sum mat.Dense
	sum.Add(a.data, b.data)
	return New(a.labels, &sum)
}

// Sub returns a - b.
func Sub(a, b *Matrix) (*Matrix, error) {
	if err := checkAligned("sub", a, b); err != nil {
		return nil, err
	}
	var diff mat.Dense
	diff.Sub(a.data, b.data)
	return New(a.labels, &diff)
}

// Mul returns the matrix product a * b.
func Mul(a, b *Matrix) (*Matrix, error) {
	if err := checkAligned("mul", a, b); err != nil {
		return nil, err
	}
	var prod mat.Dense
	prod.Mul(a.data, b.data)
	return New(a.labels, &prod)
}

// Trace returns the sum of diagonal elements.
func Trace(m *Matrix) float64 {
	sum := 0.0
	for i := 0; i < m.Dim(); i++ {
		sum += m.data.At(i, i)
	}
	return sum
}

// FrobeniusNorm returns sqrt of the sum of squared elements.
func FrobeniusNorm(m *Matrix) float64 {
	return mat.Norm(m.data, 2)
}

// Det returns the determinant.
func Det(m *Matrix) float64 {
	return mat.Det(m.data)
}

// PseudoInverse returns the Moore-Penrose pseudo-inverse computed through a
// thin SVD. Singular values below dim * eps * max(sigma) are treated as
// zero, so rank-deficient input is tolerated rather than rejected. The
// error covariance in a MANOVA is singular whenever the variable count
// approaches the per-group observation count, which is why a true inverse
// is not used here.
func PseudoInverse(m *Matrix) (*Matrix, error) {
	var svd mat.SVD
	if ok := svd.Factorize(m.data, mat.SVDThin); !ok {
		return nil, fmt.Errorf("pseudo-inverse: SVD factorization failed")
	}

	s := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	largest := 0.0
	for _, sv := range s {
		if sv > largest {
			largest = sv
		}
	}
	tol := float64(m.Dim()) * machineEpsilon * largest

	n := m.Dim()
	sinv := mat.NewDense(n, n, nil)
	for i, sv := range s {
		if sv > tol {
			sinv.Set(i, i, 1/sv)
		}
	}

	var tmp, pinv mat.Dense
	tmp.Mul(&v, sinv)
	pinv.Mul(&tmp, u.T())
	return New(m.labels, &pinv)
}

const machineEpsilon = 2.220446049250313e-16
