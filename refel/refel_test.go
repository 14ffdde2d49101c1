package refel

import (
	"testing"

	"github.com/notargets/adaptoct/utils"
)

func approxEqual(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func TestNewRefElementGLLNodesSpanReferenceInterval(t *testing.T) {
	re := NewRefElement(1, 4)
	if re.Nrp != 5 {
		t.Fatalf("Nrp = %d, want 5", re.Nrp)
	}
	first := re.R1D.At(0, 0)
	last := re.R1D.At(re.Nrp-1, 0)
	if !approxEqual(first, -1, 1e-12) || !approxEqual(last, 1, 1e-12) {
		t.Fatalf("GLL endpoints = %v, %v, want -1, 1", first, last)
	}
}

func TestNewRefElementQuadratureWeightsSumToIntervalLength(t *testing.T) {
	for _, order := range []int{1, 2, 3, 5} {
		re := NewRefElement(1, order)
		var sum float64
		for i := 0; i < re.Nrp; i++ {
			sum += re.W1D.At(i, 0)
		}
		if !approxEqual(sum, 2.0, 1e-9) {
			t.Fatalf("order %d: GLL weights sum to %v, want 2", order, sum)
		}
	}
}

func TestNewRefElementGaussWeightsSumToIntervalLength(t *testing.T) {
	for _, order := range []int{1, 2, 3, 5} {
		re := NewRefElement(1, order)
		var sum float64
		for i := 0; i < re.Nrp; i++ {
			sum += re.Wgq.At(i, 0)
		}
		if !approxEqual(sum, 2.0, 1e-9) {
			t.Fatalf("order %d: Gauss weights sum to %v, want 2", order, sum)
		}
	}
}

// Q1d interpolates nodal values onto the Gauss points, and Dg1d
// differentiates them there; both are built from the same Vinv as
// Child0/Child1, so the constant-reproduction and zero-derivative
// invariants carry over identically.
func TestQ1dAndDg1dOnConstantInput(t *testing.T) {
	re := NewRefElement(1, 4)
	ones := make([]float64, re.Nrp)
	for i := range ones {
		ones[i] = 1
	}
	onesMat := utils.NewMatrix(re.Nrp, 1, ones)

	q := re.Q1d.Mul(onesMat)
	for i := 0; i < re.Nrp; i++ {
		if !approxEqual(q.At(i, 0), 1, 1e-9) {
			t.Fatalf("Q1d * ones row %d = %v, want 1", i, q.At(i, 0))
		}
	}

	dg := re.Dg1d.Mul(onesMat)
	for i := 0; i < re.Nrp; i++ {
		if !approxEqual(dg.At(i, 0), 0, 1e-9) {
			t.Fatalf("Dg1d * ones row %d = %v, want 0", i, dg.At(i, 0))
		}
	}
}

func TestNewRefElementNpIsNrpToTheDim(t *testing.T) {
	re := NewRefElement(3, 2)
	if re.Np != 27 {
		t.Fatalf("Np = %d, want 27 (3^3)", re.Np)
	}
}

// Lagrange/modal interpolation reproduces polynomials already inside its
// span exactly; the constant function (degree 0) is always inside the span
// for any order >= 0, so Child0/Child1 applied to an all-ones nodal vector
// must return an all-ones vector, regardless of where the child maps to
// within the parent.
func TestChildInterpolationReproducesConstantExactly(t *testing.T) {
	re := NewRefElement(1, 3)
	ones := make([]float64, re.Nrp)
	for i := range ones {
		ones[i] = 1
	}
	onesMat := utils.NewMatrix(re.Nrp, 1, ones)
	for _, name := range []string{"Child0", "Child1"} {
		var m = re.Child0
		if name == "Child1" {
			m = re.Child1
		}
		out := m.Mul(onesMat)
		for i := 0; i < re.Nrp; i++ {
			got := out.At(i, 0)
			if !approxEqual(got, 1, 1e-9) {
				t.Fatalf("%s * ones row %d = %v, want 1", name, i, got)
			}
		}
	}
}
