// Package refel builds the reference-element tables a tensor-product
// high-order element needs: 1D Gauss-Lobatto-Legendre nodes, the modal
// Vandermonde matrix and its inverse, the nodal differentiation matrix, and
// the parent-to-child interpolation matrices used when a hanging node's
// value must be recovered from its owning element's nodal expansion.
//
// The 1D machinery is grounded on DG1D/elements.go's Jacobi-polynomial
// construction (JacobiGL, JacobiGQ, Vandermonde1D, JacobiP, GradJacobiP);
// the parent-child interpolation matrices and their tensor-product
// application across Dim axes are grounded on
// _examples/original_source/FEM/include/refel.h's RefElement class
// (ip_1D_0/ip_1D_1, I1D_Parent2Child/I3D_Parent2Child/IKD_Parent2Child).
package refel

import (
	"fmt"
	"math"

	"github.com/notargets/adaptoct/utils"
)

// RefElement holds every precomputed table needed to evaluate, differentiate,
// and transfer a degree-Order tensor-product nodal expansion between a
// parent octant and one of its 2^Dim children, along any one of Dim axes.
type RefElement struct {
	Dim   int
	Order int
	Nrp   int // nodes per 1D axis, Order+1
	Np    int // nodes per element, Nrp^Dim

	R1D utils.Matrix // Nrp x 1: GLL nodes in [-1,1]
	W1D utils.Matrix // Nrp x 1: Gauss-Lobatto quadrature weights

	V1D    utils.Matrix // Nrp x Nrp: modal Vandermonde
	V1Dinv utils.Matrix
	Dr1D   utils.Matrix // Nrp x Nrp: nodal differentiation matrix, Vr*Vinv

	// Child0 maps parent-nodal values to the nodal values of the child
	// occupying the lower half [-1,0] of the parent's reference interval;
	// Child1 the upper half [0,1]. Child{0,1}T are their transposes, used
	// to accumulate a child's contribution back onto its parent.
	Child0  utils.Matrix
	Child1  utils.Matrix
	Child0T utils.Matrix
	Child1T utils.Matrix

	// G1D/Wgq are an interior Gauss-Legendre point/weight set distinct
	// from the GLL set R1D/W1D: Q1d interpolates nodal (R1D) values onto
	// G1D for quadrature, Dg1d evaluates their derivative there. QT1d/
	// DgT1d are the transposes used to accumulate a quadrature-point
	// contribution back onto the nodal basis, mirroring refel.h's
	// quad_1D/quadT_1D/Dg/DgT.
	G1D   utils.Matrix
	Wgq   utils.Matrix
	Q1d   utils.Matrix
	QT1d  utils.Matrix
	Dg1d  utils.Matrix
	DgT1d utils.Matrix
}

// NewRefElement builds the reference element for dim axes at polynomial
// order order (order+1 GLL nodes per axis).
func NewRefElement(dim, order int) *RefElement {
	if dim < 1 {
		panic(fmt.Sprintf("refel: dim must be >= 1, got %d", dim))
	}
	if order < 1 {
		panic(fmt.Sprintf("refel: order must be >= 1, got %d", order))
	}

	r := jacobiGL(0, 0, order)
	nrp := order + 1

	w := gllWeights(r, order)

	V := vandermonde1D(r, order)
	Vinv, err := (utils.Matrix{M: V}).Inverse()
	if err != nil {
		panic(fmt.Sprintf("refel: singular Vandermonde matrix: %v", err))
	}
	Vr := gradVandermonde1D(r, order)
	Dr := (utils.Matrix{M: Vr}).Mul(Vinv)

	child0Nodes := mapToParent(r, 0)
	child1Nodes := mapToParent(r, 1)
	Vchild0 := vandermonde1D(child0Nodes, order)
	Vchild1 := vandermonde1D(child1Nodes, order)
	Child0 := (utils.Matrix{M: Vchild0}).Mul(Vinv)
	Child1 := (utils.Matrix{M: Vchild1}).Mul(Vinv)

	g, wg := jacobiGQ(0, 0, order)
	Vg := vandermonde1D(g, order)
	gradVg := gradVandermonde1D(g, order)
	Q1d := (utils.Matrix{M: Vg}).Mul(Vinv)
	Dg1d := (utils.Matrix{M: gradVg}).Mul(Vinv)

	re := &RefElement{
		Dim:     dim,
		Order:   order,
		Nrp:     nrp,
		Np:      ipow(nrp, dim),
		R1D:     utils.NewMatrix(nrp, 1, r),
		W1D:     utils.NewMatrix(nrp, 1, w),
		V1D:     utils.Matrix{M: V},
		V1Dinv:  Vinv,
		Dr1D:    Dr,
		Child0:  Child0,
		Child1:  Child1,
		Child0T: Child0.Transpose(),
		Child1T: Child1.Transpose(),
		G1D:     utils.NewMatrix(nrp, 1, g),
		Wgq:     utils.NewMatrix(nrp, 1, wg),
		Q1d:     Q1d,
		QT1d:    Q1d.Transpose(),
		Dg1d:    Dg1d,
		DgT1d:   Dg1d.Transpose(),
	}
	return re
}

// mapToParent maps a child-local GLL node (in [-1,1]) into the parent's
// reference interval: half==0 targets the lower sub-interval [-1,0], half==1
// the upper sub-interval [0,1].
func mapToParent(childR []float64, half int) []float64 {
	out := make([]float64, len(childR))
	if half == 0 {
		for i, x := range childR {
			out[i] = (x - 1) / 2
		}
	} else {
		for i, x := range childR {
			out[i] = (x + 1) / 2
		}
	}
	return out
}

// gllWeights computes the Gauss-Lobatto-Legendre quadrature weights:
// w_i = 2 / (N(N+1) P_N(x_i)^2), with P_N the classic Legendre polynomial
// (P_N(1) = 1), obtained by scaling the orthonormal jacobiP value used for
// the Vandermonde matrix by sqrt(2/(2N+1)). The weights sum to 2, the
// length of [-1,1].
func gllWeights(r []float64, order int) []float64 {
	n := order + 1
	w := make([]float64, n)
	if order == 1 {
		w[0], w[1] = 1, 1
		return w
	}
	pN := jacobiP(r, 0, 0, order)
	scale := math.Sqrt(2.0 / float64(2*order+1))
	for i := 0; i < n; i++ {
		p := pN[i] * scale
		w[i] = 2.0 / (float64(order) * float64(order+1) * p * p)
	}
	return w
}

func ipow(base, exp int) int {
	r := 1
	for i := 0; i < exp; i++ {
		r *= base
	}
	return r
}
