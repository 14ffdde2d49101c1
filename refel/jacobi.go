package refel

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// jacobiP evaluates the order-N, (alpha,beta)-normalized Jacobi polynomial at
// the points in r. Ported from the recurrence in DG1D/elements.go's JacobiP,
// working directly on []float64 rather than utils.Vector (see DESIGN.md:
// utils.Vector's NewVector/Outer/AddInPlace helpers that DG1D's own version
// calls are not present in this module's utils package).
func jacobiP(r []float64, alpha, beta float64, N int) []float64 {
	nc := len(r)
	rg := 1. / math.Sqrt(gamma0(alpha, beta))
	if N == 0 {
		p := make([]float64, nc)
		for i := range p {
			p[i] = rg
		}
		return p
	}

	pl := make([][]float64, N+1)
	pl[0] = make([]float64, nc)
	for i := range pl[0] {
		pl[0][i] = rg
	}

	ab := alpha + beta
	rg1 := 1. / math.Sqrt(gamma1(alpha, beta))
	pl[1] = make([]float64, nc)
	for i, ri := range r {
		pl[1][i] = rg1 * ((ab+2.0)*ri/2.0 + (alpha-beta)/2.0)
	}
	if N == 1 {
		return pl[1]
	}

	a1 := alpha + 1.
	b1 := beta + 1.
	ab1 := ab + 1.
	aold := 2.0 * math.Sqrt(a1*b1/(ab+3.0)) / (ab + 2.0)
	for i := 0; i < N-1; i++ {
		ip1 := float64(i + 1)
		ip2 := ip1 + 1
		h1 := 2.0*ip1 + ab
		anew := 2.0 / (h1 + 2.0) * math.Sqrt(ip2*(ip1+ab1)*(ip1+a1)*(ip1+b1)/(h1+1.0)/(h1+3.0))
		bnew := -(alpha*alpha - beta*beta) / h1 / (h1 + 2.0)
		next := make([]float64, nc)
		for j, rj := range r {
			next[j] = (-aold*pl[i][j] + (rj-bnew)*pl[i+1][j]) / anew
		}
		pl[i+2] = next
		aold = anew
	}
	return pl[N]
}

// gradJacobiP evaluates the derivative of the order-N Jacobi polynomial.
func gradJacobiP(r []float64, alpha, beta float64, N int) []float64 {
	if N == 0 {
		return make([]float64, len(r))
	}
	p := jacobiP(r, alpha+1, beta+1, N-1)
	fN := float64(N)
	fac := math.Sqrt(fN * (fN + alpha + beta + 1))
	out := make([]float64, len(p))
	for i, v := range p {
		out[i] = v * fac
	}
	return out
}

// vandermonde1D builds the (len(r)) x (N+1) Vandermonde matrix of
// order-0..N Jacobi polynomials evaluated at r.
func vandermonde1D(r []float64, N int) *mat.Dense {
	nr := len(r)
	V := mat.NewDense(nr, N+1, nil)
	for j := 0; j <= N; j++ {
		V.SetCol(j, jacobiP(r, 0, 0, j))
	}
	return V
}

// gradVandermonde1D builds the derivative Vandermonde matrix, used to form
// the 1D nodal differentiation matrix Dr = Vr * Vinv.
func gradVandermonde1D(r []float64, N int) *mat.Dense {
	nr := len(r)
	Vr := mat.NewDense(nr, N+1, nil)
	for j := 0; j <= N; j++ {
		Vr.SetCol(j, gradJacobiP(r, 0, 0, j))
	}
	return Vr
}

// jacobiGQ computes the N+1 Gauss quadrature points and weights for the
// Jacobi weight (alpha,beta), via the eigendecomposition of the Jacobi
// matrix (the tridiagonal recurrence-coefficient matrix), exactly as
// DG1D/elements.go's JacobiGQ does, but building the symmetric tridiagonal
// matrix directly with gonum's SymDense rather than utils.NewSymTriDiagonal
// (also absent from this module's utils package).
func jacobiGQ(alpha, beta float64, N int) (x, w []float64) {
	if N == 0 {
		return []float64{-(alpha - beta) / (alpha + beta + 2.)}, []float64{2.}
	}

	h1 := make([]float64, N+1)
	for i := range h1 {
		h1[i] = 2*float64(i) + alpha + beta
	}

	J := mat.NewSymDense(N+1, nil)
	fac := -.5 * (alpha*alpha - beta*beta)
	eps := 1.e-16
	for i := 0; i <= N; i++ {
		d0 := fac / (h1[i] * (h1[i] + 2.))
		if alpha+beta < 10*eps && i == 0 {
			d0 = 0.
		}
		J.SetSym(i, i, d0)
	}
	for i := 0; i < N; i++ {
		ip1 := float64(i + 1)
		d1 := 2. / (h1[i] + 2.)
		d1 *= math.Sqrt(ip1 * (ip1 + alpha + beta) * (ip1 + alpha) * (ip1 + beta) / ((h1[i] + 1.) * (h1[i] + 3.)))
		J.SetSym(i, i+1, d1)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(J, true); !ok {
		panic("refel: eigendecomposition failed computing Gauss quadrature nodes")
	}
	x = eig.Values(nil)

	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	firstRow := mat.Row(nil, 0, &vecs)
	w = make([]float64, len(firstRow))
	scale := gamma0(alpha, beta)
	for i, v := range firstRow {
		w[i] = v * v * scale
	}
	return x, w
}

// jacobiGL computes the N+1 Gauss-Lobatto-Legendre nodes: the two endpoints
// plus the N-1 interior Gauss points of the (alpha+1,beta+1) weight.
func jacobiGL(alpha, beta float64, N int) []float64 {
	x := make([]float64, N+1)
	if N == 1 {
		x[0], x[1] = -1, 1
		return x
	}
	xint, _ := jacobiGQ(alpha+1, beta+1, N-2)
	x[0] = -1
	x[N] = 1
	copy(x[1:N], xint)
	return x
}

func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	a1 := alpha + 1.
	b1 := beta + 1.
	return math.Gamma(a1) * math.Gamma(b1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

func gamma1(alpha, beta float64) float64 {
	ab := alpha + beta
	a1 := alpha + 1.
	b1 := beta + 1.
	return a1 * b1 * gamma0(alpha, beta) / (ab + 3.0)
}
