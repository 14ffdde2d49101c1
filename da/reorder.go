package da

import "github.com/notargets/adaptoct/octree"

// elementNodeOrder computes the permutation that takes a dim-axis,
// nrp-points-per-axis tensor-product grid out of element.AppendNodes'
// emission order into refel.KroneckerProduct's axis-order convention.
//
// AppendNodes' appendGrid recurses with axis 0 as the outermost loop and
// axis dim-1 as the innermost, so axis dim-1 is fastest-varying across
// emitted points (element/geometry.go). refel.KroneckerProduct instead
// treats axis 0 as fastest-varying (refel/kron.go). perm[i] is the
// refel-order position of the node AppendNodes emitted at position i:
// out[perm[i]] = in[i] converts one convention's flat buffer to the
// other's.
func elementNodeOrder(dim, nrp int) []int {
	n := 1
	for d := 0; d < dim; d++ {
		n *= nrp
	}
	perm := make([]int, n)
	idx := make([]int, dim)
	for i := 0; i < n; i++ {
		rem := i
		for d := dim - 1; d >= 0; d-- {
			idx[d] = rem % nrp
			rem /= nrp
		}
		refelIdx := 0
		stride := 1
		for d := 0; d < dim; d++ {
			refelIdx += idx[d] * stride
			stride *= nrp
		}
		perm[i] = refelIdx
	}
	return perm
}

// reorderPoints applies perm (from elementNodeOrder) to pts: out[perm[i]]
// = pts[i].
func reorderPoints(pts []octree.TNPoint, perm []int) []octree.TNPoint {
	out := make([]octree.TNPoint, len(pts))
	for i, p := range pts {
		out[perm[i]] = p
	}
	return out
}
