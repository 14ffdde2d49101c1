package nsort

import "github.com/james-bowman/sparse"

// ScatterIncidenceMatrix builds the rank x ownedNode boolean incidence
// matrix implied by a ScatterMap: entry (r, i) is 1 iff owned index i is
// sent to rank r. Built the way DG1D/startup.go's Connect1D builds its
// face-to-vertex incidence matrix (a sparse.DOK filled by a single pass
// over (row, col) pairs, then frozen with ToCSR for downstream sparse
// arithmetic) rather than with a dense nProc x nOwned allocation.
func ScatterIncidenceMatrix(sm ScatterMap, nOwned int) *sparse.CSR {
	dok := sparse.NewDOK(len(sm.Offsets)-1, nOwned)
	for _, r := range sm.Procs {
		for _, idx := range sm.Indices[sm.Offsets[r]:sm.Offsets[r+1]] {
			dok.Set(r, idx, 1)
		}
	}
	return dok.ToCSR()
}

// SharedOwnedNodeCount returns, for two ranks' scatter maps against the
// same owned-node vector, how many owned indices both ranks send out —
// the nonzero count of M*M^T off the diagonal, computed the way
// Connect1D squares its incidence matrix to find shared faces.
func SharedOwnedNodeCount(a, b ScatterMap, nOwned int) int {
	ma := ScatterIncidenceMatrix(a, nOwned)
	mb := ScatterIncidenceMatrix(b, nOwned)
	var prod sparse.CSR
	prod.Mul(ma, mb.T())
	nr, nc := prod.Dims()
	count := 0
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			if prod.At(i, j) != 0 {
				count++
			}
		}
	}
	return count
}
