// Package partition assigns a flat octree leaf list to ranks via METIS
// k-way graph partitioning, the alternative to sfc.DistTreeSort's
// SFC-based partitioning that cmd/run.go uses for --strategy=metis (see
// DESIGN.md's "Known gaps"). Grounded on DG3D/mesh/mesh_partitioner.go's MeshPartitioner,
// re-targeted from a tet/hex/prism/pyramid mesh's face-adjacency dual
// graph to an octree leaf list's.
package partition

import (
	"fmt"

	metis "github.com/notargets/go-metis"

	"github.com/notargets/adaptoct/octree"
)

// Config mirrors DG3D/mesh/mesh_partitioner.go's PartitionConfig, scoped
// down to this module's uniform-cost leaves: every octree leaf costs the
// same to compute (unlike a mixed tet/hex/prism/pyramid mesh), so there
// is no vertex-weight model to carry, and every shared face costs the
// same to communicate across, so there is no edge-weight model either.
type Config struct {
	NumParts        int32
	ImbalanceFactor float32 // e.g. 1.05 for 5% allowed imbalance
	Objective       string  // "cut" or "vol"; "vol" minimizes communication volume
}

// DefaultConfig mirrors DefaultPartitionConfig's defaults.
func DefaultConfig(nparts int32) *Config {
	return &Config{NumParts: nparts, ImbalanceFactor: 1.05, Objective: "vol"}
}

// PartitionLeaves assigns each of leaves[i] to a rank in
// [0, cfg.NumParts), via METIS k-way partitioning of the leaves'
// face-adjacency dual graph.
func PartitionLeaves(leaves []octree.TreeNode, cfg *Config) ([]int, error) {
	n := len(leaves)
	if n == 0 {
		return nil, nil
	}
	if cfg.NumParts < 1 {
		return nil, fmt.Errorf("partition: NumParts must be >= 1, got %d", cfg.NumParts)
	}
	if cfg.NumParts == 1 {
		return make([]int, n), nil
	}

	xadj, adjncy := buildLeafAdjacency(leaves)

	opts := make([]int32, metis.NoOptions)
	if err := metis.SetDefaultOptions(opts); err != nil {
		return nil, fmt.Errorf("partition: SetDefaultOptions: %w", err)
	}
	if cfg.Objective == "vol" {
		opts[metis.OptionObjType] = metis.ObjTypeVol
	} else {
		opts[metis.OptionObjType] = metis.ObjTypeCut
	}
	ubvec := []float32{cfg.ImbalanceFactor}

	part, _, err := metis.PartGraphKwayWeighted(xadj, adjncy, nil, nil, cfg.NumParts, nil, ubvec, opts)
	if err != nil {
		return nil, fmt.Errorf("partition: METIS partitioning failed: %w", err)
	}

	out := make([]int, n)
	for i, p := range part {
		out[i] = int(p)
	}
	return out, nil
}

// buildLeafAdjacency builds METIS' CSR dual graph (xadj/adjncy): leaves i
// and j are adjacent if they share a (Dim-1)-face, including across a
// 2:1 coarse/fine refinement boundary. O(n^2) box-overlap tests, fine at
// the leaf counts this module's regular test grids produce; a production
// run would bucket leaves spatially first.
func buildLeafAdjacency(leaves []octree.TreeNode) (xadj, adjncy []int32) {
	n := len(leaves)
	adjList := make([][]int32, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if facesAdjacent(leaves[i], leaves[j]) {
				adjList[i] = append(adjList[i], int32(j))
				adjList[j] = append(adjList[j], int32(i))
			}
		}
	}
	xadj = make([]int32, n+1)
	for i := 0; i < n; i++ {
		xadj[i+1] = xadj[i] + int32(len(adjList[i]))
	}
	adjncy = make([]int32, 0, xadj[n])
	for i := 0; i < n; i++ {
		adjncy = append(adjncy, adjList[i]...)
	}
	return xadj, adjncy
}

// facesAdjacent reports whether a and b, as axis-aligned hypercubes,
// share a (Dim-1)-dimensional face: their coordinate ranges must overlap
// with positive width on every axis but exactly one, where they must
// touch with zero width. An edge- or corner-only touch (more than one
// zero-width axis) does not count as a face.
func facesAdjacent(a, b octree.TreeNode) bool {
	if a.Dim != b.Dim {
		return false
	}
	touching := 0
	for d := 0; d < a.Dim; d++ {
		aLo, aHi := a.Coords[d], a.Coords[d]+a.Len()
		bLo, bHi := b.Coords[d], b.Coords[d]+b.Len()
		lo, hi := aLo, aHi
		if bLo > lo {
			lo = bLo
		}
		if bHi < hi {
			hi = bHi
		}
		if lo > hi {
			return false
		}
		if lo == hi {
			touching++
		}
	}
	return touching == 1
}
