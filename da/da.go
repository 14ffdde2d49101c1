// Package da is the distributed adaptive layer's consumer surface: the
// API an operator-assembly layer (element matrix/vector kernels, a
// Poisson/heat solve, a conjugate-gradient driver — all out of scope
// here) depends on without reaching into the node-sort core itself.
//
// Grounded on spec.md §4.8's named surface
// (getNumNodesPerElement/getReferenceElement/getLocalNodalSz/
// getGlobalNodeSz/getBoundaryNodeIndices/createVector/destroyVector,
// active-comm queries, matVec-style element iteration) and on
// _examples/original_source/FEM's DA class, which plays the same role
// ahead of its feMatrix/feVector CRTP layer.
package da

import (
	"fmt"
	"sort"

	"github.com/notargets/adaptoct/comm"
	"github.com/notargets/adaptoct/element"
	"github.com/notargets/adaptoct/nsort"
	"github.com/notargets/adaptoct/octree"
	"github.com/notargets/adaptoct/refel"
)

// DA binds a local set of leaf octants to the reference element, owned
// CG-node vector, and scatter map that nsort/refel produce, and exposes
// only the query and matrix-free-iteration surface the excluded operator
// layer needs.
type DA struct {
	dim, order int
	refElem    *refel.RefElement
	c          comm.Comm
	active     bool

	elements []octree.TreeNode
	// elemNodes[e] holds element e's Np nodal points in refel axis order
	// (see elementNodeOrder); elemDofIdx[e][i] is the slot in the local
	// DOF vector that node occupies, or -1 if the node is owned by another
	// rank or is hanging (no independent DOF — its value comes from
	// parent2Child interpolation, which is the excluded operator layer's
	// responsibility).
	elemNodes  [][]octree.TNPoint
	elemDofIdx [][]int

	// owned holds every surviving record this rank's dist_countCGNodes
	// pass produced: Yes for CG nodes this rank owns, No for CG nodes a
	// remote rank owns (hanging nodes have no record). dofIndex[i] is
	// owned[i]'s position in the compact, Yes-only local DOF vector, or -1
	// for a No record.
	owned      []octree.TNPoint
	dofIndex   []int
	localSz    int
	globalSize int
	scatter    nsort.ScatterMap
}

// coordKey identifies a node by location alone, mirroring
// nsort/countcg.go's coordKey: two element-local emissions of the same
// physical node can carry different Level tags (the emitting element's
// own level), so matching on Coords alone is what lets a fine element's
// hanging-node emission find the coarse element's surviving record.
func coordKey(p octree.TNPoint) string {
	return fmt.Sprint(p.Coords)
}

// NewDA builds the reference element, emits every local element's nodal
// grid, runs the distributed CG node-sort over the union, and indexes
// each element's nodes against the resulting owned/hanging record set.
// elements is this rank's post-partition leaf set; treePartStart is the
// global array of per-rank SFC range starts dist_countCGNodes needs to
// build the boundary exchange layer.
func NewDA(dim, order int, c comm.Comm, elements []octree.TreeNode, treePartStart []octree.TreeNode) (*DA, error) {
	if dim < 1 {
		return nil, fmt.Errorf("da: dim must be >= 1, got %d", dim)
	}
	if order < 1 {
		return nil, fmt.Errorf("da: order must be >= 1, got %d", order)
	}

	refElem := refel.NewRefElement(dim, order)
	perm := elementNodeOrder(dim, refElem.Nrp)

	elemNodes := make([][]octree.TNPoint, len(elements))
	var all []octree.TNPoint
	for e, elem := range elements {
		if elem.Dim != dim {
			return nil, fmt.Errorf("da: element %d has dim %d, want %d", e, elem.Dim, dim)
		}
		pts := element.AppendNodes(elem, order)
		elemNodes[e] = reorderPoints(pts, perm)
		all = append(all, elemNodes[e]...)
	}

	// CompactInstances/Classify (run inside DistCountCGNodes) require
	// coincident points adjacent; (coords, level) lexicographic order
	// gives that grouping just as well as true SFC order would, mirroring
	// nsort/countcg_test.go's sortByCoords stand-in. Real SFC partitioning
	// across ranks is distTreeSort's job, upstream of DA construction.
	sort.Slice(all, func(i, j int) bool { return all[i].Less(all[j]) })

	globalCount, newEnd, faces := nsort.DistCountCGNodes(c, all, order, treePartStart)
	owned := all[:newEnd]
	scatter := nsort.ComputeScatterMap(owned, faces, c.Size())

	dofIndex := make([]int, len(owned))
	localSz := 0
	index := make(map[string]int, len(owned))
	for i, p := range owned {
		index[coordKey(p)] = i
		if p.IsSelected == octree.Yes {
			dofIndex[i] = localSz
			localSz++
		} else {
			dofIndex[i] = -1
		}
	}

	elemDofIdx := make([][]int, len(elements))
	for e := range elements {
		idxs := make([]int, len(elemNodes[e]))
		for i, p := range elemNodes[e] {
			j, ok := index[coordKey(p)]
			if !ok {
				idxs[i] = -1
				continue
			}
			idxs[i] = dofIndex[j]
		}
		elemDofIdx[e] = idxs
	}

	return &DA{
		dim: dim, order: order, refElem: refElem, c: c, active: true,
		elements: elements, elemNodes: elemNodes, elemDofIdx: elemDofIdx,
		owned: owned, dofIndex: dofIndex, localSz: localSz,
		globalSize: int(globalCount), scatter: scatter,
	}, nil
}

// GetNumNodesPerElement returns Np, the tensor-product node count every
// element carries regardless of how many are independent DOFs.
func (d *DA) GetNumNodesPerElement() int { return d.refElem.Np }

// GetReferenceElement returns the basis/interpolation tables shared by
// every element at this DA's (dim, order).
func (d *DA) GetReferenceElement() *refel.RefElement { return d.refElem }

// GetLocalNodalSz returns this rank's compact local DOF count (Yes-owned
// CG nodes only; hanging nodes are not independent DOFs).
func (d *DA) GetLocalNodalSz() int { return d.localSz }

// GetGlobalNodeSz returns the global unique-CG-node count dist_countCGNodes
// established via its Allreduce.
func (d *DA) GetGlobalNodeSz() int { return d.globalSize }

// GetBoundaryNodeIndices returns, in ascending order, the local DOF
// vector positions of every owned node on the domain boundary.
func (d *DA) GetBoundaryNodeIndices() []int {
	var out []int
	for i, p := range d.owned {
		if p.IsSelected == octree.Yes && p.IsOnDomainBoundary() {
			out = append(out, d.dofIndex[i])
		}
	}
	return out
}

// CreateVector allocates a zeroed local DOF vector.
func (d *DA) CreateVector() []float64 { return make([]float64, d.localSz) }

// DestroyVector releases v's backing storage. Go's allocator makes this
// unnecessary for correctness, but the call is kept so callers ported
// from the excluded C++ DA::createVector/destroyVector pairing don't have
// to special-case this backend.
func (d *DA) DestroyVector(v *[]float64) { *v = nil }

// GetComm returns the communicator this DA was built with.
func (d *DA) GetComm() comm.Comm { return d.c }

// IsActive reports whether this rank participates in the active
// sub-communicator (see spec.md §5's active/inactive partition note for
// CG solves when the rank count doesn't divide the domain evenly).
// comm.Local never splits, so this is true unless SetActive(false) was
// called explicitly.
func (d *DA) IsActive() bool { return d.active }

// SetActive flips this rank's active/inactive membership.
func (d *DA) SetActive(active bool) { d.active = active }

// ScatterMap returns the ghost-exchange map dist_countCGNodes' scatter
// faces produced for this rank's owned vector.
func (d *DA) ScatterMap() nsort.ScatterMap { return d.scatter }

// NumElements returns the number of local leaf elements this DA indexes.
func (d *DA) NumElements() int { return len(d.elements) }

// Element returns local element e's TreeNode.
func (d *DA) Element(e int) octree.TreeNode { return d.elements[e] }
