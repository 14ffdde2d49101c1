// Package element emits the nodal points (and their derived sub-cells) of a
// single octant at a chosen polynomial order. Everything here is pure
// geometry over octree.TreeNode/octree.TNPoint; none of it touches the SFC,
// ownership, or communication layers.
package element

import "github.com/notargets/adaptoct/octree"

// AppendNodes emits the (order+1)^D nodes of the regular sub-grid
// anchor + (len*j)/order for j in [0,order]^D, each tagged at the element's
// own level. order must be >= 1.
func AppendNodes(elem octree.TreeNode, order int) []octree.TNPoint {
	if order < 1 {
		panic("element: AppendNodes requires order >= 1")
	}
	out := make([]octree.TNPoint, 0, numGridPoints(elem.Dim, order+1))
	idx := make([]int, elem.Dim)
	appendGrid(elem, order, idx, 0, 0, order, &out)
	return out
}

// AppendInteriorNodes emits the (order-1)^D nodes strictly interior to elem,
// j in [1,order-1]^D. Returns an empty slice when order < 2.
func AppendInteriorNodes(elem octree.TreeNode, order int) []octree.TNPoint {
	if order < 2 {
		return nil
	}
	out := make([]octree.TNPoint, 0, numGridPoints(elem.Dim, order-1))
	idx := make([]int, elem.Dim)
	appendGrid(elem, order, idx, 0, 1, order-1, &out)
	return out
}

// AppendExteriorNodes emits the boundary nodes of elem's order-k regular
// grid: every j in [0,order]^D with at least one axis at 0 or order. Built
// by skip-ahead iteration rather than filtering the full grid: for each
// axis chosen as the first-boundary axis, earlier axes are constrained to
// the interior range so no point is emitted twice.
func AppendExteriorNodes(elem octree.TreeNode, order int) []octree.TNPoint {
	if order < 1 {
		panic("element: AppendExteriorNodes requires order >= 1")
	}
	var out []octree.TNPoint
	idx := make([]int, elem.Dim)
	for fixedAxis := 0; fixedAxis < elem.Dim; fixedAxis++ {
		for _, side := range [2]int{0, order} {
			idx[fixedAxis] = side
			appendSkipAhead(elem, order, idx, fixedAxis, &out)
		}
	}
	return out
}

// appendSkipAhead fills axes (0..fixedAxis-1) over the interior range and
// axes (fixedAxis+1..D-1) over the full range, with idx[fixedAxis] already
// pinned by the caller.
func appendSkipAhead(elem octree.TreeNode, order int, idx []int, fixedAxis int, out *[]octree.TNPoint) {
	dim := elem.Dim
	lo := make([]int, dim)
	hi := make([]int, dim)
	for d := 0; d < dim; d++ {
		switch {
		case d == fixedAxis:
			lo[d], hi[d] = idx[d], idx[d]
		case d < fixedAxis:
			lo[d], hi[d] = 1, order-1
			if lo[d] > hi[d] {
				return // no interior range to assign to this leading axis
			}
		default:
			lo[d], hi[d] = 0, order
		}
	}
	walk := make([]int, dim)
	copy(walk, lo)
	for {
		pt := gridPoint(elem, order, walk)
		*out = append(*out, pt)
		d := dim - 1
		for d >= 0 {
			if d == fixedAxis {
				d--
				continue
			}
			walk[d]++
			if walk[d] <= hi[d] {
				break
			}
			walk[d] = lo[d]
			d--
		}
		if d < 0 {
			break
		}
	}
}

// appendGrid recursively enumerates idx over [lo,hi]^D (one axis per
// recursion level) and appends the resulting grid point.
func appendGrid(elem octree.TreeNode, order int, idx []int, axis, lo, hi int, out *[]octree.TNPoint) {
	if axis == elem.Dim {
		*out = append(*out, gridPoint(elem, order, idx))
		return
	}
	for j := lo; j <= hi; j++ {
		idx[axis] = j
		appendGrid(elem, order, idx, axis+1, lo, hi, out)
	}
}

// gridPoint computes the TNPoint at grid index idx of elem's order-k
// sub-grid, using integer arithmetic: len*j/order is exact when order
// divides len*j (len is a power of two, so always for power-of-two orders
// up to len); otherwise the division truncates toward the anchor.
func gridPoint(elem octree.TreeNode, order int, idx []int) octree.TNPoint {
	len64 := uint64(elem.Len())
	coords := make([]octree.Coord, elem.Dim)
	for d := 0; d < elem.Dim; d++ {
		coords[d] = elem.Coords[d] + octree.Coord(len64*uint64(idx[d])/uint64(order))
	}
	return octree.NewTNPoint(elem.Dim, coords, elem.Lev)
}

func numGridPoints(dim, pointsPerAxis int) int {
	n := 1
	for d := 0; d < dim; d++ {
		n *= pointsPerAxis
	}
	return n
}

// KFace is a sub-cell produced by AppendKFaces: its own anchor position
// (as a TreeNode at the parent element's level) plus its derived cell type.
type KFace struct {
	Anchor octree.TreeNode
	Type   octree.CellType
}

// AppendKFaces decomposes the face of elem described by faceType (a
// cellDim/orientation pair whose set bits mark the axes free to vary across
// the face; unset bits are already pinned by face.Coords) into its 3^fdim
// sub-cells. Each free axis is subdivided into low/mid/high thirds; an axis
// that lands on "mid" stays free (interior) in the sub-cell's own cell
// type, while low/high pin it, so the sub-cells span every dimension from
// 0 (corners) up to fdim (the face's own interior) at once.
func AppendKFaces(face octree.TreeNode, faceType octree.CellType) []KFace {
	freeAxes := make([]int, 0, faceType.Dim)
	for d := 0; d < face.Dim; d++ {
		if faceType.Orient&(1<<uint(d)) != 0 {
			freeAxes = append(freeAxes, d)
		}
	}
	half := face.Len() / 2
	var out []KFace
	vd := make([]int, len(freeAxes))
	var recurse func(i int)
	recurse = func(i int) {
		if i == len(freeAxes) {
			coords := make([]octree.Coord, face.Dim)
			copy(coords, face.Coords)
			var orient uint8
			for k, axis := range freeAxes {
				switch vd[k] {
				case 0:
					// coords[axis] already at the low anchor.
				case 1:
					coords[axis] += half
					orient |= 1 << uint(axis)
				case 2:
					coords[axis] += face.Len()
				}
			}
			sub := octree.NewTreeNode(face.Dim, coords, face.Lev)
			out = append(out, KFace{
				Anchor: sub,
				Type:   octree.CellType{Dim: uint8(popcountBits(orient)), Orient: orient},
			})
			return
		}
		for d := 0; d < 3; d++ {
			vd[i] = d
			recurse(i + 1)
		}
	}
	recurse(0)
	return out
}

func popcountBits(x uint8) int {
	n := 0
	for x != 0 {
		n += int(x & 1)
		x >>= 1
	}
	return n
}
