package octree

import "fmt"

// TreeNode is an octant at level Lev with anchor Coords, each a multiple of
// 2^(MaxDepth-Lev).
type TreeNode struct {
	Dim    int
	Coords []Coord
	Lev    Level
}

// NewTreeNode builds a TreeNode, panicking if coords does not have length
// dim (a precondition violation).
func NewTreeNode(dim int, coords []Coord, lev Level) TreeNode {
	if len(coords) != dim {
		panic(fmt.Sprintf("octree: coords length %d does not match dim %d", len(coords), dim))
	}
	c := make([]Coord, dim)
	copy(c, coords)
	return TreeNode{Dim: dim, Coords: c, Lev: lev}
}

// NumChildren returns 2^Dim.
func (t TreeNode) NumChildren() int { return 1 << t.Dim }

// LenAtLevel returns the side length, 2^(MaxDepth-lev), of an octant at
// level lev.
func LenAtLevel(lev Level) Coord {
	return 1 << (MaxDepth - uint(lev))
}

// Len returns this octant's own side length.
func (t TreeNode) Len() Coord { return LenAtLevel(t.Lev) }

// GetMortonIndex returns the Morton child index relative to the ancestor
// at `lev`: bit (MaxDepth-lev) of each coordinate, packed low-to-high
// across axes (axis 0 occupies the low bit).
func (t TreeNode) GetMortonIndex(lev Level) int {
	bitPos := uint(MaxDepth) - uint(lev)
	idx := 0
	for d := 0; d < t.Dim; d++ {
		bit := (t.Coords[d] >> bitPos) & 1
		idx |= int(bit) << uint(d)
	}
	return idx
}

// GetChildMorton returns the child octant whose Morton index relative to
// the receiver (as parent) is i.
func (t TreeNode) GetChildMorton(i int) TreeNode {
	childLev := t.Lev + 1
	childLen := LenAtLevel(childLev)
	coords := make([]Coord, t.Dim)
	for d := 0; d < t.Dim; d++ {
		bit := Coord((i >> uint(d)) & 1)
		coords[d] = t.Coords[d] + bit*childLen
	}
	return TreeNode{Dim: t.Dim, Coords: coords, Lev: childLev}
}

// GetParent returns the octant's parent. Panics at the root (precondition
// violation).
func (t TreeNode) GetParent() TreeNode {
	if t.Lev == 0 {
		panic("octree: GetParent called on root octant")
	}
	parentLen := LenAtLevel(t.Lev - 1)
	coords := make([]Coord, t.Dim)
	for d := 0; d < t.Dim; d++ {
		coords[d] = (t.Coords[d] / parentLen) * parentLen
	}
	return TreeNode{Dim: t.Dim, Coords: coords, Lev: t.Lev - 1}
}

// IsOnDomainBoundary reports whether any coordinate is 0 or
// 2^MaxDepth - 2^(MaxDepth-Lev), i.e. the octant touches the domain's
// outer boundary.
func (t TreeNode) IsOnDomainBoundary() bool {
	hi := DomainExtent - t.Len()
	for d := 0; d < t.Dim; d++ {
		if t.Coords[d] == 0 || t.Coords[d] == hi {
			return true
		}
	}
	return false
}

// IsAncestor reports whether the receiver is a strict ancestor of other.
func (t TreeNode) IsAncestor(other TreeNode) bool {
	if t.Lev >= other.Lev {
		return false
	}
	len := t.Len()
	for d := 0; d < t.Dim; d++ {
		if (other.Coords[d]/len)*len != t.Coords[d] {
			return false
		}
	}
	return true
}

// Equal compares two TreeNodes by (coords, level).
func (t TreeNode) Equal(other TreeNode) bool {
	if t.Dim != other.Dim || t.Lev != other.Lev {
		return false
	}
	for d := 0; d < t.Dim; d++ {
		if t.Coords[d] != other.Coords[d] {
			return false
		}
	}
	return true
}

// SFCDim, SFCCoord and SFCLevel satisfy sfc.Sortable without colliding with
// the Dim/Coords/Lev fields.
func (t TreeNode) SFCDim() int             { return t.Dim }
func (t TreeNode) SFCCoord(axis int) Coord { return t.Coords[axis] }
func (t TreeNode) SFCLevel() Level         { return t.Lev }

// String renders the octant compactly, e.g. for debug logging.
func (t TreeNode) String() string {
	return fmt.Sprintf("TreeNode{coords=%v, lev=%d}", t.Coords, t.Lev)
}
