// Package octree implements the octant (TreeNode) and nodal-point (TNPoint)
// types the SFC sort and CG node-sort core operate on.
package octree

// Coord is the fixed-width unsigned coordinate type. It must be wide
// enough to hold MaxDepth bits per axis.
type Coord = uint32

// MaxDepth is the maximum refinement level supported by Coord's bit width.
// Kept at 29 (not 32) so that DomainExtent (2^29) and the sum of a
// coordinate and a cell length stay well inside a uint32. GetMortonIndex/
// GetChildMorton pack only Dim bits (one per axis) at a time.
const MaxDepth = 29

// DomainExtent is 2^MaxDepth, the side length of the root domain cube.
const DomainExtent Coord = 1 << MaxDepth

// Level is a refinement level, 0 at the root.
type Level = uint8
