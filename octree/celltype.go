package octree

import "fmt"

// CellType packs a (dimension, orientation) pair: dim in [0,D], orient a
// D-bit mask of interior-axis indicators. Vertex = (0, 0...0); element
// interior = (D, 1...1).
type CellType struct {
	Dim    uint8
	Orient uint8 // low D bits used
}

// Pack encodes the cell type into a single byte: low nibble is Dim, high
// nibble is the orientation mask (valid for D <= 4).
func (c CellType) Pack() byte {
	return byte(c.Dim&0x0F) | byte(c.Orient&0x0F)<<4
}

// Unpack decodes a packed byte back into a CellType.
func UnpackCellType(b byte) CellType {
	return CellType{Dim: b & 0x0F, Orient: (b >> 4) & 0x0F}
}

// String renders "(dim, orient-bits)" for debugging.
func (c CellType) String() string {
	return fmt.Sprintf("(%d,%0*b)", c.Dim, 4, c.Orient)
}

// ExteriorOrientLow2High returns all 2^dim-1 proper exterior orientations
// (orientation masks excluding the full-interior mask, i.e. excluding
// orient == (1<<dim)-1) sorted by ascending popcount (cell dimension).
func ExteriorOrientLow2High(dim int) []uint8 {
	full := uint8(1<<uint(dim)) - 1
	out := exteriorOrients(dim, full)
	sortByPopcountStable(out, true)
	return out
}

// ExteriorOrientHigh2Low returns the same set sorted by descending
// popcount.
func ExteriorOrientHigh2Low(dim int) []uint8 {
	full := uint8(1<<uint(dim)) - 1
	out := exteriorOrients(dim, full)
	sortByPopcountStable(out, false)
	return out
}

func exteriorOrients(dim int, full uint8) []uint8 {
	out := make([]uint8, 0, int(full))
	for o := uint8(0); o < uint8(1<<uint(dim)); o++ {
		if o == full {
			continue
		}
		out = append(out, o)
	}
	return out
}

func popcount(x uint8) int {
	n := 0
	for x != 0 {
		n += int(x & 1)
		x >>= 1
	}
	return n
}

func sortByPopcountStable(s []uint8, ascending bool) {
	// Small fixed-size insertion sort; |s| <= 2^D-1 <= 15 for D<=4.
	for i := 1; i < len(s); i++ {
		j := i
		for j > 0 {
			a, b := popcount(s[j-1]), popcount(s[j])
			swap := a > b
			if !ascending {
				swap = a < b
			}
			if !swap {
				break
			}
			s[j-1], s[j] = s[j], s[j-1]
			j--
		}
	}
}
