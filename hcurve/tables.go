package hcurve

import "fmt"

// ChildID is a Morton-order child index in [0, NC).
type ChildID uint8

// RotID indexes a rotation/orientation state in [0, NumRotations).
type RotID uint16

// Tables holds the rotation permutation and child-orientation lookup
// tables for one dimension:
//
//	rotations[pRot][0:NC]    -> SFC order -> Morton child index
//	rotations[pRot][NC:2*NC] -> inverse permutation
//	HilbertTable[pRot][morton child] -> child rotation id
//
// Dim >= 3 uses a single rotation state (pRot is always 0): the SFC is the
// Morton (Z-order) curve, which trivially satisfies ancestor contiguity
// (any two octants sharing an ancestor have every octant between them in
// SFC order also descending from it) without requiring Hilbert spatial
// continuity. Dim == 2 uses a genuine rotating Hilbert curve with 4
// rotation states, grounded on the classic 2-bit rotate/Gray-code state
// machine.
type Tables struct {
	Dim          int
	NC           int // 2^Dim
	NumRotations int
	rotations    [][]ChildID // [pRot][0:2*NC)
	hilbertTable [][]RotID   // [pRot][morton child]
}

var active *Tables

// InitHcurve builds the process-wide SFC tables for the given dimension.
// Must be called before any locTreeSort/distTreeSort/countCGNodes
// operation. Mirrors the original's _InitializeHcurve(dim).
func InitHcurve(dim int) error {
	if dim < 2 {
		return fmt.Errorf("hcurve: dimension must be >= 2, got %d", dim)
	}
	active = buildTables(dim)
	return nil
}

// DestroyHcurve tears down the process-wide SFC tables. Mirrors
// _DestroyHcurve().
func DestroyHcurve() {
	active = nil
}

// Active returns the currently initialized table set, or nil if
// InitHcurve has not been called.
func Active() *Tables {
	return active
}

func buildTables(dim int) *Tables {
	nc := 1 << dim
	if dim == 2 {
		return buildHilbert2D()
	}
	return buildMorton(dim, nc)
}

// buildMorton builds the degenerate single-rotation-state table set for
// the Morton (Z-order) curve: SFC order equals Morton order, and no child
// ever changes rotation state.
func buildMorton(dim, nc int) *Tables {
	t := &Tables{Dim: dim, NC: nc, NumRotations: 1}
	perm := make([]ChildID, 2*nc)
	for i := 0; i < nc; i++ {
		perm[i] = ChildID(i)
		perm[nc+i] = ChildID(i)
	}
	t.rotations = [][]ChildID{perm}
	row := make([]RotID, nc)
	t.hilbertTable = [][]RotID{row}
	return t
}

// buildHilbert2D builds the classic 4-state rotating Hilbert curve for
// Dim==2, grounded on the rot()/graycode() state machine from
// chromy-mylar's scurve.go, generalized from a point-conversion routine
// into the rotations[]/HILBERT_TABLE[] shape the rest of the pipeline
// expects.
//
// Morton child index is the 2-bit (y<<1 | x) quadrant number. Rotation
// states are identified by (entry corner "e", major axis "d") exactly as
// in the source algorithm; there are exactly 4 reachable states.
func buildHilbert2D() *Tables {
	type state struct{ e, d int }
	// Canonical ordering of the 4 reachable states, matching the
	// conventional state indices used by the rotate/Gray-code version of
	// the algorithm.
	states := []state{{0, 0}, {0, 1}, {3, 0}, {3, 1}}
	stateIndex := func(e, d int) RotID {
		for i, s := range states {
			if s.e == e && s.d == d {
				return RotID(i)
			}
		}
		panic("hcurve: unreachable rotation state")
	}

	rot := func(x int) int {
		switch x {
		case 1:
			return 2
		case 2:
			return 1
		default:
			return x
		}
	}
	graycode := func(x int) int {
		switch x {
		case 3:
			return 2
		case 2:
			return 3
		default:
			return x
		}
	}

	t := &Tables{Dim: 2, NC: 4, NumRotations: len(states)}
	t.rotations = make([][]ChildID, len(states))
	t.hilbertTable = make([][]RotID, len(states))

	for si, s := range states {
		sfcToMorton := make([]ChildID, 4)
		mortonToSFC := make([]ChildID, 4)
		childRot := make([]RotID, 4)

		for w := 0; w < 4; w++ { // w is the SFC-order digit
			l := graycode(w)
			if s.d == 0 {
				l = rot(l)
			}
			l ^= s.e
			morton := l // morton child index for this SFC step

			sfcToMorton[w] = ChildID(morton)
			mortonToSFC[morton] = ChildID(w)

			e2, d2 := s.e, s.d
			if w == 3 {
				e2 = 3 - e2
			}
			if w == 0 || w == 3 {
				d2 ^= 1
			}
			childRot[morton] = stateIndex(e2, d2)
		}

		row := make([]ChildID, 8)
		copy(row[0:4], sfcToMorton)
		copy(row[4:8], mortonToSFC)
		t.rotations[si] = row
		t.hilbertTable[si] = childRot
	}
	return t
}

// SFCToMorton returns the Morton child index visited at SFC-order rank
// childSFC under rotation state pRot.
func (t *Tables) SFCToMorton(pRot RotID, childSFC ChildID) ChildID {
	return t.rotations[pRot][childSFC]
}

// MortonToSFC returns the SFC-order rank of Morton child index childM
// under rotation state pRot.
func (t *Tables) MortonToSFC(pRot RotID, childM ChildID) ChildID {
	return t.rotations[pRot][t.NC+int(childM)]
}

// ChildRotation returns the rotation state a descent into Morton child
// childM should use, given the parent's rotation state pRot.
func (t *Tables) ChildRotation(pRot RotID, childM ChildID) RotID {
	return t.hilbertTable[pRot][childM]
}
