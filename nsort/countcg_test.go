package nsort

import (
	"sort"
	"testing"

	"github.com/notargets/adaptoct/element"
	"github.com/notargets/adaptoct/hcurve"
	"github.com/notargets/adaptoct/octree"
)

func sortByCoords(points []octree.TNPoint) {
	sort.Slice(points, func(i, j int) bool { return points[i].Less(points[j]) })
}

// initSFC builds the SFC tables Classify's boundary sort needs and tears
// them down when the test ends.
func initSFC(t *testing.T, dim int) {
	t.Helper()
	if err := hcurve.InitHcurve(dim); err != nil {
		t.Fatalf("InitHcurve: %v", err)
	}
	t.Cleanup(hcurve.DestroyHcurve)
}

func TestSingleRootElementOrderOneAllBoundary(t *testing.T) {
	initSFC(t, 2)
	root := octree.NewTreeNode(2, []octree.Coord{0, 0}, 0)
	points := element.AppendNodes(root, 1)
	sortByCoords(points)
	n := CompactInstances(points, 0, len(points))
	yes := Classify(points, 0, n, 1)
	if yes != 4 {
		t.Fatalf("got %d Yes nodes, want 4", yes)
	}
	for i := 0; i < n; i++ {
		if !points[i].IsOnDomainBoundary() {
			t.Errorf("corner %v expected to be on domain boundary", points[i].Coords)
		}
		if points[i].IsSelected != octree.Yes {
			t.Errorf("corner %v expected Yes, got %v", points[i].Coords, points[i].IsSelected)
		}
	}
}

func TestUniform3DOrderOneDepthOneGivesTwentySevenNodes(t *testing.T) {
	initSFC(t, 3)
	root := octree.NewTreeNode(3, []octree.Coord{0, 0, 0}, 0)
	var points []octree.TNPoint
	for c := 0; c < root.NumChildren(); c++ {
		child := root.GetChildMorton(c)
		points = append(points, element.AppendNodes(child, 1)...)
	}
	sortByCoords(points)
	n := CompactInstances(points, 0, len(points))
	yes := Classify(points, 0, n, 1)
	if yes != 27 {
		t.Fatalf("got %d unique CG nodes, want 27 (3^3)", yes)
	}
}

func TestTwoSiblingLeavesSharedEdgeOrderThree(t *testing.T) {
	// Two 2D siblings at depth 1 sharing an edge: order-3 grid per element
	// has 16 nodes; the 4 nodes on the shared edge coincide pairwise, so
	// the unique total is 16+16-4 = 28.
	root := octree.NewTreeNode(2, []octree.Coord{0, 0}, 0)
	left := root.GetChildMorton(0)
	right := root.GetChildMorton(1)
	var points []octree.TNPoint
	points = append(points, element.AppendNodes(left, 3)...)
	points = append(points, element.AppendNodes(right, 3)...)
	sortByCoords(points)
	n := CompactInstances(points, 0, len(points))
	if n != 28 {
		t.Fatalf("got %d unique locations after instance compaction, want 28", n)
	}
}

// TestHighOrderHangingCoincidesWithCoarseRow builds a K-cell with a
// level-2 edge point and a level-3 point at the identical coordinates,
// sharing the same native CellType().Orient row. The pair exercises
// §4.5 step 4's plain case (Locality/Overlap within a single row): the
// coarse instance must survive and the coincident finer instance must
// be demoted as hanging.
func TestHighOrderHangingCoincidesWithCoarseRow(t *testing.T) {
	len2 := octree.LenAtLevel(2)
	x0 := len2
	y0Edge := len2 + 1 // nativeLevel 29: unaligned on every level below 29

	points := []octree.TNPoint{
		octree.NewTNPoint(2, []octree.Coord{x0, y0Edge}, 2),
		octree.NewTNPoint(2, []octree.Coord{x0, y0Edge}, 3),
	}
	sortByCoords(points)
	n := CompactInstances(points, 0, len(points))
	if n != 2 {
		t.Fatalf("expected no instance coincidence across distinct levels, got n=%d", n)
	}
	Classify(points, 0, n, 3)

	var gotCoarse, gotFine octree.Selection
	for i := 0; i < n; i++ {
		switch points[i].Level {
		case 2:
			gotCoarse = points[i].IsSelected
		case 3:
			gotFine = points[i].IsSelected
		}
	}
	if gotCoarse != octree.Yes {
		t.Errorf("level-2 point: got %v, want Yes", gotCoarse)
	}
	if gotFine != octree.No {
		t.Errorf("level-3 coincident point: got %v, want No (hanging)", gotFine)
	}
}

// TestHighOrderHangingViaParentCellType builds a K-cell where the finer
// point's own native orientation (vertex, a singleton row with no
// same-row companion) differs from its CellTypeOnParent orientation
// (edge), which does match the coarse point's row. Detecting this case
// requires §4.5's parent-overlap test (CellTypeOnParent), not a
// same-row level comparison: a resolver that only compares levels
// within a point's own native row has no companion to trigger on and
// would wrongly default this point to Yes.
func TestHighOrderHangingViaParentCellType(t *testing.T) {
	len2 := octree.LenAtLevel(2)
	len3 := octree.LenAtLevel(3)
	x0 := len2
	y0Edge := len2 + 1      // nativeLevel 29
	yTrigger := len2 + len3 // nativeLevel 3 exactly

	points := []octree.TNPoint{
		octree.NewTNPoint(2, []octree.Coord{x0, y0Edge}, 2),
		octree.NewTNPoint(2, []octree.Coord{x0, yTrigger}, 3),
	}
	sortByCoords(points)
	n := CompactInstances(points, 0, len(points))
	if n != 2 {
		t.Fatalf("expected two distinct locations, got n=%d", n)
	}
	Classify(points, 0, n, 3)

	var gotCoarse, gotFine octree.Selection
	for i := 0; i < n; i++ {
		switch points[i].Level {
		case 2:
			gotCoarse = points[i].IsSelected
		case 3:
			gotFine = points[i].IsSelected
		}
	}
	if gotCoarse != octree.Yes {
		t.Errorf("level-2 edge point: got %v, want Yes", gotCoarse)
	}
	if gotFine != octree.No {
		t.Errorf("level-3 vertex point: got %v, want No (hanging via parent overlap)", gotFine)
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	initSFC(t, 2)
	root := octree.NewTreeNode(2, []octree.Coord{0, 0}, 0)
	points := element.AppendNodes(root, 2)
	sortByCoords(points)
	n := CompactInstances(points, 0, len(points))
	first := Classify(points, 0, n, 2)
	snapshot := make([]octree.Selection, n)
	for i := 0; i < n; i++ {
		snapshot[i] = points[i].IsSelected
	}
	second := Classify(points, 0, n, 2)
	if first != second {
		t.Fatalf("Yes count changed across repeated Classify: %d vs %d", first, second)
	}
	for i := 0; i < n; i++ {
		if points[i].IsSelected != snapshot[i] {
			t.Errorf("selection at %d changed on re-classify: %v -> %v", i, snapshot[i], points[i].IsSelected)
		}
	}
}
