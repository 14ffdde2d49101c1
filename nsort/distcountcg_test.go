package nsort

import (
	"testing"

	"github.com/notargets/adaptoct/comm"
	"github.com/notargets/adaptoct/element"
	"github.com/notargets/adaptoct/octree"
)

func TestDistCountCGNodesSingleRankMatchesLocal(t *testing.T) {
	initSFC(t, 3)
	ranks := comm.NewLocalWorld(1)
	root := octree.NewTreeNode(3, []octree.Coord{0, 0, 0}, 0)
	var points []octree.TNPoint
	for c := 0; c < root.NumChildren(); c++ {
		points = append(points, element.AppendNodes(root.GetChildMorton(c), 1)...)
	}
	sortByCoords(points)
	treePartStart := []octree.TreeNode{root.GetChildMorton(0)}
	global, newEnd, faces := DistCountCGNodes(ranks[0], points, 1, treePartStart)
	if global != 27 {
		t.Fatalf("global CG count = %d, want 27", global)
	}
	if newEnd == 0 {
		t.Fatal("expected a non-empty owned/local point set")
	}
	if len(faces) != 0 {
		t.Errorf("single rank run should produce no remote-owned scatterfaces, got %d", len(faces))
	}
}

func TestComputeScatterMapMatchesAdvertisedFace(t *testing.T) {
	owned := []octree.TNPoint{
		octree.NewTNPoint(2, []octree.Coord{0, 0}, 1),
	}
	owned[0].IsSelected = octree.Yes
	cell := owned[0].GetCell()
	faces := []ScatterFace{
		{Anchor: cell, Type: octree.CellType{Dim: 0, Orient: 0}, Owner: 2},
	}
	sm := ComputeScatterMap(owned, faces, 3)
	if len(sm.Procs) != 1 || sm.Procs[0] != 2 {
		t.Fatalf("expected exactly rank 2 in Procs, got %v", sm.Procs)
	}
	if sm.Offsets[3]-sm.Offsets[2] != 1 {
		t.Fatalf("expected exactly 1 entry for rank 2, got offsets %v", sm.Offsets)
	}
	if sm.Indices[sm.Offsets[2]] != 0 {
		t.Errorf("expected owned index 0 to be sent to rank 2")
	}
}
