package partition

import (
	"testing"

	"github.com/notargets/adaptoct/octree"
)

func TestFacesAdjacentSharedEdge(t *testing.T) {
	root := octree.NewTreeNode(2, []octree.Coord{0, 0}, 0)
	a := root.GetChildMorton(0) // low corner
	b := root.GetChildMorton(1) // differs on axis 0 only: shares the x=mid edge
	if !facesAdjacent(a, b) {
		t.Fatal("expected siblings differing on one axis to share a face")
	}
}

func TestFacesAdjacentDiagonalIsNotAFace(t *testing.T) {
	root := octree.NewTreeNode(2, []octree.Coord{0, 0}, 0)
	a := root.GetChildMorton(0)
	b := root.GetChildMorton(3) // differs on both axes: touches only at the center corner
	if facesAdjacent(a, b) {
		t.Fatal("diagonal siblings should not be reported as sharing a face")
	}
}

func TestFacesAdjacentDisjointIsFalse(t *testing.T) {
	leafA := octree.NewTreeNode(2, []octree.Coord{0, 0}, 3)
	leafB := octree.NewTreeNode(2, []octree.Coord{octree.LenAtLevel(1), octree.LenAtLevel(1)}, 3)
	if facesAdjacent(leafA, leafB) {
		t.Fatal("widely separated leaves should not be adjacent")
	}
}

func TestPartitionLeavesSinglePartAssignsAllToZero(t *testing.T) {
	root := octree.NewTreeNode(3, []octree.Coord{0, 0, 0}, 0)
	var leaves []octree.TreeNode
	for c := 0; c < root.NumChildren(); c++ {
		leaves = append(leaves, root.GetChildMorton(c))
	}
	part, err := PartitionLeaves(leaves, DefaultConfig(1))
	if err != nil {
		t.Fatalf("PartitionLeaves: %v", err)
	}
	if len(part) != len(leaves) {
		t.Fatalf("len(part) = %d, want %d", len(part), len(leaves))
	}
	for i, p := range part {
		if p != 0 {
			t.Fatalf("part[%d] = %d, want 0 (single-partition request)", i, p)
		}
	}
}

func TestBuildLeafAdjacencyUniformGridEachLeafHasDimNeighbors(t *testing.T) {
	// A depth-1, dim-2 grid's 4 leaves form a 2x2 block; each leaf
	// shares exactly one edge with each of its two axis-neighbors.
	root := octree.NewTreeNode(2, []octree.Coord{0, 0}, 0)
	var leaves []octree.TreeNode
	for c := 0; c < root.NumChildren(); c++ {
		leaves = append(leaves, root.GetChildMorton(c))
	}
	xadj, _ := buildLeafAdjacency(leaves)
	for i := 0; i < len(leaves); i++ {
		deg := xadj[i+1] - xadj[i]
		if deg != 2 {
			t.Fatalf("leaf %d has degree %d, want 2 (one neighbor per axis)", i, deg)
		}
	}
}
