package sfc

import (
	"sync"
	"testing"

	"github.com/notargets/adaptoct/comm"
	"github.com/notargets/adaptoct/octree"
)

func nodesEqualCoords(a, b octree.TreeNode) bool {
	if a.Dim != b.Dim {
		return false
	}
	for d := 0; d < a.Dim; d++ {
		if a.Coords[d] != b.Coords[d] {
			return false
		}
	}
	return true
}

func TestDistTreeSortSingleRankMatchesLocTreeSort(t *testing.T) {
	initDim(t, 3)
	root := leaf(3, []octree.Coord{0, 0, 0}, 0)
	var nodes []octree.TreeNode
	for c := root.NumChildren() - 1; c >= 0; c-- {
		nodes = append(nodes, root.GetChildMorton(c))
	}
	ranks := comm.NewLocalWorld(1)
	sorted, starts := DistTreeSort(ranks[0], nodes, 0.2)
	if len(sorted) != len(nodes) {
		t.Fatalf("len(sorted) = %d, want %d", len(sorted), len(nodes))
	}
	for i := 1; i < len(sorted); i++ {
		if nodesEqualCoords(sorted[i-1], sorted[i]) {
			t.Fatalf("sorted[%d] and sorted[%d] are duplicate locations", i-1, i)
		}
	}
	if len(starts) != 1 || !starts[0].Equal(sorted[0]) {
		t.Fatalf("starts = %v, want [%v]", starts, sorted[0])
	}
}

func TestDistTreeSortTwoRanksRebalancesRoundRobinScatter(t *testing.T) {
	initDim(t, 2)
	root := leaf(2, []octree.Coord{0, 0}, 0)
	var leaves []octree.TreeNode
	for c := 0; c < root.NumChildren(); c++ {
		leaves = append(leaves, root.GetChildMorton(c))
	}
	// Round-robin scatter: rank 0 gets Morton children {0,2}, rank 1
	// gets {1,3} — deliberately not already SFC-contiguous.
	scattered := [][]octree.TreeNode{
		{leaves[0], leaves[2]},
		{leaves[1], leaves[3]},
	}

	ranks := comm.NewLocalWorld(2)
	sorted := make([][]octree.TreeNode, 2)
	starts := make([][]octree.TreeNode, 2)
	var wg sync.WaitGroup
	for r := 0; r < 2; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			sorted[r], starts[r] = DistTreeSort(ranks[r], scattered[r], 0.2)
		}(r)
	}
	wg.Wait()

	total := len(sorted[0]) + len(sorted[1])
	if total != 4 {
		t.Fatalf("total nodes after redistribution = %d, want 4", total)
	}
	if len(sorted[0]) != 2 || len(sorted[1]) != 2 {
		t.Fatalf("expected a 2/2 split, got %d/%d", len(sorted[0]), len(sorted[1]))
	}

	seen := make(map[[2]octree.Coord]bool)
	for _, rl := range sorted {
		for _, n := range rl {
			key := [2]octree.Coord{n.Coords[0], n.Coords[1]}
			if seen[key] {
				t.Fatalf("node %v appears more than once after redistribution", n)
			}
			seen[key] = true
		}
	}
	if len(seen) != 4 {
		t.Fatalf("expected all 4 distinct leaves to survive redistribution, got %d", len(seen))
	}

	for r, rl := range sorted {
		for i := 1; i < len(rl); i++ {
			if nodesEqualCoords(rl[i-1], rl[i]) {
				t.Fatalf("rank %d: sorted[%d] and sorted[%d] are duplicate locations", r, i-1, i)
			}
		}
	}

	if !starts[0][0].Equal(starts[1][0]) {
		t.Fatalf("treePartStart must agree across ranks: rank0 %v vs rank1 %v", starts[0], starts[1])
	}
	if !starts[0][1].Equal(starts[1][1]) {
		t.Fatalf("treePartStart must agree across ranks: rank0 %v vs rank1 %v", starts[0], starts[1])
	}
}
