package nsort

import "testing"

func TestScatterIncidenceMatrixMarksSentIndices(t *testing.T) {
	sm := ScatterMap{
		Indices: []int{2, 0, 1},
		Offsets: []int{0, 0, 2, 3},
		Procs:   []int{1, 2},
	}
	m := ScatterIncidenceMatrix(sm, 3)
	nr, nc := m.Dims()
	if nr != 3 || nc != 3 {
		t.Fatalf("dims = %d,%d want 3,3", nr, nc)
	}
	if m.At(1, 2) != 1 || m.At(1, 0) != 1 {
		t.Errorf("rank 1 should have sent owned indices 2 and 0")
	}
	if m.At(2, 1) != 1 {
		t.Errorf("rank 2 should have sent owned index 1")
	}
	if m.At(1, 1) != 0 || m.At(2, 0) != 0 {
		t.Errorf("unrelated entries should stay zero")
	}
}

func TestSharedOwnedNodeCountCountsOverlap(t *testing.T) {
	a := ScatterMap{Indices: []int{0, 1}, Offsets: []int{0, 2}, Procs: []int{0}}
	b := ScatterMap{Indices: []int{1, 2}, Offsets: []int{0, 2}, Procs: []int{0}}
	if got := SharedOwnedNodeCount(a, b, 3); got != 1 {
		t.Fatalf("shared count = %d, want 1 (owned index 1 sent by both)", got)
	}
}
