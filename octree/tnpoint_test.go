package octree

import "testing"

func TestCellTypeVertexAndInterior(t *testing.T) {
	// A corner of a level-1 octant: on every axis hyperplane.
	vertex := NewTNPoint(2, []Coord{0, 0}, 1)
	ct := vertex.CellType()
	if ct.Dim != 0 || ct.Orient != 0 {
		t.Errorf("vertex cell type = %v, want (0,0)", ct)
	}

	// Midpoint of a level-1 octant along both axes: fully interior.
	len := LenAtLevel(1)
	interior := NewTNPoint(2, []Coord{len / 2, len / 2}, 1)
	ct = interior.CellType()
	if ct.Dim != 2 || ct.Orient != 0b11 {
		t.Errorf("interior cell type = %v, want (2,11)", ct)
	}
}

func TestCellTypeEdgeMidpoint(t *testing.T) {
	len := LenAtLevel(1)
	// On the x=0 hyperplane, interior along y: a level-1 edge midpoint.
	edge := NewTNPoint(2, []Coord{0, len / 2}, 1)
	ct := edge.CellType()
	if ct.Dim != 1 || ct.Orient != 0b10 {
		t.Errorf("edge cell type = %v, want (1,10)", ct)
	}
}

func TestIsCrossing(t *testing.T) {
	len := LenAtLevel(2)
	// Exactly at the parent cell's midpoint along x.
	p := NewTNPoint(2, []Coord{len, 3 * len}, 2)
	if !p.IsCrossing() {
		t.Errorf("expected point at parent midpoint to be crossing")
	}
	q := NewTNPoint(2, []Coord{0, 2 * len}, 2)
	if q.IsCrossing() {
		t.Errorf("expected corner-aligned point not to be crossing")
	}
}

func TestGetFinestOpenContainer(t *testing.T) {
	len1 := LenAtLevel(1)
	// A point strictly interior to its own level-1 generating element.
	p := NewTNPoint(2, []Coord{len1 / 2, len1 / 2}, 1)
	container := p.GetFinestOpenContainer()
	if container.Lev != 1 {
		t.Errorf("finest open container level = %d, want 1", container.Lev)
	}
}

func TestEqualIgnoresAuxiliaryState(t *testing.T) {
	a := NewTNPoint(3, []Coord{10, 20, 30}, 2)
	b := NewTNPoint(3, []Coord{10, 20, 30}, 2)
	b.Owner = 3
	b.NumInstances = 5
	b.IsSelected = Yes
	if !a.Equal(b) {
		t.Fatal("points with same (coords, level) must compare equal regardless of auxiliary state")
	}
}
