package nsort

import (
	"github.com/notargets/adaptoct/element"
	"github.com/notargets/adaptoct/octree"
)

// ScatterMap describes, for one rank, which entries of its owned-node
// vector must be sent to which neighbor ranks for ghost-node
// synchronization: Indices[Offsets[r]:Offsets[r+1]] are the owned-vector
// positions bound for rank r, and Procs lists the ranks with a non-empty
// range.
type ScatterMap struct {
	Indices []int
	Offsets []int // length nProc+1
	Procs   []int
}

// ComputeScatterMap matches owned nodes against the scatterfaces other
// ranks advertised for them and emits one (index, neighbor rank) pair per
// distinct advertised face that coincides with a sub-face of the node's
// cell; a face reached through several orientations, or advertised more
// than once, counts once. A counting pass establishes per-rank offsets; a
// second pass writes indices into place, giving every rank's slice of the
// map sorted by destination rank and, within a rank, by owned-vector
// index — matching the ordering guarantee distTreeSort/dist_countCGNodes
// already established for the owned-node vector itself.
func ComputeScatterMap(owned []octree.TNPoint, faces []ScatterFace, nProc int) ScatterMap {
	byFace := make(map[string][]int) // face key -> owner ranks
	for _, f := range faces {
		k := faceKey(f.Anchor, f.Type, f.Owner)
		byFace[k] = append(byFace[k], f.Owner)
	}

	sendCount := make([]int, nProc)
	type match struct {
		idx  int
		rank int
	}
	var matches []match
	for i, p := range owned {
		if p.IsSelected != octree.Yes {
			continue
		}
		cell := p.GetCell()
		matched := make(map[string]bool)
		for _, orient := range octree.ExteriorOrientLow2High(cell.Dim) {
			ct := octree.CellType{Dim: uint8(popcountOrient(orient)), Orient: orient}
			for _, kf := range element.AppendKFaces(cell, ct) {
				for rank := 0; rank < nProc; rank++ {
					k := faceKey(kf.Anchor, kf.Type, rank)
					if _, ok := byFace[k]; ok && !matched[k] {
						matched[k] = true
						matches = append(matches, match{idx: i, rank: rank})
						sendCount[rank]++
					}
				}
			}
		}
	}

	offsets := make([]int, nProc+1)
	for r := 0; r < nProc; r++ {
		offsets[r+1] = offsets[r] + sendCount[r]
	}
	cursor := append([]int{}, offsets[:nProc]...)
	indices := make([]int, offsets[nProc])
	for _, m := range matches {
		indices[cursor[m.rank]] = m.idx
		cursor[m.rank]++
	}
	var procs []int
	for r := 0; r < nProc; r++ {
		if sendCount[r] > 0 {
			procs = append(procs, r)
		}
	}
	return ScatterMap{Indices: indices, Offsets: offsets, Procs: procs}
}
