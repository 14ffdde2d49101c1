// Package sfc sorts octants and nodal points into space-filling-curve
// order, locally and (via Alltoallv exchange over a comm.Comm) globally.
package sfc

import (
	"github.com/notargets/adaptoct/hcurve"
	"github.com/notargets/adaptoct/octree"
)

// Sortable is anything locTreeSort/distTreeSort can order: an octant
// (octree.TreeNode) or a nodal point (octree.TNPoint) both satisfy it.
type Sortable interface {
	SFCDim() int
	SFCCoord(axis int) octree.Coord
	SFCLevel() octree.Level
}

func mortonIndexAt(item Sortable, lev octree.Level) int {
	bitPos := uint(octree.MaxDepth) - uint(lev)
	idx := 0
	for d := 0; d < item.SFCDim(); d++ {
		bit := (item.SFCCoord(d) >> bitPos) & 1
		idx |= int(bit) << uint(d)
	}
	return idx
}

// bucketResult describes the outcome of one SFC_bucketing pass: boundaries
// has length NC+1, boundaries[i] is the start of SFC-child bucket i (the
// end of bucket NC-1 is end); ancestors (points at level < sLev) are
// prefixed to boundaries[0], occupying [boundaries[0], childZeroStart).
type bucketResult struct {
	boundaries    []int
	childZeroStart int
}

// sfcBucketing buckets points[begin:end) by Morton child at level sLev,
// translated to SFC order via tables under rotation pRot, and permutes the
// slice in place. Ancestors (level < sLev) are grouped at the front of
// bucket 0. Implemented as a stable counting sort into a scratch buffer —
// functionally equivalent to, but simpler to verify by hand than, an
// in-place cycle-leader permutation over a fixed NC+1 eviction buffer.
func sfcBucketing[T Sortable](points []T, begin, end int, sLev octree.Level, pRot hcurve.RotID, tables *hcurve.Tables) bucketResult {
	n := end - begin
	nc := tables.NC
	ancestorCount := 0
	countsBySFC := make([]int, nc)
	sfcRankOf := func(item T) int {
		if item.SFCLevel() < sLev {
			return -1
		}
		morton := mortonIndexAt(item, sLev)
		return int(tables.MortonToSFC(pRot, hcurve.ChildID(morton)))
	}
	for i := begin; i < end; i++ {
		k := sfcRankOf(points[i])
		if k == -1 {
			ancestorCount++
		} else {
			countsBySFC[k]++
		}
	}
	boundaries := make([]int, nc+1)
	boundaries[0] = begin
	childZeroStart := begin + ancestorCount
	boundaries[1] = childZeroStart + countsBySFC[0]
	for i := 1; i < nc; i++ {
		boundaries[i+1] = boundaries[i] + countsBySFC[i]
	}

	cursorAncestor := begin
	cursorSFC := make([]int, nc)
	cursorSFC[0] = childZeroStart
	for i := 1; i < nc; i++ {
		cursorSFC[i] = boundaries[i]
	}

	temp := make([]T, n)
	for i := begin; i < end; i++ {
		item := points[i]
		k := sfcRankOf(item)
		if k == -1 {
			temp[cursorAncestor-begin] = item
			cursorAncestor++
		} else {
			temp[cursorSFC[k]-begin] = item
			cursorSFC[k]++
		}
	}
	copy(points[begin:end], temp)
	return bucketResult{boundaries: boundaries, childZeroStart: childZeroStart}
}

// LocTreeSort recursively buckets points[begin:end) into strict SFC order
// between levels sLev and eLev, following the rotation state pRot.
// Ancestors at a bucket's level always precede their descendants (R2).
func LocTreeSort[T Sortable](points []T, begin, end int, sLev, eLev octree.Level, pRot hcurve.RotID) {
	tables := hcurve.Active()
	if tables == nil {
		panic("sfc: LocTreeSort called before hcurve.InitHcurve")
	}
	if end-begin <= 1 || sLev >= eLev {
		return
	}
	res := sfcBucketing(points, begin, end, sLev, pRot, tables)
	nc := tables.NC
	for sfcRank := 0; sfcRank < nc; sfcRank++ {
		start := res.boundaries[sfcRank]
		if sfcRank == 0 {
			start = res.childZeroStart
		}
		stop := res.boundaries[sfcRank+1]
		if stop-start <= 1 {
			continue
		}
		morton := tables.SFCToMorton(pRot, hcurve.ChildID(sfcRank))
		childRot := tables.ChildRotation(pRot, morton)
		LocTreeSort(points, start, stop, sLev+1, eLev, childRot)
	}
}

// LocTreeSortAsPoints is LocTreeSort applied to octree.TNPoint: points are
// bucketed exactly as LocTreeSort buckets octants (a point whose level is
// below the bucket level goes to the front with the ancestors), then each
// run of adjacent points with identical coordinates is ordered coarsest
// level first. Coincident points that the bucketing leaves apart are not
// brought together.
func LocTreeSortAsPoints(points []octree.TNPoint, begin, end int, sLev, eLev octree.Level, pRot hcurve.RotID) {
	LocTreeSort[octree.TNPoint](points, begin, end, sLev, eLev, pRot)
	// Tie-break coincident coordinates within adjacent same-(sLev..eLev)
	// buckets by level, coarsest first, matching the "ancestors precede
	// descendants" invariant at node granularity.
	stabilizeCoincidentRuns(points, begin, end)
}

func stabilizeCoincidentRuns(points []octree.TNPoint, begin, end int) {
	i := begin
	for i < end {
		j := i + 1
		for j < end && sameCoords(points[i], points[j]) {
			j++
		}
		if j-i > 1 {
			insertionSortByLevel(points[i:j])
		}
		i = j
	}
}

func sameCoords(a, b octree.TNPoint) bool {
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

func insertionSortByLevel(s []octree.TNPoint) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].Level < s[j-1].Level; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
