package sfc

import (
	"github.com/notargets/adaptoct/comm"
	"github.com/notargets/adaptoct/hcurve"
	"github.com/notargets/adaptoct/octree"
)

// bftBucket is one node of the breadth-first bucket queue distTreeSort
// refines: the SFC rotation state a bucket was entered under, its level,
// and the [begin,end) range of this rank's local array it currently
// covers. Every rank advances the same sequence of (rot,lev) buckets in
// lockstep, since the octree structure above any one rank's points is
// shared; only begin/end differ rank to rank.
type bftBucket struct {
	rot        hcurve.RotID
	lev        octree.Level
	begin, end int
}

// refineGeneration splits every bucket in gen one level deeper, in SFC
// order, via the same sfcBucketing LocTreeSort recurses through. An empty
// bucket still produces NC empty children so that every rank's queue
// keeps the same shape at the same position.
func refineGeneration(nodes []octree.TreeNode, gen []bftBucket, tables *hcurve.Tables) []bftBucket {
	next := make([]bftBucket, 0, len(gen)*tables.NC)
	for _, b := range gen {
		if b.begin >= b.end {
			for c := 0; c < tables.NC; c++ {
				morton := tables.SFCToMorton(b.rot, hcurve.ChildID(c))
				childRot := tables.ChildRotation(b.rot, morton)
				next = append(next, bftBucket{rot: childRot, lev: b.lev + 1, begin: b.begin, end: b.end})
			}
			continue
		}
		res := sfcBucketing(nodes, b.begin, b.end, b.lev, b.rot, tables)
		for sfcRank := 0; sfcRank < tables.NC; sfcRank++ {
			start := res.boundaries[sfcRank]
			if sfcRank == 0 {
				start = res.childZeroStart
			}
			stop := res.boundaries[sfcRank+1]
			morton := tables.SFCToMorton(b.rot, hcurve.ChildID(sfcRank))
			childRot := tables.ChildRotation(b.rot, morton)
			next = append(next, bftBucket{rot: childRot, lev: b.lev + 1, begin: start, end: stop})
		}
	}
	return next
}

// DistTreeSort partitions nodes across every rank in c so that each
// rank's share of the global total is within loadFlexibility of
// 1/c.Size(), redistributes nodes accordingly via Alltoallv, and returns
// this rank's share in SFC order together with the per-rank splitter
// octants (the first owned octant of every rank, in rank order) that a
// later boundary-layer exchange (nsort.DistCountCGNodes) needs to decide
// which rank a given coordinate belongs to.
//
// Mirrors SFC_Tree::distTreeSort's two-phase breadth-first bucket
// refinement: phase 1 expands the shared bucket queue until it holds at
// least c.Size() buckets (or hits octree.MaxDepth); phase 2 repeatedly
// tests every still-pending rank splitter against the current queue's
// globally-reduced bucket boundaries, refining only the buckets a
// splitter actually falls inside until every splitter lands within
// tolerance or no further refinement is possible.
func DistTreeSort(c comm.Comm, nodes []octree.TreeNode, loadFlexibility float64) (sorted, treePartStart []octree.TreeNode) {
	tables := hcurve.Active()
	if tables == nil {
		panic("sfc: DistTreeSort called before hcurve.InitHcurve")
	}
	nProc := c.Size()

	if nProc == 1 {
		out := append([]octree.TreeNode{}, nodes...)
		LocTreeSort(out, 0, len(out), 0, octree.MaxDepth, 0)
		starts := []octree.TreeNode{}
		if len(out) > 0 {
			starts = append(starts, out[0])
		}
		return out, starts
	}

	sizeG := c.Allreduce(int64(len(nodes)))

	// Phase 1: expand the shared queue to at least nProc buckets.
	queue := []bftBucket{{rot: 0, lev: 0, begin: 0, end: len(nodes)}}
	for len(queue) < nProc && queue[0].lev < octree.MaxDepth {
		queue = refineGeneration(nodes, queue, tables)
	}

	// Phase 2: test every pending rank splitter against the queue,
	// refining only the buckets it still falls too far inside of.
	splitters := make([]int, nProc)
	pending := make([]int, nProc)
	for i := range pending {
		pending[i] = i
	}
	for len(pending) > 0 {
		bktCountsG := make([]int64, len(queue))
		for i, b := range queue {
			bktCountsG[i] = c.Allreduce(int64(b.end - b.begin))
		}

		var nextPending []int
		var selectedIdx []int
		bktBeginG := int64(0)
		pi := 0
		for qi, b := range queue {
			bktEndG := bktBeginG + bktCountsG[qi]
			canRefine := b.lev < octree.MaxDepth
			selectedThis := false
			for pi < len(pending) {
				r := pending[pi]
				idealSplitterG := int64(r+1) * sizeG / int64(nProc)
				if idealSplitterG > bktEndG {
					break
				}
				idealWidth := int64(r+1)*sizeG/int64(nProc) - int64(r)*sizeG/int64(nProc)
				absTolerance := int64(float64(idealWidth) * loadFlexibility)
				if canRefine && (bktEndG-idealSplitterG) > absTolerance {
					nextPending = append(nextPending, r)
					splitters[r] = b.end
					selectedThis = true
				} else {
					splitters[r] = b.end
				}
				pi++
			}
			if selectedThis {
				selectedIdx = append(selectedIdx, qi)
			}
			bktBeginG = bktEndG
		}
		pending = nextPending
		if len(pending) == 0 {
			break
		}
		selected := make([]bftBucket, len(selectedIdx))
		for i, qi := range selectedIdx {
			selected[i] = queue[qi]
		}
		queue = refineGeneration(nodes, selected, tables)
	}

	sendCounts := make([]int, nProc)
	prev := 0
	for r, s := range splitters {
		sendCounts[r] = s - prev
		prev = s
	}

	sendBuf := make([]any, len(nodes))
	for i, n := range nodes {
		sendBuf[i] = n
	}
	recvBuf, _ := c.Alltoallv(sendBuf, sendCounts)

	sorted = make([]octree.TreeNode, len(recvBuf))
	for i, v := range recvBuf {
		sorted[i] = v.(octree.TreeNode)
	}
	LocTreeSort(sorted, 0, len(sorted), 0, octree.MaxDepth, 0)

	treePartStart = make([]octree.TreeNode, nProc)
	for r := 0; r < nProc; r++ {
		var mine any
		if c.Rank() == r && len(sorted) > 0 {
			mine = sorted[0]
		}
		v := c.Bcast(mine, r)
		if v != nil {
			treePartStart[r] = v.(octree.TreeNode)
		}
	}
	// A rank with no points after redistribution contributes no
	// splitter of its own; it inherits the previous rank's, since its
	// share of the domain is empty and any coordinate that would have
	// routed to it still belongs to whichever neighbor bounds it.
	for r := 1; r < nProc; r++ {
		if treePartStart[r].Dim == 0 {
			treePartStart[r] = treePartStart[r-1]
		}
	}

	return sorted, treePartStart
}
