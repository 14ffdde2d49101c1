package nsort

import (
	"fmt"

	"github.com/notargets/adaptoct/comm"
	"github.com/notargets/adaptoct/element"
	"github.com/notargets/adaptoct/hcurve"
	"github.com/notargets/adaptoct/octree"
)

// ScatterFace is one open k-face of a classified point's cell, tagged with
// the remote rank that also touches it. Building these is step 5 of
// dist_countCGNodes: once ownership crosses ranks, every exterior
// sub-face of the owning cell must be advertised so the scatter map can
// later match it against the same face surfacing on the neighbor.
type ScatterFace struct {
	Anchor octree.TreeNode
	Type   octree.CellType
	Owner  int
}

// DistCountCGNodes runs the distributed node-sort: each rank's points
// (already locally SFC-sorted and instance-compacted) are merged with a
// boundary layer exchanged from neighboring ranks, classified globally,
// reduced to a single owner per coincident group, and turned into the
// scatterfaces a later ScatterMap build consumes. Returns the global
// unique CG node count and leaves points[0:newEnd] holding one record per
// Yes location this rank saw, with IsSelected Yes where this rank owns it
// and No where a remote rank does; hanging points are not kept.
func DistCountCGNodes(c comm.Comm, points []octree.TNPoint, order int, treePartStart []octree.TreeNode) (globalCount int64, newEnd int, faces []ScatterFace) {
	n := CompactInstances(points, 0, len(points))
	points = points[:n]

	boundary := boundaryLayer(c.Rank(), points[:n], treePartStart)
	sendCounts := make([]int, c.Size())
	for rank := range boundary {
		sendCounts[rank] = len(boundary[rank])
	}
	recvCounts := c.Alltoall(sendCounts)

	var reqs []comm.Request
	for rank, pts := range boundary {
		if len(pts) == 0 || rank == c.Rank() {
			continue
		}
		reqs = append(reqs, c.Isend(rank, 0, pts))
	}
	received := make([]octree.TNPoint, 0)
	for rank, cnt := range recvCounts {
		if cnt == 0 || rank == c.Rank() {
			continue
		}
		req := c.Irecv(rank, 0)
		payload := req.Wait().([]octree.TNPoint)
		for _, p := range payload {
			p.Owner = rank
			received = append(received, p)
		}
	}
	for _, r := range reqs {
		r.Wait()
	}

	merged := append(append([]octree.TNPoint{}, points...), received...)
	sortByLessStable(merged)
	mergedN := CompactInstances(merged, 0, len(merged))
	merged = merged[:mergedN]
	Classify(merged, 0, mergedN, order)

	local := finalizeOwnership(c.Rank(), merged)
	yesCount := 0
	for _, p := range local {
		if p.IsSelected == octree.Yes {
			yesCount++
		}
	}
	globalCount = c.Allreduce(int64(yesCount))

	copy(points[:len(local)], local)
	faces = buildScatterFaces(local, c.Rank())
	return globalCount, len(local), faces
}

func sortByLessStable(points []octree.TNPoint) {
	// Insertion sort: boundary layers are small relative to the local
	// point count, and stability matters for CompactInstances' adjacency
	// assumption.
	for i := 1; i < len(points); i++ {
		for j := i; j > 0 && points[j].Less(points[j-1]); j-- {
			points[j], points[j-1] = points[j-1], points[j]
		}
	}
}

// boundaryLayer finds, for each local point, which remote ranks own a
// tree partition whose splitter range could contain a coincident or
// hanging-related copy of that point, via the point's 1-ring of
// neighbor keys (see neighborKeys) against the per-rank partition starts.
//
// Every point selected here is tagged with myRank before it is copied
// into an outgoing bucket or left in place: finalizeOwnership compares
// Owner rank-vs-rank, and an untagged local replica would keep
// octree.NoOwner (-1), which beats every real rank and makes every
// process believe it alone owns a boundary node it merely touches.
// Points that never cross this filter (pure interior points) are left
// at NoOwner, since they never end up sharing a coincident-group with a
// remote copy in the first place.
func boundaryLayer(myRank int, points []octree.TNPoint, treePartStart []octree.TreeNode) [][]octree.TNPoint {
	out := make([][]octree.TNPoint, len(treePartStart))
	for i := range points {
		if !points[i].IsOnDomainBoundary() && !points[i].IsCrossing() {
			continue
		}
		points[i].Owner = myRank
		p := points[i]
		sentTo := make(map[int]bool)
		for _, key := range neighborKeys(p) {
			rank := containingRank(key, treePartStart)
			if rank < 0 || sentTo[rank] {
				continue
			}
			sentTo[rank] = true
			out[rank] = append(out[rank], p)
		}
	}
	return out
}

// neighborKeys returns the point itself plus its axis-aligned neighbors
// one cell length of the point's own level away (the 1-ring), used to
// probe which remote
// partitions might also see this location.
func neighborKeys(p octree.TNPoint) []octree.TNPoint {
	keys := []octree.TNPoint{p}
	step := octree.Coord(1) << (octree.MaxDepth - uint(p.Level))
	for d := 0; d < p.Dim; d++ {
		if p.Coords[d] >= step {
			lo := p
			lo.Coords = append([]octree.Coord{}, p.Coords...)
			lo.Coords[d] -= step
			keys = append(keys, lo)
		}
		if p.Coords[d]+step <= octree.DomainExtent {
			hi := p
			hi.Coords = append([]octree.Coord{}, p.Coords...)
			hi.Coords[d] += step
			keys = append(keys, hi)
		}
	}
	return keys
}

// containingRank returns the index of the partition whose [start,end)
// octant range contains key's cell, via simple linear comparison of the
// provided per-rank starting octants (sufficient for the modest rank
// counts this in-process Comm targets).
func containingRank(key octree.TNPoint, treePartStart []octree.TreeNode) int {
	cell := key.GetCell()
	for r, start := range treePartStart {
		if start.Equal(cell) || start.IsAncestor(cell) {
			return r
		}
	}
	best := -1
	for r := len(treePartStart) - 1; r >= 0; r-- {
		if precedesOrEqual(treePartStart[r], cell) {
			best = r
			break
		}
	}
	return best
}

// precedesOrEqual reports whether a comes at or before b in the SFC order
// DistTreeSort partitions by (Morton children ranked through the active
// hcurve tables, starting from the rotation its level-0 pass hands to
// level 1; an ancestor precedes its descendants), used among partition
// starts that don't directly ancestor-contain the probe cell.
func precedesOrEqual(a, b octree.TreeNode) bool {
	tables := hcurve.Active()
	rot := tables.ChildRotation(0, 0)
	for lev := octree.Level(1); lev <= a.Lev && lev <= b.Lev; lev++ {
		ma, mb := hcurve.ChildID(a.GetMortonIndex(lev)), hcurve.ChildID(b.GetMortonIndex(lev))
		if ma != mb {
			return tables.MortonToSFC(rot, ma) < tables.MortonToSFC(rot, mb)
		}
		rot = tables.ChildRotation(rot, ma)
	}
	return a.Lev <= b.Lev
}

// finalizeOwnership implements step 6: within each coincident group
// marked Yes, the replica with the lowest owner rank wins. Every
// replica reaching this point has Owner set to either the rank that
// sent it (boundaryLayer/received) or NoOwner for points that were
// never exchanged at all, so NoOwner never competes against a real
// rank inside an actual coincident group. Losing replicas are dropped, a
// winner owned by a remote rank is kept with IsSelected No, and groups
// not marked Yes are dropped; at most one record per location remains.
func finalizeOwnership(myRank int, points []octree.TNPoint) []octree.TNPoint {
	type best struct {
		idx   int
		owner int
	}
	groups := make(map[string]*best)
	order := make([]string, 0, len(points))
	for i, p := range points {
		if p.IsSelected != octree.Yes {
			continue
		}
		k := coordKey(p)
		b, ok := groups[k]
		if !ok {
			groups[k] = &best{idx: i, owner: p.Owner}
			order = append(order, k)
			continue
		}
		if rankOrder(p.Owner) < rankOrder(b.owner) {
			b.idx, b.owner = i, p.Owner
		}
	}
	out := make([]octree.TNPoint, 0, len(order))
	for _, k := range order {
		b := groups[k]
		p := points[b.idx]
		if b.owner == octree.NoOwner || b.owner == myRank {
			p.IsSelected = octree.Yes
		} else {
			p.IsSelected = octree.No
		}
		out = append(out, p)
	}
	return out
}

// rankOrder maps NoOwner (-1, "I own this, it's interior") to be the
// smallest possible owner so it always wins ties against any real rank.
func rankOrder(owner int) int {
	if owner == octree.NoOwner {
		return -1
	}
	return owner
}

// buildScatterFaces implements step 5: every point whose final owner is
// a remote rank contributes the open sub-faces of its own cell (GetCell
// at the point's level), decomposed via AppendKFaces over every proper
// exterior orientation. Hanging points are not in the finalized set, so
// no faces of a parent cell are emitted.
func buildScatterFaces(points []octree.TNPoint, myRank int) []ScatterFace {
	var out []ScatterFace
	seen := make(map[string]bool)
	for _, p := range points {
		if p.Owner == octree.NoOwner || p.Owner == myRank {
			continue
		}
		closed := p.GetCell()
		for _, orient := range octree.ExteriorOrientLow2High(closed.Dim) {
			ct := octree.CellType{Dim: uint8(popcountOrient(orient)), Orient: orient}
			for _, kf := range element.AppendKFaces(closed, ct) {
				key := faceKey(kf.Anchor, kf.Type, p.Owner)
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, ScatterFace{Anchor: kf.Anchor, Type: kf.Type, Owner: p.Owner})
			}
		}
	}
	return out
}

func faceKey(n octree.TreeNode, ct octree.CellType, owner int) string {
	return fmt.Sprintf("%v@%d/%d/%d", n.Coords, n.Lev, ct.Pack(), owner)
}

func popcountOrient(x uint8) int {
	n := 0
	for x != 0 {
		n += int(x & 1)
		x >>= 1
	}
	return n
}
