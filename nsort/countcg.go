// Package nsort classifies a locally-sorted multiset of element-emitted
// nodal points into the owned, deduplicated set of continuous-Galerkin
// nodes: which coincident instances are the same node, which are hanging,
// and (in the distributed counterpart) who owns each survivor.
package nsort

import (
	"fmt"
	"sort"

	"github.com/notargets/adaptoct/octree"
	"github.com/notargets/adaptoct/sfc"
)

func coordKey(p octree.TNPoint) string {
	return fmt.Sprint(p.Coords)
}

// CompactInstances runs Pass A over the already-SFC-sorted range
// points[start:end): literal (coords, level) duplicates are collapsed into
// their first occurrence, with NumInstances accumulated onto the
// survivor and the lowest Owner among the duplicates (NoOwner counting
// lowest) kept on it. Returns the number of surviving points, now occupying
// points[start : start+n]. Idempotent: running it again over an
// already-compacted range is a no-op.
func CompactInstances(points []octree.TNPoint, start, end int) int {
	if end <= start {
		return 0
	}
	write := start
	points[write] = points[start]
	for read := start + 1; read < end; read++ {
		if points[read].Equal(points[write]) {
			points[write].NumInstances += points[read].NumInstances
			if rankOrder(points[read].Owner) < rankOrder(points[write].Owner) {
				points[write].Owner = points[read].Owner
			}
			continue
		}
		write++
		points[write] = points[read]
	}
	return write - start + 1
}

// Classify runs Pass B over points[start:end), which must already be
// instance-compacted (CompactInstances or the distributed merge of local
// and received points). It partitions the range into interior and
// domain-boundary points, classifies each, and compacts the range down to
// its surviving (Yes ∪ kept-No) entries — in practice every surviving
// entry's IsSelected field is authoritative and entries are not removed,
// only reordered and deduplicated by location where the boundary pass
// merges duplicates. Returns the number of Yes-selected points in the
// range.
func Classify(points []octree.TNPoint, start, end, order int) int {
	boundaryStart := filterDomainBoundary(points, start, end)
	newEnd := classifyBoundary(points, boundaryStart, end)
	if order <= 2 {
		classifyLowOrder(points, start, boundaryStart)
	} else {
		classifyHighOrder(points, start, boundaryStart)
	}
	yes := 0
	for i := start; i < newEnd; i++ {
		if points[i].IsSelected == octree.Yes {
			yes++
		}
	}
	return yes
}

// filterDomainBoundary stably partitions [start,end) into interior points
// (front) and domain-boundary points (back), returning the boundary
// slice's start index.
func filterDomainBoundary(points []octree.TNPoint, start, end int) int {
	interior := make([]octree.TNPoint, 0, end-start)
	boundary := make([]octree.TNPoint, 0)
	for i := start; i < end; i++ {
		if points[i].IsOnDomainBoundary() {
			boundary = append(boundary, points[i])
		} else {
			interior = append(interior, points[i])
		}
	}
	copy(points[start:], interior)
	copy(points[start+len(interior):], boundary)
	return start + len(interior)
}

// classifyBoundary re-buckets the boundary slice at level-1 resolution (it
// may not already be sorted that way — boundary points of an element can
// land in a different level-1 child than the element itself) and collapses
// duplicate locations into a single Yes survivor (R7).
func classifyBoundary(points []octree.TNPoint, start, end int) int {
	if end <= start {
		return start
	}
	sfc.LocTreeSortAsPoints(points, start, end, 1, 2, 0)
	write := start
	points[write] = points[start]
	points[write].IsSelected = octree.Yes
	for read := start + 1; read < end; read++ {
		if coordKey(points[read]) == coordKey(points[write]) {
			points[write].NumInstances += points[read].NumInstances
			continue
		}
		write++
		points[write] = points[read]
		points[write].IsSelected = octree.Yes
	}
	return write + 1
}

// classifyLowOrder implements the order<=2 resolver: points are grouped by
// coincident coordinates regardless of level. A group spanning multiple
// levels keeps its coarsest member as Yes and demotes the rest to No; a
// single-level group is Yes iff its instance count equals the full
// incidence count 2^(D-cellDim) for its cell type.
func classifyLowOrder(points []octree.TNPoint, start, end int) {
	groups := make(map[string][]int)
	for i := start; i < end; i++ {
		groups[coordKey(points[i])] = append(groups[coordKey(points[i])], i)
	}
	for _, idxs := range groups {
		sort.Slice(idxs, func(a, b int) bool { return points[idxs[a]].Level < points[idxs[b]].Level })
		minLevel := points[idxs[0]].Level
		multiLevel := points[idxs[len(idxs)-1]].Level != minLevel
		if multiLevel {
			for k, idx := range idxs {
				if k == 0 {
					points[idx].IsSelected = octree.Yes
				} else {
					points[idx].IsSelected = octree.No
				}
			}
			continue
		}
		p := points[idxs[0]]
		full := 1 << uint(p.Dim-int(p.CellType().Dim))
		isYes := int(p.NumInstances) == full
		for _, idx := range idxs {
			if isYes {
				points[idx].IsSelected = octree.Yes
			} else {
				points[idx].IsSelected = octree.No
			}
		}
	}
}

// classifyHighOrder implements §4.5's K-cell resolver: points are grouped
// by their finest open container (the K-cell: getFinestOpenContainer()),
// and each container is handed to resolveKCell along with its own level,
// which the resolver needs for firstIncidentHyperplane bucketing.
func classifyHighOrder(points []octree.TNPoint, start, end int) {
	containers := make(map[string][]int)
	containerLevel := make(map[string]octree.Level)
	for i := start; i < end; i++ {
		c := points[i].GetFinestOpenContainer()
		key := fmt.Sprintf("%v@%d", c.Coords, c.Lev)
		containers[key] = append(containers[key], i)
		containerLevel[key] = c.Lev
	}
	for key, idxs := range containers {
		resolveKCell(points, idxs, containerLevel[key])
	}
}

// kcellRow is one row of §4.5's orientation table, keyed by a point's
// native CellType().Orient: the coarsest level seen among points of that
// orientation so far (the lookup target for *other* points' parent-overlap
// tests — see resolveKCell), plus the finer points buffered under it
// because no coarse point of this orientation had been seen when they
// were tested. When the row's level is first set or becomes coarser, the
// points buffered under it are demoted to No.
type kcellRow struct {
	coarsest octree.Level
	seen     bool
	pending  []int
}

// resolveKCell implements the high-order resolver for a single K-cell.
// Points are walked in firstIncidentHyperplane(hlev)-then-level order,
// matching §4.5 step 3's "bucketed by firstIncidentHyperplane and sorted
// within each hyperplane" and the locality invariant that the SFC never
// re-enters a coarser-or-equal level within a K-cell after leaving it.
//
// Every point updates the row for its own native CellType().Orient with
// its level, coarsest wins (step 1); when that sets the row's level or
// makes it coarser, every point buffered under the row is demoted to No
// (step 2), since a coarser open cell's node now overlaps it. The table
// exists so that a
// *later*, finer point elsewhere in the K-cell can look up its own
// parent's cell-type row and see what the coarsest representative of
// that type was. The K-cell as a whole tracks a single first-seen level;
// points are buffered unprocessed (step 3) until a second, distinct
// level appears anywhere in the K-cell, at which point the two levels
// split (step 4): every buffered or arriving point at the coarse level
// is Yes, and every point at a finer level is tested against the row
// keyed by its *parent* cell type (CellTypeOnParent, generally a
// different orientation than its own) — a match there proves a coarser
// open cell's interior node already coincides with this location, so
// the finer point is hanging (No); otherwise it is buffered under that
// parent row, where a later point of that orientation demotes it as
// above. Anything never resolved by the time
// the K-cell is exhausted defaults to Yes (step 5). A K-cell is assumed
// to split into exactly two levels (coarse/fine), matching the "coarse
// L_c and fine L_f" phrasing and the 2:1-balance shape of every worked
// scenario; a third, even coarser level appearing after the first split
// is not specified and is not specially handled here.
func resolveKCell(points []octree.TNPoint, idxs []int, hlev octree.Level) {
	sort.SliceStable(idxs, func(a, b int) bool {
		ha, hb := points[idxs[a]].FirstIncidentHyperplane(hlev), points[idxs[b]].FirstIncidentHyperplane(hlev)
		if ha != hb {
			return ha < hb
		}
		return points[idxs[a]].Level < points[idxs[b]].Level
	})

	rows := make(map[uint8]*kcellRow)
	rowFor := func(orient uint8) *kcellRow {
		r, ok := rows[orient]
		if !ok {
			r = &kcellRow{}
			rows[orient] = r
		}
		return r
	}

	// resolveFine applies step 4's parent-overlap test to a point already
	// known to be finer than coarseLevel.
	resolveFine := func(idx int, coarseLevel octree.Level) {
		p := points[idx]
		if p.Level == 0 {
			points[idx].IsSelected = octree.Yes
			return
		}
		parentRow := rowFor(p.CellTypeOnParent().Orient)
		if parentRow.seen && parentRow.coarsest == coarseLevel {
			points[idx].IsSelected = octree.No
			return
		}
		parentRow.pending = append(parentRow.pending, idx)
	}

	var (
		haveFirstLevel bool
		firstLevel     octree.Level
		established    bool
		coarseLevel    octree.Level
		unprocessed    []int
	)

	for _, idx := range idxs {
		p := points[idx]
		row := rowFor(p.CellType().Orient)
		if !row.seen || p.Level < row.coarsest {
			row.seen = true
			row.coarsest = p.Level
			for _, pendingIdx := range row.pending {
				points[pendingIdx].IsSelected = octree.No
			}
			row.pending = nil
		}

		switch {
		case !haveFirstLevel:
			haveFirstLevel = true
			firstLevel = p.Level
			unprocessed = append(unprocessed, idx)
		case established:
			if p.Level == coarseLevel {
				points[idx].IsSelected = octree.Yes
			} else {
				resolveFine(idx, coarseLevel)
			}
		case p.Level == firstLevel:
			unprocessed = append(unprocessed, idx)
		default:
			// A second, distinct level has appeared in this K-cell: split.
			established = true
			if p.Level < firstLevel {
				coarseLevel = p.Level
			} else {
				coarseLevel = firstLevel
			}
			unprocessed = append(unprocessed, idx)
			for _, pendingIdx := range unprocessed {
				if points[pendingIdx].Level == coarseLevel {
					points[pendingIdx].IsSelected = octree.Yes
				} else {
					resolveFine(pendingIdx, coarseLevel)
				}
			}
			unprocessed = nil
		}
	}

	for _, idx := range unprocessed {
		points[idx].IsSelected = octree.Yes
	}
	for _, row := range rows {
		for _, idx := range row.pending {
			points[idx].IsSelected = octree.Yes
		}
	}
}
