package nav

import (
	"container/heap"
	"math"

	"github.com/urbansim/citycore/internal/city"
)

type navNeighbor struct {
	col, row int
	cost     float64
	diagonal bool
}

var neighborOffsets = [...]navNeighbor{
	{col: 0, row: -1, cost: 1},
	{col: 1, row: 0, cost: 1},
	{col: 0, row: 1, cost: 1},
	{col: -1, row: 0, cost: 1},
	{col: 1, row: -1, cost: math.Sqrt2, diagonal: true},
	{col: 1, row: 1, cost: math.Sqrt2, diagonal: true},
	{col: -1, row: 1, cost: math.Sqrt2, diagonal: true},
	{col: -1, row: -1, cost: math.Sqrt2, diagonal: true},
}

type openNode struct {
	index   int // cell index
	f       float64
	heapIdx int
}

type openHeap []*openNode

func (h openHeap) Len() int           { return len(h) }
func (h openHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h openHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIdx = i
	h[j].heapIdx = j
}
func (h *openHeap) Push(x any) {
	n := x.(*openNode)
	n.heapIdx = len(*h)
	*h = append(*h, n)
}
func (h *openHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*h = old[:len(old)-1]
	return n
}

// octile is the admissible heuristic for 8-directional grid movement.
func octile(dc, dr int) float64 {
	dx := math.Abs(float64(dc))
	dz := math.Abs(float64(dr))
	if dx < dz {
		dx, dz = dz, dx
	}
	return dx + (math.Sqrt2-1)*dz
}

// FindPath returns an ordered waypoint sequence from start to end. It never
// fails: endpoints outside the grid or on blocked cells produce a direct
// interpolated fallback path, and start == end produces an empty path.
func (p *Pathfinder) FindPath(start, end city.Vector3) []city.Vector3 {
	if start.DistanceXZ(end) < 1e-9 {
		return nil
	}

	startCol, startRow, okStart := p.locate(start)
	endCol, endRow, okEnd := p.locate(end)
	if !okStart || !okEnd || !p.isWalkable(startCol, startRow) || !p.isWalkable(endCol, endRow) {
		return p.directPath(start, end)
	}

	startIdx := p.index(startCol, startRow)
	endIdx := p.index(endCol, endRow)
	if startIdx == endIdx {
		return []city.Vector3{end}
	}

	gScore := make([]float64, len(p.cells))
	for i := range gScore {
		gScore[i] = math.Inf(1)
	}
	parent := make([]int, len(p.cells))
	for i := range parent {
		parent[i] = -1
	}
	closed := make([]bool, len(p.cells))

	gScore[startIdx] = 0
	open := &openHeap{}
	heap.Init(open)
	heap.Push(open, &openNode{index: startIdx, f: octile(endCol-startCol, endRow-startRow)})

	for open.Len() > 0 {
		current := heap.Pop(open).(*openNode)
		if closed[current.index] {
			continue
		}
		closed[current.index] = true
		if current.index == endIdx {
			break
		}

		curCol := current.index % p.cols
		curRow := current.index / p.cols

		for _, nb := range neighborOffsets {
			nCol := curCol + nb.col
			nRow := curRow + nb.row
			if !p.isWalkable(nCol, nRow) {
				continue
			}
			// Diagonal steps may not cut building corners.
			if nb.diagonal && (!p.isWalkable(curCol+nb.col, curRow) || !p.isWalkable(curCol, curRow+nb.row)) {
				continue
			}
			nIdx := p.index(nCol, nRow)
			if closed[nIdx] {
				continue
			}
			stepCost := nb.cost * p.cells[nIdx].costMul
			tentative := gScore[current.index] + stepCost
			if tentative < gScore[nIdx] {
				gScore[nIdx] = tentative
				parent[nIdx] = current.index
				heap.Push(open, &openNode{
					index: nIdx,
					f:     tentative + octile(endCol-nCol, endRow-nRow),
				})
			}
		}
	}

	if parent[endIdx] == -1 {
		// Goal unreachable on this grid — best-effort direct path.
		return p.directPath(start, end)
	}

	// Walk parents back to the start, then reverse.
	var cells []int
	for idx := endIdx; idx != -1; idx = parent[idx] {
		cells = append(cells, idx)
	}
	waypoints := make([]city.Vector3, 0, len(cells)+1)
	for i := len(cells) - 1; i >= 0; i-- {
		waypoints = append(waypoints, p.worldPos(cells[i]%p.cols, cells[i]/p.cols))
	}
	waypoints[0] = start
	waypoints[len(waypoints)-1] = end

	return p.smooth(waypoints)
}

// directPath interpolates evenly spaced points between start and end.
// Best-effort fallback for endpoints the grid cannot serve; documented
// behavior, not an error condition.
func (p *Pathfinder) directPath(start, end city.Vector3) []city.Vector3 {
	dist := start.DistanceXZ(end)
	steps := int(math.Ceil(dist / p.cellSize))
	if steps < 1 {
		steps = 1
	}
	path := make([]city.Vector3, 0, steps)
	for s := 1; s <= steps; s++ {
		path = append(path, start.Lerp(end, float64(s)/float64(steps)))
	}
	return path
}

// smooth reduces a waypoint chain by greedy line-of-sight extension:
// from each kept waypoint, jump to the farthest waypoint still reachable
// by an unobstructed straight segment.
func (p *Pathfinder) smooth(waypoints []city.Vector3) []city.Vector3 {
	if len(waypoints) <= 2 {
		return waypoints
	}
	smoothed := []city.Vector3{waypoints[0]}
	anchor := 0
	for anchor < len(waypoints)-1 {
		next := anchor + 1
		for probe := len(waypoints) - 1; probe > next; probe-- {
			if p.lineOfSight(waypoints[anchor], waypoints[probe]) {
				next = probe
				break
			}
		}
		smoothed = append(smoothed, waypoints[next])
		anchor = next
	}
	return smoothed
}

// lineOfSight reports whether the straight segment a→b crosses only
// walkable cells, sampled at half-cell resolution.
func (p *Pathfinder) lineOfSight(a, b city.Vector3) bool {
	length := a.DistanceXZ(b)
	steps := int(math.Ceil(length/(p.cellSize/2))) + 1
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		col, row, ok := p.locate(a.Lerp(b, t))
		if !ok || !p.cells[p.index(col, row)].walkable {
			return false
		}
	}
	return true
}
