// Package nav provides grid-based pathfinding over the city's walkable space.
// The grid is rebuilt from building footprints and road polylines only when
// topology changes, not every tick.
package nav

import (
	"math"

	"github.com/urbansim/citycore/internal/city"
)

// roadCostMultiplier biases routes onto roads without forcing them.
const roadCostMultiplier = 0.5

// Footprint is an axis-aligned obstacle on the ground plane.
type Footprint struct {
	Center city.Vector3
	Width  float64
	Depth  float64
}

type gridCell struct {
	walkable bool
	road     bool
	costMul  float64
}

// Pathfinder searches a uniform grid centered on the world origin.
type Pathfinder struct {
	cols, rows int
	cellSize   float64
	originX    float64 // world X of column 0's left edge
	originZ    float64 // world Z of row 0's near edge
	cells      []gridCell
}

// New creates a pathfinder covering width × depth world units centered on
// the origin, discretized at cellSize.
func New(width, depth, cellSize float64) *Pathfinder {
	if cellSize <= 0 {
		cellSize = 1
	}
	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(depth / cellSize))
	if cols <= 0 {
		cols = 1
	}
	if rows <= 0 {
		rows = 1
	}
	p := &Pathfinder{
		cols:     cols,
		rows:     rows,
		cellSize: cellSize,
		originX:  -width / 2,
		originZ:  -depth / 2,
		cells:    make([]gridCell, cols*rows),
	}
	p.reset()
	return p
}

func (p *Pathfinder) reset() {
	for i := range p.cells {
		p.cells[i] = gridCell{walkable: true, costMul: 1}
	}
}

func (p *Pathfinder) index(col, row int) int {
	return row*p.cols + col
}

func (p *Pathfinder) inBounds(col, row int) bool {
	return col >= 0 && row >= 0 && col < p.cols && row < p.rows
}

func (p *Pathfinder) isWalkable(col, row int) bool {
	if !p.inBounds(col, row) {
		return false
	}
	return p.cells[p.index(col, row)].walkable
}

// locate maps a world position to grid coordinates. ok is false when the
// position falls outside the grid.
func (p *Pathfinder) locate(pos city.Vector3) (col, row int, ok bool) {
	col = int(math.Floor((pos.X - p.originX) / p.cellSize))
	row = int(math.Floor((pos.Z - p.originZ) / p.cellSize))
	if !p.inBounds(col, row) {
		return 0, 0, false
	}
	return col, row, true
}

// worldPos returns the world-space center of a grid cell.
func (p *Pathfinder) worldPos(col, row int) city.Vector3 {
	return city.Vector3{
		X: p.originX + (float64(col)+0.5)*p.cellSize,
		Z: p.originZ + (float64(row)+0.5)*p.cellSize,
	}
}

// UpdateObstacles rebuilds the walkability layer from building footprints.
// Full-grid recomputation; callers invoke it only when buildings change.
func (p *Pathfinder) UpdateObstacles(footprints []Footprint) {
	for i := range p.cells {
		p.cells[i].walkable = true
	}
	for _, fp := range footprints {
		halfW := fp.Width / 2
		halfD := fp.Depth / 2
		minCol := int(math.Floor((fp.Center.X - halfW - p.originX) / p.cellSize))
		maxCol := int(math.Floor((fp.Center.X + halfW - p.originX) / p.cellSize))
		minRow := int(math.Floor((fp.Center.Z - halfD - p.originZ) / p.cellSize))
		maxRow := int(math.Floor((fp.Center.Z + halfD - p.originZ) / p.cellSize))
		for row := minRow; row <= maxRow; row++ {
			for col := minCol; col <= maxCol; col++ {
				if p.inBounds(col, row) {
					p.cells[p.index(col, row)].walkable = false
				}
			}
		}
	}
}

// UpdateRoads rebuilds the road layer from waypoint polylines. Road cells
// get a traversal cost discount so searches prefer them.
func (p *Pathfinder) UpdateRoads(roads [][]city.Vector3) {
	for i := range p.cells {
		p.cells[i].road = false
		p.cells[i].costMul = 1
	}
	for _, polyline := range roads {
		for i := 0; i+1 < len(polyline); i++ {
			p.rasterizeSegment(polyline[i], polyline[i+1])
		}
	}
}

// rasterizeSegment marks every cell touched by the segment as road,
// sampling at half-cell steps so no cell is skipped.
func (p *Pathfinder) rasterizeSegment(a, b city.Vector3) {
	length := a.DistanceXZ(b)
	steps := int(math.Ceil(length/(p.cellSize/2))) + 1
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		pt := a.Lerp(b, t)
		if col, row, ok := p.locate(pt); ok {
			cell := &p.cells[p.index(col, row)]
			cell.road = true
			cell.costMul = roadCostMultiplier
		}
	}
}
