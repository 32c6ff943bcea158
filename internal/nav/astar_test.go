package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbansim/citycore/internal/city"
)

func pathLength(path []city.Vector3, start city.Vector3) float64 {
	total := 0.0
	prev := start
	for _, wp := range path {
		total += prev.DistanceXZ(wp)
		prev = wp
	}
	return total
}

func TestFindPathStartEqualsEnd(t *testing.T) {
	p := New(100, 100, 2)
	path := p.FindPath(city.Vector3{X: 5, Z: 5}, city.Vector3{X: 5, Z: 5})
	assert.Empty(t, path)
}

func TestFindPathObstacleFreeIsNearStraight(t *testing.T) {
	p := New(100, 100, 2)
	start := city.Vector3{X: -40, Z: -40}
	end := city.Vector3{X: 40, Z: 40}

	path := p.FindPath(start, end)
	require.NotEmpty(t, path)
	assert.Equal(t, end, path[len(path)-1])

	straight := start.DistanceXZ(end)
	got := pathLength(path, start)
	assert.InDelta(t, straight, got, straight*0.1,
		"smoothed path on a free grid should be near the straight-line distance")
}

func TestFindPathRoutesAroundObstacle(t *testing.T) {
	p := New(120, 120, 2)
	// Wall across the middle, with room to go around either end.
	p.UpdateObstacles([]Footprint{{Center: city.Vector3{}, Width: 4, Depth: 60}})

	start := city.Vector3{X: -30, Z: 0}
	end := city.Vector3{X: 30, Z: 0}
	path := p.FindPath(start, end)
	require.NotEmpty(t, path)
	assert.Equal(t, end, path[len(path)-1])

	for _, wp := range path {
		col, row, ok := p.locate(wp)
		require.True(t, ok)
		assert.True(t, p.cells[p.index(col, row)].walkable,
			"waypoint %v should not sit inside the wall", wp)
	}
	// Going around costs more than the straight line through the wall.
	assert.Greater(t, pathLength(path, start), start.DistanceXZ(end))
}

func TestFindPathFullyBlockedFallsBackToDirect(t *testing.T) {
	p := New(40, 40, 2)
	p.UpdateObstacles([]Footprint{{Center: city.Vector3{}, Width: 40, Depth: 40}})

	start := city.Vector3{X: -15, Z: -15}
	end := city.Vector3{X: 15, Z: 15}
	path := p.FindPath(start, end)
	require.NotEmpty(t, path, "blocked grids fall back to a direct path, never fail")
	assert.Equal(t, end, path[len(path)-1])

	// Direct fallback is evenly spaced along the segment.
	assert.InDelta(t, start.DistanceXZ(end), pathLength(path, start), 1e-9)
}

func TestFindPathOutsideGridFallsBackToDirect(t *testing.T) {
	p := New(40, 40, 2)
	start := city.Vector3{X: -500, Z: 0}
	end := city.Vector3{X: 0, Z: 0}
	path := p.FindPath(start, end)
	require.NotEmpty(t, path)
	assert.Equal(t, end, path[len(path)-1])
}

func TestUpdateRoadsMarksCellsWithDiscount(t *testing.T) {
	p := New(100, 100, 5)
	p.UpdateRoads([][]city.Vector3{{{X: -40, Z: 0}, {X: 40, Z: 0}}})

	onRoad := 0
	for x := -40.0; x <= 40; x += 5 {
		col, row, ok := p.locate(city.Vector3{X: x, Z: 0})
		require.True(t, ok)
		cell := p.cells[p.index(col, row)]
		if cell.road {
			onRoad++
			assert.Equal(t, roadCostMultiplier, cell.costMul)
		}
	}
	assert.Greater(t, onRoad, 10, "the polyline should rasterize onto the cells it crosses")

	// Rebuilding with no roads clears the discount.
	p.UpdateRoads(nil)
	for i := range p.cells {
		assert.False(t, p.cells[i].road)
		assert.Equal(t, 1.0, p.cells[i].costMul)
	}
}
