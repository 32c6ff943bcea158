// Package terrain provides the terrain valuation field: procedural
// elevation and soil, water bodies and protected areas, environmental
// factor application, pollution/noise dynamics, and per-cell desirability
// values that drive property value and zoning suitability.
package terrain

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/urbansim/citycore/internal/city"
)

// Tunable field constants.
const (
	optimalElevation   = 0.45 // preferred building elevation (normalized)
	waterThreshold     = 60.0 // world units beyond which water stops mattering
	waterCellThreshold = 6.0  // cells this close to a water vertex are water
	pollutionFloor     = 0.01 // below this, a cell does not spread pollution
	spreadRate         = 0.05 // fraction of pollution donated per sim-second
	recoveryRate       = 0.01 // exponential decay rate per sim-second
	trafficDecay       = 0.85 // per-pass decay of the foot-traffic estimate
)

// Config holds terrain generation parameters.
type Config struct {
	WorldSize float64 // world spans [-WorldSize/2, WorldSize/2] on X and Z
	CellSize  float64
	Seed      int64
}

// DefaultConfig returns a reasonable starting configuration.
func DefaultConfig() Config {
	return Config{WorldSize: 400, CellSize: 4, Seed: 1}
}

// Cell is one discretized terrain position. Created at initialization,
// mutated by recompute passes, never destroyed in-session.
type Cell struct {
	X, Z            int
	Elevation       float64 // 0.0–1.0
	Value           float64 // 0.0–1.0 desirability
	Pollution       float64 // >= 0
	Noise           float64 // >= 0
	Scenic          float64
	Traffic         float64 // foot-traffic estimate, decays between passes
	WaterDistance   float64
	SoilQuality     float64
	DevelopmentCost float64
	IsWater         bool
	IsProtected     bool
	Restrictions    []string // zone tags that may not develop here
}

// Circle is a protected-area region.
type Circle struct {
	Center city.Vector3
	Radius float64
}

// Field owns the terrain grid. External callers read values through
// accessors; cells are never handed out for mutation.
type Field struct {
	cfg        Config
	cols, rows int
	originX    float64
	originZ    float64
	cells      []Cell

	waterBodies [][]city.Vector3
	protected   []Circle

	factors []Factor
	dirty   map[int]struct{}
}

// NewField generates the terrain grid: multi-octave elevation noise with
// edge falloff, soil quality from elevation, procedural water polylines and
// protected circles, and initial water distances.
func NewField(cfg Config) *Field {
	if cfg.CellSize <= 0 {
		cfg.CellSize = 4
	}
	cols := int(math.Ceil(cfg.WorldSize / cfg.CellSize))
	rows := cols
	f := &Field{
		cfg:     cfg,
		cols:    cols,
		rows:    rows,
		originX: -cfg.WorldSize / 2,
		originZ: -cfg.WorldSize / 2,
		cells:   make([]Cell, cols*rows),
		dirty:   make(map[int]struct{}),
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	noise := opensimplex.NewNormalized(cfg.Seed)

	f.placeWaterBodies(rng)
	f.placeProtectedAreas(rng)

	half := cfg.WorldSize / 2
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			wx := f.originX + (float64(col)+0.5)*cfg.CellSize
			wz := f.originZ + (float64(row)+0.5)*cfg.CellSize

			elev := octaveNoise(noise, wx, wz, 4, 0.01, 0.5)

			// Flatten toward the world edge so the city sits in a basin.
			distFromCenter := math.Sqrt(wx*wx+wz*wz) / half
			falloff := 1.0 - math.Pow(math.Min(distFromCenter, 1), 3)
			elev *= 0.4 + 0.6*falloff

			cell := Cell{
				X:         col,
				Z:         row,
				Elevation: elev,
				// Soil peaks at the optimal elevation band.
				SoilQuality: city.Clamp01(1 - math.Abs(elev-optimalElevation)/0.5),
			}

			pos := city.Vector3{X: wx, Z: wz}
			cell.WaterDistance = f.nearestWaterDistance(pos)
			cell.IsWater = cell.WaterDistance < waterCellThreshold

			for _, pa := range f.protected {
				if pos.DistanceXZ(pa.Center) <= pa.Radius {
					cell.IsProtected = true
					cell.Restrictions = []string{"industrial", "commercial", "office"}
					break
				}
			}

			cell.DevelopmentCost = developmentCost(&cell)
			f.cells[f.index(col, row)] = cell
		}
	}

	// First full value pass with no buildings or agents.
	f.UpdateValues(nil, nil)
	return f
}

// placeWaterBodies traces 2–3 sinusoidal rivers across the world.
func (f *Field) placeWaterBodies(rng *rand.Rand) {
	count := 2 + rng.Intn(2)
	half := f.cfg.WorldSize / 2
	for r := 0; r < count; r++ {
		offset := (rng.Float64()*2 - 1) * half * 0.7
		amplitude := 10 + rng.Float64()*30
		freq := 0.01 + rng.Float64()*0.02
		phase := rng.Float64() * 2 * math.Pi

		var polyline []city.Vector3
		step := f.cfg.CellSize
		for x := -half; x <= half; x += step {
			z := offset + amplitude*math.Sin(freq*x+phase)
			polyline = append(polyline, city.Vector3{X: x, Z: z})
		}
		f.waterBodies = append(f.waterBodies, polyline)
	}
}

// placeProtectedAreas scatters a few nature-reserve circles on land.
func (f *Field) placeProtectedAreas(rng *rand.Rand) {
	count := 2 + rng.Intn(3)
	half := f.cfg.WorldSize / 2
	for i := 0; i < count; i++ {
		f.protected = append(f.protected, Circle{
			Center: city.Vector3{
				X: (rng.Float64()*2 - 1) * half * 0.8,
				Z: (rng.Float64()*2 - 1) * half * 0.8,
			},
			Radius: 10 + rng.Float64()*25,
		})
	}
}

// nearestWaterDistance returns the distance to the closest water-body vertex.
func (f *Field) nearestWaterDistance(pos city.Vector3) float64 {
	best := math.Inf(1)
	for _, polyline := range f.waterBodies {
		for _, v := range polyline {
			if d := pos.DistanceXZ(v); d < best {
				best = d
			}
		}
	}
	if math.IsInf(best, 1) {
		return f.cfg.WorldSize
	}
	return best
}

// developmentCost estimates per-cell build cost from elevation and soil.
func developmentCost(c *Cell) float64 {
	cost := 100.0 * (1 + c.Elevation*1.5)
	if c.SoilQuality < 0.4 {
		cost *= 1.5 // poor ground needs deeper foundations
	}
	if c.IsWater {
		cost *= 10
	}
	return cost
}

func (f *Field) index(col, row int) int {
	return row*f.cols + col
}

func (f *Field) inBounds(col, row int) bool {
	return col >= 0 && row >= 0 && col < f.cols && row < f.rows
}

// locate maps a world position to a cell index, false when outside.
func (f *Field) locate(x, z float64) (int, bool) {
	col := int(math.Floor((x - f.originX) / f.cfg.CellSize))
	row := int(math.Floor((z - f.originZ) / f.cfg.CellSize))
	if !f.inBounds(col, row) {
		return 0, false
	}
	return f.index(col, row), true
}

// cellWorldPos returns the world-space center of a cell by index.
func (f *Field) cellWorldPos(idx int) city.Vector3 {
	col := idx % f.cols
	row := idx / f.cols
	return city.Vector3{
		X: f.originX + (float64(col)+0.5)*f.cfg.CellSize,
		Z: f.originZ + (float64(row)+0.5)*f.cfg.CellSize,
	}
}

// Value returns the desirability of the cell containing (x, z),
// or 0 outside the grid.
func (f *Field) Value(x, z float64) float64 {
	idx, ok := f.locate(x, z)
	if !ok {
		return 0
	}
	return f.cells[idx].Value
}

// DevelopmentCost returns the build-cost estimate at (x, z), or 0 outside.
func (f *Field) DevelopmentCost(x, z float64) float64 {
	idx, ok := f.locate(x, z)
	if !ok {
		return 0
	}
	return f.cells[idx].DevelopmentCost
}

// Pollution returns the pollution level at (x, z), or 0 outside.
func (f *Field) Pollution(x, z float64) float64 {
	idx, ok := f.locate(x, z)
	if !ok {
		return 0
	}
	return f.cells[idx].Pollution
}

// CellAt returns a copy of the cell containing (x, z).
func (f *Field) CellAt(x, z float64) (Cell, bool) {
	idx, ok := f.locate(x, z)
	if !ok {
		return Cell{}, false
	}
	return f.cells[idx], true
}

// octaveNoise layers multiple noise frequencies into fractal terrain.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}
