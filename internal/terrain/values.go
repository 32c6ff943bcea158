package terrain

import (
	"math"

	"github.com/urbansim/citycore/internal/city"
)

// Value blend weights.
const (
	waterBonusWeight     = 0.25
	elevationBonusWeight = 0.2
	pollutionPenalty     = 0.5
	noisePenalty         = 0.3
	scenicBonusWeight    = 0.2
	soilWeight           = 0.3
	protectedBonus       = 0.1
)

// UpdateValues runs a full-grid value recompute: every cell's desirability
// is rebuilt from its current environmental state, and the foot-traffic
// estimate is refreshed from agent positions. Runs on the coarse interval;
// UpdateDirty covers the cells touched in between.
func (f *Field) UpdateValues(buildings []city.Building, agents []city.Agent) {
	f.refreshTraffic(agents)
	for i := range f.cells {
		f.recomputeCell(i)
	}
	f.dirty = make(map[int]struct{})
}

// UpdateDirty recomputes only the cells queued since the last full pass.
func (f *Field) UpdateDirty() int {
	n := len(f.dirty)
	for idx := range f.dirty {
		f.recomputeCell(idx)
	}
	f.dirty = make(map[int]struct{})
	return n
}

// refreshTraffic decays the per-cell foot-traffic estimate and bumps the
// cells agents currently stand on (and their axis neighbors).
func (f *Field) refreshTraffic(agents []city.Agent) {
	for i := range f.cells {
		f.cells[i].Traffic *= trafficDecay
	}
	for _, a := range agents {
		idx, ok := f.locate(a.Position.X, a.Position.Z)
		if !ok {
			continue
		}
		col := idx % f.cols
		row := idx / f.cols
		f.cells[idx].Traffic += 0.2
		for _, d := range [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}} {
			if f.inBounds(col+d[0], row+d[1]) {
				f.cells[f.index(col+d[0], row+d[1])].Traffic += 0.05
			}
		}
	}
	for i := range f.cells {
		if f.cells[i].Traffic > 1 {
			f.cells[i].Traffic = 1
		}
	}
}

// recomputeCell rebuilds one cell's desirability from water proximity,
// elevation preference, pollution, noise, scenery, soil, and protection.
// Result clamped to [0, 1].
func (f *Field) recomputeCell(idx int) {
	c := &f.cells[idx]
	if c.IsWater {
		c.Value = 0
		return
	}

	value := 0.5

	// Water proximity bonus, decaying to zero past the threshold.
	if c.WaterDistance < waterThreshold {
		value += waterBonusWeight * (1 - c.WaterDistance/waterThreshold)
	}

	// Peaked elevation preference around the optimum.
	elevDelta := math.Abs(c.Elevation - optimalElevation)
	value += elevationBonusWeight * (1 - math.Min(elevDelta/0.3, 1))

	value -= pollutionPenalty * c.Pollution
	value -= noisePenalty * c.Noise
	value += scenicBonusWeight * math.Min(c.Scenic, 1)
	value += soilWeight * (c.SoilQuality - 0.5)
	if c.IsProtected {
		value += protectedBonus
	}

	c.Value = city.Clamp01(value)
}

// CanDevelop reports whether the cell at (x, z) may host the given zone,
// with a suitability score in [0, 1]. Water cells, out-of-grid positions,
// and restricted cells score zero.
func (f *Field) CanDevelop(x, z float64, zone city.ZoneType) (float64, bool) {
	idx, ok := f.locate(x, z)
	if !ok {
		return 0, false
	}
	c := &f.cells[idx]
	if c.IsWater {
		return 0, false
	}
	for _, tag := range c.Restrictions {
		if tag == city.ZoneName(zone) {
			return 0, false
		}
	}
	return suitability(c, zone), true
}

// suitability scores one cell for one zone, clamped to [0, 1].
//
// Residential wants quiet, clean cells near water; commercial wants foot
// traffic; industrial avoids displacing premium land but wants decent soil;
// office wants high base value and clean air.
func suitability(c *Cell, zone city.ZoneType) float64 {
	waterProx := city.Clamp01(1 - c.WaterDistance/waterThreshold)
	var score float64
	switch zone {
	case city.ZoneResidential:
		score = 0.5 + 0.3*waterProx + 0.2*c.Scenic - 0.6*c.Pollution - 0.4*c.Noise
	case city.ZoneCommercial:
		score = 0.3 + 0.5*c.Traffic + 0.2*c.Value - 0.4*c.Pollution
	case city.ZoneIndustrial:
		score = 0.8 - 0.5*c.Value + 0.3*c.SoilQuality
	case city.ZoneOffice:
		score = 0.2 + 0.6*c.Value - 0.5*c.Pollution
	}
	return city.Clamp01(score)
}
