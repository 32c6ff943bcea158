package terrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbansim/citycore/internal/city"
)

func testConfig() Config {
	return Config{WorldSize: 200, CellSize: 5, Seed: 7}
}

func industrialAtOrigin() []city.Building {
	return []city.Building{{
		ID:            "factory",
		Position:      city.Vector3{},
		Zone:          city.ZoneIndustrial,
		Status:        city.StatusOperational,
		Capacity:      20,
		Level:         2,
		PropertyValue: 300_000,
	}}
}

func TestValuesStayClampedAfterRecompute(t *testing.T) {
	f := NewField(testConfig())
	buildings := industrialAtOrigin()

	f.UpdateEnvironmentalFactors(buildings)
	f.UpdateValues(buildings, nil)
	f.UpdateDynamics(30)
	f.UpdateEnvironmentalFactors(buildings)
	f.UpdateDirty()

	for i := range f.cells {
		c := &f.cells[i]
		assert.GreaterOrEqual(t, c.Value, 0.0)
		assert.LessOrEqual(t, c.Value, 1.0)
		assert.GreaterOrEqual(t, c.Pollution, 0.0)
		assert.GreaterOrEqual(t, c.Noise, 0.0)
	}
}

func TestPollutionFalloffFromSource(t *testing.T) {
	f := NewField(testConfig())
	f.UpdateEnvironmentalFactors(industrialAtOrigin())

	atSource := f.Pollution(0, 0)
	assert.Greater(t, atSource, 0.0, "industrial source cell should be polluted")

	// The industrial pollution factor reaches 52 world units; a cell at
	// that distance gets nothing.
	atRadius := f.Pollution(52.5, 2.5)
	assert.Greater(t, atSource, atRadius)
	assert.Zero(t, atRadius)
}

func TestPollutionSpreadsToCleanNeighbor(t *testing.T) {
	f := NewField(testConfig())
	f.UpdateEnvironmentalFactors(industrialAtOrigin())

	probe := func() float64 { return f.Pollution(52.5, 2.5) }
	donor := f.Pollution(47.5, 2.5)
	require.Greater(t, donor, pollutionFloor, "the boundary cell must have enough pollution to donate")
	require.Zero(t, probe(), "the probe cell starts clean")

	for i := 0; i < 5; i++ {
		f.UpdateDynamics(10)
	}
	assert.Greater(t, probe(), 0.0, "diffusion should carry pollution past the factor radius")
}

func TestNaturalRecoveryDecaysWithoutSources(t *testing.T) {
	f := NewField(testConfig())
	f.UpdateEnvironmentalFactors(industrialAtOrigin())
	before := f.Pollution(0, 0)
	require.Greater(t, before, 0.0)

	// No factor refresh in between: sources are gone, decay wins.
	for i := 0; i < 20; i++ {
		f.UpdateDynamics(30)
	}
	assert.Less(t, f.Pollution(0, 0), before)
}

func TestWaterCellsExistAndRejectDevelopment(t *testing.T) {
	f := NewField(testConfig())

	found := false
	for i := range f.cells {
		if f.cells[i].IsWater {
			found = true
			pos := f.cellWorldPos(i)
			score, ok := f.CanDevelop(pos.X, pos.Z, city.ZoneResidential)
			assert.False(t, ok, "water cells can never be developed")
			assert.Zero(t, score)
			break
		}
	}
	require.True(t, found, "generated worlds carry procedural water bodies")
}

func TestProtectedCellsRestrictIndustry(t *testing.T) {
	f := NewField(testConfig())

	for i := range f.cells {
		c := &f.cells[i]
		if !c.IsProtected || c.IsWater {
			continue
		}
		pos := f.cellWorldPos(i)
		_, ok := f.CanDevelop(pos.X, pos.Z, city.ZoneIndustrial)
		assert.False(t, ok, "protected areas restrict industrial development")
		_, ok = f.CanDevelop(pos.X, pos.Z, city.ZoneResidential)
		assert.True(t, ok, "protected areas still allow residential")
		return
	}
	t.Fatal("expected at least one protected land cell")
}

func TestAnalyzeAreaBounds(t *testing.T) {
	f := NewField(testConfig())
	buildings := industrialAtOrigin()
	f.UpdateEnvironmentalFactors(buildings)
	f.UpdateValues(buildings, nil)

	a := f.AnalyzeArea(city.Vector3{}, 80)
	assert.GreaterOrEqual(t, a.AverageValue, 0.0)
	assert.LessOrEqual(t, a.AverageValue, 1.0)
	assert.GreaterOrEqual(t, a.MaxValue, a.MinValue)
	assert.GreaterOrEqual(t, a.EnvironmentalHealth, 0.0)
	assert.LessOrEqual(t, a.EnvironmentalHealth, 1.0)
	assert.GreaterOrEqual(t, a.WaterCoverage, 0.0)
	for zone, score := range a.DevelopmentSuitability {
		assert.GreaterOrEqual(t, score, 0.0, "zone %v", zone)
		assert.LessOrEqual(t, score, 1.0, "zone %v", zone)
	}

	// Fully off-grid area yields the zero analysis, not an error.
	empty := f.AnalyzeArea(city.Vector3{X: 10_000}, 10)
	assert.Zero(t, empty.AverageValue)
	assert.Zero(t, empty.WaterCoverage)
}

func TestDevelopmentCostHigherOnWater(t *testing.T) {
	f := NewField(testConfig())
	var land, water float64
	for i := range f.cells {
		c := &f.cells[i]
		if c.IsWater && water == 0 {
			water = c.DevelopmentCost
		}
		if !c.IsWater && c.SoilQuality >= 0.4 && land == 0 {
			land = c.DevelopmentCost
		}
		if land > 0 && water > 0 {
			break
		}
	}
	require.Greater(t, water, 0.0)
	require.Greater(t, land, 0.0)
	assert.Greater(t, water, land)
}
