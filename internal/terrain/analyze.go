package terrain

import (
	"math"

	"github.com/urbansim/citycore/internal/city"
)

// Analysis is the read-only area report consumed by external callers.
type Analysis struct {
	AverageValue           float64                   `json:"average_value"`
	MaxValue               float64                   `json:"max_value"`
	MinValue               float64                   `json:"min_value"`
	DevelopmentSuitability map[city.ZoneType]float64 `json:"development_suitability"`
	EnvironmentalHealth    float64                   `json:"environmental_health"`
	Pollution              float64                   `json:"pollution"`
	AverageElevation       float64                   `json:"average_elevation"`
	WaterCoverage          float64                   `json:"water_coverage"`
}

// AnalyzeArea summarizes all cells within radius of center. An area with no
// cells in range (fully off-grid) returns a zero-valued analysis.
func (f *Field) AnalyzeArea(center city.Vector3, radius float64) Analysis {
	a := Analysis{
		MinValue:               1,
		DevelopmentSuitability: make(map[city.ZoneType]float64, len(city.AllZones)),
	}

	minCol := int(math.Floor((center.X - radius - f.originX) / f.cfg.CellSize))
	maxCol := int(math.Floor((center.X + radius - f.originX) / f.cfg.CellSize))
	minRow := int(math.Floor((center.Z - radius - f.originZ) / f.cfg.CellSize))
	maxRow := int(math.Floor((center.Z + radius - f.originZ) / f.cfg.CellSize))

	count := 0
	water := 0
	var totalNoise float64
	suitTotals := make(map[city.ZoneType]float64, len(city.AllZones))
	suitCounts := make(map[city.ZoneType]int, len(city.AllZones))

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			if !f.inBounds(col, row) {
				continue
			}
			idx := f.index(col, row)
			c := &f.cells[idx]
			if center.DistanceXZ(f.cellWorldPos(idx)) > radius {
				continue
			}
			count++
			a.AverageValue += c.Value
			a.Pollution += c.Pollution
			a.AverageElevation += c.Elevation
			totalNoise += c.Noise
			if c.Value > a.MaxValue {
				a.MaxValue = c.Value
			}
			if c.Value < a.MinValue {
				a.MinValue = c.Value
			}
			if c.IsWater {
				water++
				continue // water cells don't contribute suitability
			}
			for _, zone := range city.AllZones {
				restricted := false
				for _, tag := range c.Restrictions {
					if tag == city.ZoneName(zone) {
						restricted = true
						break
					}
				}
				if restricted {
					continue
				}
				suitTotals[zone] += suitability(c, zone)
				suitCounts[zone]++
			}
		}
	}

	if count == 0 {
		return Analysis{DevelopmentSuitability: a.DevelopmentSuitability}
	}

	n := float64(count)
	a.AverageValue /= n
	a.Pollution /= n
	a.AverageElevation /= n
	a.WaterCoverage = float64(water) / n
	a.EnvironmentalHealth = city.Clamp01(1 - a.Pollution - totalNoise/n*0.5)
	for _, zone := range city.AllZones {
		if suitCounts[zone] > 0 {
			a.DevelopmentSuitability[zone] = suitTotals[zone] / float64(suitCounts[zone])
		}
	}
	return a
}
