package terrain

import (
	"math"

	"github.com/urbansim/citycore/internal/city"
)

// FactorType identifies what an environmental factor emits.
type FactorType uint8

const (
	FactorPollution FactorType = iota
	FactorNoise
	FactorScenic
)

// Falloff shapes how factor intensity diminishes with distance.
type Falloff uint8

const (
	FalloffLinear Falloff = iota
	FalloffExponential
	FalloffLogarithmic
)

// Factor is a transient per-update environmental source. The factor list
// is regenerated from current operational buildings, water bodies, and
// protected areas on every factor pass; factors are never persisted.
type Factor struct {
	Type      FactorType
	Source    city.Vector3
	Intensity float64
	Radius    float64
	Shape     Falloff
}

// intensityAt returns the factor's contribution at distance d from its source.
func (fa Factor) intensityAt(d float64) float64 {
	if d >= fa.Radius || fa.Radius <= 0 {
		return 0
	}
	switch fa.Shape {
	case FalloffExponential:
		return fa.Intensity * math.Exp(-3*d/fa.Radius)
	case FalloffLogarithmic:
		return fa.Intensity * (1 - math.Log(1+d)/math.Log(1+fa.Radius))
	default:
		return fa.Intensity * (1 - d/fa.Radius)
	}
}

// zoneEmission sizes a building's pollution and noise output by zone.
// Industrial emits the most, residential the least.
func zoneEmission(zone city.ZoneType) (pollution, noise float64) {
	switch zone {
	case city.ZoneIndustrial:
		return 0.8, 0.6
	case city.ZoneCommercial:
		return 0.3, 0.4
	case city.ZoneOffice:
		return 0.15, 0.25
	default:
		return 0.05, 0.1
	}
}

// UpdateEnvironmentalFactors regenerates the factor list from operational
// buildings, water bodies, and protected areas, then applies it to the grid.
// Touched cells are queued for incremental value recompute.
func (f *Field) UpdateEnvironmentalFactors(buildings []city.Building) {
	f.factors = f.factors[:0]

	for _, b := range buildings {
		if b.Status != city.StatusOperational {
			continue
		}
		levelScale := 1 + float64(b.Level-1)*0.3
		pollution, noise := zoneEmission(b.Zone)
		if pollution > 0 {
			f.factors = append(f.factors, Factor{
				Type:      FactorPollution,
				Source:    b.Position,
				Intensity: pollution * levelScale,
				Radius:    20 + pollution*40,
				Shape:     FalloffExponential,
			})
		}
		if noise > 0 {
			f.factors = append(f.factors, Factor{
				Type:      FactorNoise,
				Source:    b.Position,
				Intensity: noise * levelScale,
				Radius:    15 + noise*25,
				Shape:     FalloffLinear,
			})
		}
	}

	// Water is scenic along its whole course; sample every few vertices.
	for _, polyline := range f.waterBodies {
		for i := 0; i < len(polyline); i += 4 {
			f.factors = append(f.factors, Factor{
				Type:      FactorScenic,
				Source:    polyline[i],
				Intensity: 0.4,
				Radius:    waterThreshold,
				Shape:     FalloffLogarithmic,
			})
		}
	}
	for _, pa := range f.protected {
		f.factors = append(f.factors, Factor{
			Type:      FactorScenic,
			Source:    pa.Center,
			Intensity: 0.5,
			Radius:    pa.Radius * 2,
			Shape:     FalloffLinear,
		})
	}

	f.applyFactors()
}

// applyFactors writes factor contributions onto the grid. Pollution and
// noise sources sustain their levels (dynamics spread and decay them
// between passes); scenic is recomputed outright.
func (f *Field) applyFactors() {
	for i := range f.cells {
		f.cells[i].Scenic = 0
	}

	for _, fa := range f.factors {
		f.applyFactor(fa)
	}
}

func (f *Field) applyFactor(fa Factor) {
	minCol := int(math.Floor((fa.Source.X - fa.Radius - f.originX) / f.cfg.CellSize))
	maxCol := int(math.Floor((fa.Source.X + fa.Radius - f.originX) / f.cfg.CellSize))
	minRow := int(math.Floor((fa.Source.Z - fa.Radius - f.originZ) / f.cfg.CellSize))
	maxRow := int(math.Floor((fa.Source.Z + fa.Radius - f.originZ) / f.cfg.CellSize))

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			if !f.inBounds(col, row) {
				continue
			}
			idx := f.index(col, row)
			cell := &f.cells[idx]
			contribution := fa.intensityAt(fa.Source.DistanceXZ(f.cellWorldPos(idx)))
			if contribution <= 0 {
				continue
			}
			switch fa.Type {
			case FactorPollution:
				if contribution > cell.Pollution {
					cell.Pollution = contribution
				}
			case FactorNoise:
				if contribution > cell.Noise {
					cell.Noise = contribution
				}
			case FactorScenic:
				cell.Scenic += contribution
			}
			f.markDirty(col, row)
		}
	}
}

// markDirty queues a cell and its axis neighbors for incremental recompute.
func (f *Field) markDirty(col, row int) {
	f.dirty[f.index(col, row)] = struct{}{}
	for _, d := range [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}} {
		if f.inBounds(col+d[0], row+d[1]) {
			f.dirty[f.index(col+d[0], row+d[1])] = struct{}{}
		}
	}
}
