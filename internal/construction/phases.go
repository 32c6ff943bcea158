// Package construction provides the phased build scheduler: projects move
// through Foundation, Structure, Systems, and Finishing, consuming workers
// and materials, accumulating a quality rating, and flipping buildings to
// operational at 100% progress.
package construction

import (
	"math"

	"github.com/urbansim/citycore/internal/city"
)

// MaterialType names a construction input.
type MaterialType string

const (
	MatConcrete MaterialType = "concrete"
	MatSteel    MaterialType = "steel"
	MatTimber   MaterialType = "timber"
	MatWiring   MaterialType = "wiring"
	MatPiping   MaterialType = "piping"
	MatGlass    MaterialType = "glass"
	MatFixtures MaterialType = "fixtures"
)

// Material tracks one ordered input for one phase. A phase may complete
// only once Delivered reaches half of Required and the delivery date has
// passed.
type Material struct {
	Type        MaterialType `json:"type"`
	Required    float64      `json:"required"`
	Delivered   float64      `json:"delivered"`
	Cost        float64      `json:"cost"`
	DeliveryDay float64      `json:"delivery_day"` // absolute scheduler day
	Quality     float64      `json:"quality"`
}

// Phase is one ordered construction stage.
type Phase struct {
	Name            string      `json:"name"`
	Specialization  string      `json:"specialization"`
	StartProgress   float64     `json:"start_progress"`
	EndProgress     float64     `json:"end_progress"`
	RequiredWorkers int         `json:"required_workers"`
	Materials       []*Material `json:"materials"`
	IsCompleted     bool        `json:"is_completed"`
	QualityCheck    float64     `json:"quality_check"` // set at phase inspection
}

// materialNeed sizes one material requirement per unit of footprint volume.
type materialNeed struct {
	mat       MaterialType
	perVolume float64
	unitCost  float64
}

// phaseSpec is the fixed template every project instantiates.
type phaseSpec struct {
	name           string
	specialization string
	start, end     float64
	workers        int
	needs          []materialNeed
}

// The one legal phase sequence. Strictly ordered.
var phaseTemplates = [4]phaseSpec{
	{
		name: "Foundation", specialization: "foundation", start: 0, end: 0.20, workers: 4,
		needs: []materialNeed{
			{MatConcrete, 0.08, 12},
			{MatSteel, 0.02, 40},
		},
	},
	{
		name: "Structure", specialization: "structure", start: 0.20, end: 0.60, workers: 6,
		needs: []materialNeed{
			{MatSteel, 0.05, 40},
			{MatTimber, 0.04, 18},
			{MatConcrete, 0.03, 12},
		},
	},
	{
		name: "Systems", specialization: "systems", start: 0.60, end: 0.85, workers: 4,
		needs: []materialNeed{
			{MatWiring, 0.015, 25},
			{MatPiping, 0.015, 22},
		},
	},
	{
		name: "Finishing", specialization: "finishing", start: 0.85, end: 1.00, workers: 3,
		needs: []materialNeed{
			{MatGlass, 0.02, 30},
			{MatFixtures, 0.01, 45},
		},
	},
}

// buildPhases instantiates the phase sequence for a blueprint, sizing
// material quantities from footprint volume.
func buildPhases(bp city.Blueprint) []*Phase {
	volume := bp.Footprint.X * bp.Footprint.Y * bp.Footprint.Z
	if volume <= 0 {
		volume = 1
	}
	phases := make([]*Phase, 0, len(phaseTemplates))
	for _, t := range phaseTemplates {
		ph := &Phase{
			Name:            t.name,
			Specialization:  t.specialization,
			StartProgress:   t.start,
			EndProgress:     t.end,
			RequiredWorkers: t.workers,
		}
		for _, need := range t.needs {
			qty := math.Max(1, volume*need.perVolume)
			ph.Materials = append(ph.Materials, &Material{
				Type:     need.mat,
				Required: qty,
				Cost:     qty * need.unitCost,
			})
		}
		phases = append(phases, ph)
	}
	return phases
}

// materialCost totals the ordered-material cost across all phases.
func materialCost(phases []*Phase) float64 {
	total := 0.0
	for _, ph := range phases {
		for _, m := range ph.Materials {
			total += m.Cost
		}
	}
	return total
}
