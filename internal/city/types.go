// Package city provides the shared domain types exchanged between the
// simulation core and its external collaborators (rendering, UI, sync).
// The core reads buildings, roads, and agents each tick and mirrors
// construction progress and quality back onto them; it owns nothing else
// in this package.
package city

import "math"

// Vector3 is a point or extent in world space. Y is vertical; the
// simulation grids operate on the XZ plane.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Distance returns the full 3D euclidean distance to other.
func (v Vector3) Distance(other Vector3) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// DistanceXZ returns the ground-plane distance to other, ignoring height.
func (v Vector3) DistanceXZ(other Vector3) float64 {
	dx := v.X - other.X
	dz := v.Z - other.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// Lerp returns the point a fraction t of the way from v to other.
func (v Vector3) Lerp(other Vector3, t float64) Vector3 {
	return Vector3{
		X: v.X + (other.X-v.X)*t,
		Y: v.Y + (other.Y-v.Y)*t,
		Z: v.Z + (other.Z-v.Z)*t,
	}
}

// ZoneType classifies what a parcel of land is for.
type ZoneType uint8

const (
	ZoneResidential ZoneType = iota
	ZoneCommercial
	ZoneIndustrial
	ZoneOffice
)

// ZoneName returns a human-readable name for a zone type.
func ZoneName(z ZoneType) string {
	switch z {
	case ZoneResidential:
		return "residential"
	case ZoneCommercial:
		return "commercial"
	case ZoneIndustrial:
		return "industrial"
	case ZoneOffice:
		return "office"
	default:
		return "unknown"
	}
}

// AllZones lists every zone type, in declaration order.
var AllZones = [4]ZoneType{ZoneResidential, ZoneCommercial, ZoneIndustrial, ZoneOffice}

// WealthLevel buckets buildings and households by affluence.
type WealthLevel uint8

const (
	WealthLow WealthLevel = iota
	WealthMedium
	WealthHigh
)

// AllWealthLevels lists every wealth level, in declaration order.
var AllWealthLevels = [3]WealthLevel{WealthLow, WealthMedium, WealthHigh}

// BuildingStatus tracks a building's lifecycle.
type BuildingStatus uint8

const (
	StatusPlanned BuildingStatus = iota
	StatusConstructing
	StatusOperational
	StatusAbandoned
)

// Building is the external collaborator's building record. The core reads
// most fields and writes only ConstructionProgress, Quality, Status, and
// PropertyValue (the last two at construction completion).
type Building struct {
	ID            string         `json:"id"`
	Position      Vector3        `json:"position"`
	Zone          ZoneType       `json:"zone_type"`
	Wealth        WealthLevel    `json:"wealth_level"`
	Status        BuildingStatus `json:"status"`
	Capacity      int            `json:"capacity"`
	Level         int            `json:"level"`
	PropertyValue float64        `json:"property_value"`

	// Mirrored by the core.
	ConstructionProgress float64 `json:"construction_progress"`
	Quality              float64 `json:"quality"`
}

// Agent is the external collaborator's citizen record, read-only to the core.
type Agent struct {
	Position    Vector3 `json:"position"`
	HomeID      string  `json:"home_id,omitempty"`
	WorkplaceID string  `json:"workplace_id,omitempty"`
	Employed    bool    `json:"employed"`
	Education   float64 `json:"education"` // 0.0–1.0
}

// Blueprint describes what is being built: footprint extents in world units,
// base cost, and nominal construction duration in simulated days.
type Blueprint struct {
	Name             string  `json:"name"`
	Footprint        Vector3 `json:"footprint"` // X=width, Y=height, Z=depth
	BaseCost         float64 `json:"base_cost"`
	ConstructionDays float64 `json:"construction_days"`
}

// Complexity scores a blueprint's build difficulty from its footprint volume.
// Used to size crews and material orders.
func (b Blueprint) Complexity() float64 {
	volume := b.Footprint.X * b.Footprint.Y * b.Footprint.Z
	if volume <= 0 {
		return 1
	}
	return math.Cbrt(volume)
}

// Clamp01 bounds v to [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
