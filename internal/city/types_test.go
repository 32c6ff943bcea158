package city

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector3Distances(t *testing.T) {
	a := Vector3{X: 1, Y: 2, Z: 3}
	b := Vector3{X: 4, Y: 6, Z: 3}

	assert.InDelta(t, 5.0, a.Distance(b), 1e-9)
	assert.InDelta(t, 3.0, a.DistanceXZ(b), 1e-9, "ground distance ignores height")
	assert.Zero(t, a.Distance(a))
}

func TestVector3Lerp(t *testing.T) {
	a := Vector3{X: 0, Z: 0}
	b := Vector3{X: 10, Y: 4, Z: -10}

	mid := a.Lerp(b, 0.5)
	assert.InDelta(t, 5.0, mid.X, 1e-9)
	assert.InDelta(t, 2.0, mid.Y, 1e-9)
	assert.InDelta(t, -5.0, mid.Z, 1e-9)

	assert.Equal(t, a, a.Lerp(b, 0))
	assert.Equal(t, b, a.Lerp(b, 1))
}

func TestZoneNames(t *testing.T) {
	assert.Equal(t, "residential", ZoneName(ZoneResidential))
	assert.Equal(t, "industrial", ZoneName(ZoneIndustrial))
	assert.Equal(t, "unknown", ZoneName(ZoneType(99)))
}

func TestBlueprintComplexity(t *testing.T) {
	bp := Blueprint{Footprint: Vector3{X: 10, Y: 10, Z: 10}}
	assert.InDelta(t, 10.0, bp.Complexity(), 1e-9, "cube root of footprint volume")

	assert.Equal(t, 1.0, Blueprint{}.Complexity(), "degenerate footprints floor at 1")

	bigger := Blueprint{Footprint: Vector3{X: 40, Y: 20, Z: 40}}
	assert.Greater(t, bigger.Complexity(), bp.Complexity())
	assert.InDelta(t, math.Cbrt(32_000), bigger.Complexity(), 1e-9)
}

func TestClampHelpers(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.5))
	assert.Equal(t, 1.0, Clamp01(1.5))
	assert.Equal(t, 0.25, Clamp01(0.25))

	assert.Equal(t, 0.5, Clamp(0.1, 0.5, 2.0))
	assert.Equal(t, 2.0, Clamp(7, 0.5, 2.0))
	assert.Equal(t, 1.3, Clamp(1.3, 0.5, 2.0))
}
