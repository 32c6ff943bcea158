package sim

import (
	"errors"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/urbansim/citycore/internal/city"
	"github.com/urbansim/citycore/internal/config"
	"github.com/urbansim/citycore/internal/construction"
	"github.com/urbansim/citycore/internal/economy"
	"github.com/urbansim/citycore/internal/nav"
	"github.com/urbansim/citycore/internal/terrain"
)

// ErrBuildingNotFound is returned for operations on unknown building ids.
var ErrBuildingNotFound = errors.New("sim: building not found")

// Simulation owns every subsystem and all mutable city state. It is
// single-threaded and cooperative: the host loop calls Tick once per
// frame, and external collaborators route all mutations through the entry
// points below, which are applied at the next tick boundary.
type Simulation struct {
	cfg   config.Config
	clock *Clock

	terrain      *terrain.Field
	pathfinder   *nav.Pathfinder
	economy      *economy.Engine
	construction *construction.Scheduler

	buildings map[string]*city.Building
	roads     [][]city.Vector3
	agents    []city.Agent

	pending       []func(*Simulation)
	topologyDirty bool

	lastTerrain   float64
	lastFullValue float64
	lastEconomy   float64
	lastTopology  float64

	lastEconReport   economy.Report
	lastConstrReport construction.Report
}

// New builds a simulation from validated configuration. Terrain,
// construction, and economy each get their own deterministic random
// stream derived from the seed.
func New(cfg config.Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:   cfg,
		clock: NewClock(cfg.TimeScale),
		terrain: terrain.NewField(terrain.Config{
			WorldSize: cfg.WorldSize,
			CellSize:  cfg.CellSize,
			Seed:      cfg.Seed,
		}),
		pathfinder: nav.New(cfg.WorldSize, cfg.WorldSize, cfg.CellSize),
		economy: economy.New(economy.Config{
			PropertyTaxRate:   cfg.PropertyTaxRate,
			BusinessTaxRate:   cfg.BusinessTaxRate,
			ServiceCostPerCap: cfg.ServiceCostPerCap,
			StartingFunds:     cfg.StartingFunds,
			TargetFunds:       cfg.TargetFunds,
		}, rand.New(rand.NewSource(cfg.Seed+1))),
		construction: construction.New(construction.Config{
			WorkerCount: cfg.WorkerCount,
			EventChance: cfg.EventChance,
		}, rand.New(rand.NewSource(cfg.Seed+2))),
		buildings: make(map[string]*city.Building),
	}
	return s, nil
}

// Clock exposes start/pause/resume/stop and speed control.
func (s *Simulation) Clock() *Clock { return s.clock }

// ── Entry points (queued, applied at the next tick boundary) ─────────────

// AddBuilding queues a building insert.
func (s *Simulation) AddBuilding(b city.Building) {
	s.pending = append(s.pending, func(s *Simulation) {
		stored := b
		s.buildings[b.ID] = &stored
		s.topologyDirty = true
	})
}

// RemoveBuilding queues a building removal.
func (s *Simulation) RemoveBuilding(id string) {
	s.pending = append(s.pending, func(s *Simulation) {
		delete(s.buildings, id)
		s.topologyDirty = true
	})
}

// AddRoad queues a road polyline insert.
func (s *Simulation) AddRoad(polyline []city.Vector3) {
	s.pending = append(s.pending, func(s *Simulation) {
		s.roads = append(s.roads, polyline)
		s.topologyDirty = true
	})
}

// RemoveRoad queues removal of the road polyline at index (insertion
// order). Out-of-range indexes are ignored at apply time.
func (s *Simulation) RemoveRoad(index int) {
	s.pending = append(s.pending, func(s *Simulation) {
		if index < 0 || index >= len(s.roads) {
			return
		}
		s.roads = append(s.roads[:index], s.roads[index+1:]...)
		s.topologyDirty = true
	})
}

// SetAgents queues a full agent-list replacement.
func (s *Simulation) SetAgents(agents []city.Agent) {
	s.pending = append(s.pending, func(s *Simulation) {
		s.agents = append(s.agents[:0], agents...)
	})
}

// StartConstruction opens a project on a known building. Synchronous: the
// project id is needed by the caller immediately.
func (s *Simulation) StartConstruction(buildingID string, bp city.Blueprint) (uuid.UUID, error) {
	b, ok := s.buildings[buildingID]
	if !ok {
		return uuid.Nil, ErrBuildingNotFound
	}
	return s.construction.StartConstruction(b, bp)
}

// CancelConstruction cancels a project immediately, releasing its workers
// and resetting the building to planned.
func (s *Simulation) CancelConstruction(projectID uuid.UUID) error {
	buildingID, err := s.construction.CancelProject(projectID)
	if err != nil {
		return err
	}
	if b, ok := s.buildings[buildingID]; ok {
		b.Status = city.StatusPlanned
		b.ConstructionProgress = 0
	}
	return nil
}

// ── Tick ─────────────────────────────────────────────────────────────────

// Tick advances the simulation to now. Pending mutations apply first, then
// each subsystem runs at most one bounded pass, gated by its own interval,
// which keeps per-frame cost flat as the city grows.
func (s *Simulation) Tick(now time.Time) {
	dt := s.clock.Update(now)
	s.applyPending()
	if dt <= 0 {
		return
	}
	simNow := s.clock.SimSeconds()

	// Construction runs every tick.
	s.construction.Update(dt/SecondsPerDay, s.buildings)

	// Pathfinder topology check at ~1 Hz simulated.
	if s.topologyDirty && simNow-s.lastTopology >= s.cfg.TopologyInterval {
		s.rebuildTopology()
		s.lastTopology = simNow
	}

	// Terrain: factor refresh, dynamics, and dirty-cell pass on the short
	// interval; full value recompute on the coarse one.
	if simNow-s.lastTerrain >= s.cfg.TerrainInterval {
		buildings := s.buildingList()
		s.terrain.UpdateEnvironmentalFactors(buildings)
		s.terrain.UpdateDynamics(simNow - s.lastTerrain)
		if simNow-s.lastFullValue >= s.cfg.FullValueInterval {
			s.terrain.UpdateValues(buildings, s.agents)
			s.lastFullValue = simNow
		} else {
			s.terrain.UpdateDirty()
		}
		s.lastTerrain = simNow
	}

	// Economy on its configured interval (hourly-equivalent by default).
	if simNow-s.lastEconomy >= s.cfg.EconomyInterval {
		elapsedDays := (simNow - s.lastEconomy) / SecondsPerDay
		s.lastEconReport = s.economy.UpdateEconomy(elapsedDays, s.buildingList(), s.agents)
		s.construction.EconFactor = city.Clamp(1-s.lastEconReport.UnemploymentPct/200, 0.5, 1.2)
		s.lastEconomy = simNow
		slog.Debug("economy updated",
			"sim_time", SimTime(simNow),
			"gdp", s.lastEconReport.GDP,
			"rating", s.lastEconReport.CityRating,
		)
	}
}

func (s *Simulation) applyPending() {
	for _, op := range s.pending {
		op(s)
	}
	s.pending = s.pending[:0]
}

// rebuildTopology regenerates the pathfinder's obstacle and road layers.
// Footprint extent scales with building level; roads rasterize as-is.
func (s *Simulation) rebuildTopology() {
	footprints := make([]nav.Footprint, 0, len(s.buildings))
	for _, b := range s.buildings {
		size := 6 + 2*float64(b.Level)
		footprints = append(footprints, nav.Footprint{
			Center: b.Position,
			Width:  size,
			Depth:  size,
		})
	}
	s.pathfinder.UpdateObstacles(footprints)
	s.pathfinder.UpdateRoads(s.roads)
	s.topologyDirty = false
	slog.Debug("pathfinding topology rebuilt", "buildings", len(footprints), "roads", len(s.roads))
}

// buildingList snapshots the building map in stable id order.
func (s *Simulation) buildingList() []city.Building {
	ids := make([]string, 0, len(s.buildings))
	for id := range s.buildings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]city.Building, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.buildings[id])
	}
	return out
}

// ── Read-only snapshots ──────────────────────────────────────────────────

// EconomicReport returns the most recent economic snapshot.
func (s *Simulation) EconomicReport() economy.Report { return s.lastEconReport }

// MarketAnalysis returns the current trade and demand snapshot.
func (s *Simulation) MarketAnalysis() economy.MarketAnalysis {
	return s.economy.MarketAnalysisSnapshot()
}

// ConstructionReport aggregates the scheduler's current state.
func (s *Simulation) ConstructionReport() construction.Report {
	return s.construction.GenerateReport()
}

// TerrainAnalysis summarizes the terrain field around a point.
func (s *Simulation) TerrainAnalysis(center city.Vector3, radius float64) terrain.Analysis {
	return s.terrain.AnalyzeArea(center, radius)
}

// TerrainValue returns the desirability of the terrain cell at (x, z).
func (s *Simulation) TerrainValue(x, z float64) float64 { return s.terrain.Value(x, z) }

// DevelopmentCost returns the terrain build-cost estimate at (x, z).
func (s *Simulation) DevelopmentCost(x, z float64) float64 {
	return s.terrain.DevelopmentCost(x, z)
}

// CanDevelop reports zone suitability for the terrain cell at (x, z).
func (s *Simulation) CanDevelop(x, z float64, zone city.ZoneType) (float64, bool) {
	return s.terrain.CanDevelop(x, z, zone)
}

// FindPath runs a pathfinding query against the current topology.
func (s *Simulation) FindPath(start, end city.Vector3) []city.Vector3 {
	return s.pathfinder.FindPath(start, end)
}

// Building returns a copy of a building's current state.
func (s *Simulation) Building(id string) (city.Building, error) {
	b, ok := s.buildings[id]
	if !ok {
		return city.Building{}, ErrBuildingNotFound
	}
	return *b, nil
}

// Businesses returns snapshot copies of the business arena.
func (s *Simulation) Businesses() []economy.Business { return s.economy.Businesses() }
