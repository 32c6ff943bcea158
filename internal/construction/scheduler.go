package construction

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/urbansim/citycore/internal/city"
)

// ErrProjectNotFound is returned for operations on unknown project ids.
// Unknown-id operations always surface this explicitly, never no-op.
var ErrProjectNotFound = errors.New("construction: project not found")

// ErrAlreadyUnderConstruction is returned when a building already has an
// active project.
var ErrAlreadyUnderConstruction = errors.New("construction: building already under construction")

const (
	minCrew             = 2
	maxCrew             = 12
	laborCostFraction   = 0.40
	overheadFraction    = 0.15
	cancelPenaltyRate   = 0.20
	qualityValueSwing   = 0.10 // ±10% property value at completion
	weatherRecoveryRate = 0.2  // WeatherFactor drift toward 1 per day
)

// Config holds scheduler knobs.
type Config struct {
	WorkerCount int
	EventChance float64 // per-project events per simulated day; 0 = none
}

// DefaultConfig returns a modest labor force with rare events.
func DefaultConfig() Config {
	return Config{WorkerCount: 40, EventChance: 0.05}
}

// Project is one active build. Created at construction start, destroyed on
// completion or cancellation.
type Project struct {
	ID         uuid.UUID      `json:"id"`
	BuildingID string         `json:"building_id"`
	Blueprint  city.Blueprint `json:"blueprint"` // snapshot at start

	Phases       []*Phase  `json:"phases"`
	CurrentPhase int       `json:"current_phase"`
	Workers      []*Worker `json:"workers"`
	MaxWorkers   int       `json:"max_workers"`

	ActualProgress    float64  `json:"actual_progress"` // monotonic until 1.0
	ScheduledProgress float64  `json:"scheduled_progress"`
	QualityRating     float64  `json:"quality_rating"` // 1.0 = on-standard
	IsDelayed         bool     `json:"is_delayed"`
	SafetyIncidents   int      `json:"safety_incidents"`
	DelayReasons      []string `json:"delay_reasons,omitempty"`

	StartDay      float64 `json:"start_day"`
	EstimatedCost float64 `json:"estimated_cost"`
	SpentCost     float64 `json:"spent_cost"`
	DailyCost     float64 `json:"daily_cost"`
	WeatherFactor float64 `json:"weather_factor"`
}

func (p *Project) addDelayReason(reason string) {
	// Keep the tail only; reasons are advisory.
	if len(p.DelayReasons) >= 10 {
		p.DelayReasons = p.DelayReasons[1:]
	}
	p.DelayReasons = append(p.DelayReasons, reason)
}

// Report is the aggregate construction snapshot for external callers.
type Report struct {
	ActiveProjects        int     `json:"active_projects"`
	CompletedProjects     int     `json:"completed_projects"`
	TotalInvestment       float64 `json:"total_investment"`
	AverageCompletionTime float64 `json:"average_completion_time"`
	AverageQuality        float64 `json:"average_quality"`
	DelayedProjects       int     `json:"delayed_projects"`
	WorkerUtilization     float64 `json:"worker_utilization"`
	MaterialEfficiency    float64 `json:"material_efficiency"`
}

// Scheduler owns the project map and worker pool.
type Scheduler struct {
	cfg Config
	rng *rand.Rand

	day        float64 // simulated days elapsed
	projects   map[uuid.UUID]*Project
	byBuilding map[string]uuid.UUID
	pool       []*Worker

	// Set by the orchestrator from the latest economic report.
	EconFactor float64

	completedCount     int
	totalCompletionDay float64
	totalQuality       float64
	totalInvestment    float64
}

// New creates a scheduler with its labor pool.
func New(cfg Config, rng *rand.Rand) *Scheduler {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 40
	}
	return &Scheduler{
		cfg:        cfg,
		rng:        rng,
		projects:   make(map[uuid.UUID]*Project),
		byBuilding: make(map[string]uuid.UUID),
		pool:       spawnWorkers(cfg.WorkerCount, rng),
		EconFactor: 1,
	}
}

// StartConstruction opens a project for a building and flips it to
// constructing. Material orders for the first phase go out immediately
// with simulated delivery delays.
func (s *Scheduler) StartConstruction(b *city.Building, bp city.Blueprint) (uuid.UUID, error) {
	if b == nil {
		return uuid.Nil, fmt.Errorf("construction: nil building")
	}
	if _, exists := s.byBuilding[b.ID]; exists {
		return uuid.Nil, ErrAlreadyUnderConstruction
	}
	if bp.ConstructionDays <= 0 {
		bp.ConstructionDays = 30
	}

	phases := buildPhases(bp)
	matCost := materialCost(phases)
	labor := laborCostFraction * (bp.BaseCost + matCost)
	estimate := (bp.BaseCost + matCost + labor) * (1 + overheadFraction)

	crew := int(math.Round(bp.Complexity() / 2))
	if crew < minCrew {
		crew = minCrew
	}
	if crew > maxCrew {
		crew = maxCrew
	}

	p := &Project{
		ID:            uuid.New(),
		BuildingID:    b.ID,
		Blueprint:     bp,
		Phases:        phases,
		MaxWorkers:    crew,
		QualityRating: 0,
		StartDay:      s.day,
		EstimatedCost: estimate,
		DailyCost:     estimate / bp.ConstructionDays,
		WeatherFactor: 1,
	}
	s.orderMaterials(p.Phases[0])
	s.assignWorkers(p, p.Phases[0])

	s.projects[p.ID] = p
	s.byBuilding[b.ID] = p.ID

	b.Status = city.StatusConstructing
	b.ConstructionProgress = 0

	slog.Info("construction started",
		"project", p.ID,
		"building", b.ID,
		"blueprint", bp.Name,
		"estimated_cost", estimate,
		"crew", len(p.Workers),
	)
	return p.ID, nil
}

// orderMaterials stamps delivery dates (2–5 simulated days out) on a
// phase's material orders.
func (s *Scheduler) orderMaterials(ph *Phase) {
	for _, m := range ph.Materials {
		m.DeliveryDay = s.day + 2 + s.rng.Float64()*3
		m.Quality = 0.6 + s.rng.Float64()*0.4
	}
}

// receiveMaterials marks orders whose delivery date has passed as fully
// delivered.
func (s *Scheduler) receiveMaterials(ph *Phase) {
	for _, m := range ph.Materials {
		if m.Delivered < m.Required && s.day >= m.DeliveryDay {
			m.Delivered = m.Required
		}
	}
}

// materialsReady reports whether every required material has reached half
// its requirement with its delivery date in the past.
func (s *Scheduler) materialsReady(ph *Phase) bool {
	for _, m := range ph.Materials {
		if m.Delivered < 0.5*m.Required || s.day < m.DeliveryDay {
			return false
		}
	}
	return true
}

// phaseMaterialQuality averages delivered material quality for a phase.
func phaseMaterialQuality(ph *Phase) float64 {
	if len(ph.Materials) == 0 {
		return 0.7
	}
	total := 0.0
	for _, m := range ph.Materials {
		total += m.Quality
	}
	return total / float64(len(ph.Materials))
}

// Update advances every active project by dt simulated days. The buildings
// map is the external collaborator's state, keyed by building id; projects
// whose building vanished are cancelled.
func (s *Scheduler) Update(dt float64, buildings map[string]*city.Building) {
	if dt <= 0 {
		return
	}
	s.day += dt

	for _, p := range s.projects {
		b, ok := buildings[p.BuildingID]
		if !ok {
			// Building removed externally; drop the project without penalty.
			s.releaseWorkers(p)
			delete(s.byBuilding, p.BuildingID)
			delete(s.projects, p.ID)
			continue
		}
		s.advanceProject(p, b, dt)
	}
}

// advanceProject integrates one project's progress over dt days.
func (s *Scheduler) advanceProject(p *Project, b *city.Building, dt float64) {
	ph := p.Phases[p.CurrentPhase]
	s.receiveMaterials(ph)
	s.rollEvent(p, dt)

	// Weather drifts back toward workable.
	p.WeatherFactor += (1 - p.WeatherFactor) * math.Min(1, weatherRecoveryRate*dt)

	rate := (1 / p.Blueprint.ConstructionDays) *
		crewEfficiency(p) * p.WeatherFactor * phaseMaterialQuality(ph) * s.EconFactor
	p.SpentCost += p.DailyCost * dt
	p.ScheduledProgress = city.Clamp01((s.day - p.StartDay) / p.Blueprint.ConstructionDays)

	// Work never advances past the current phase boundary: the boundary is
	// where the inspection happens, and a phase completes only when its
	// materials are in. Otherwise progress halts there and the project is
	// flagged delayed (non-fatal, nothing already built is lost).
	next := p.ActualProgress + rate*dt
	if next >= ph.EndProgress {
		next = ph.EndProgress
		if s.materialsReady(ph) {
			s.completePhase(p, ph)
		} else if !p.IsDelayed {
			p.IsDelayed = true
			p.addDelayReason(fmt.Sprintf("%s awaiting materials", ph.Name))
		}
	}
	p.ActualProgress = next

	b.ConstructionProgress = p.ActualProgress

	if p.ActualProgress >= 1 {
		s.completeProject(p, b)
	}
}

// completePhase runs the quality inspection, then stages the next phase:
// workers are reassigned and the next material orders go out.
func (s *Scheduler) completePhase(p *Project, ph *Phase) {
	adherence := 1.0
	if p.ScheduledProgress > p.ActualProgress {
		adherence = p.ActualProgress / math.Max(p.ScheduledProgress, 1e-9)
	}
	// Phase quality sits on a 0.5–1.5 scale so 1.0 is the on-standard mark.
	ph.QualityCheck = 0.5 + (crewSkill(p)+phaseMaterialQuality(ph)+adherence)/3
	ph.IsCompleted = true

	weight := ph.EndProgress - ph.StartProgress
	p.QualityRating += ph.QualityCheck * weight
	p.IsDelayed = false

	slog.Info("construction phase complete",
		"project", p.ID,
		"phase", ph.Name,
		"quality", ph.QualityCheck,
		"progress", p.ActualProgress,
	)

	if p.CurrentPhase < len(p.Phases)-1 {
		p.CurrentPhase++
		next := p.Phases[p.CurrentPhase]
		s.orderMaterials(next)
		s.assignWorkers(p, next)
	}
}

// completeProject releases the crew, flips the building operational, and
// adjusts its property value ±10% by final quality around the 1.0 mark.
func (s *Scheduler) completeProject(p *Project, b *city.Building) {
	s.releaseWorkers(p)

	b.Status = city.StatusOperational
	b.ConstructionProgress = 1
	b.Quality = city.Clamp01(p.QualityRating - 0.5)
	b.PropertyValue *= 1 + qualityValueSwing*city.Clamp(p.QualityRating-1, -1, 1)

	s.completedCount++
	s.totalCompletionDay += s.day - p.StartDay
	s.totalQuality += p.QualityRating
	s.totalInvestment += p.SpentCost

	delete(s.byBuilding, p.BuildingID)
	delete(s.projects, p.ID)

	slog.Info("construction complete",
		"project", p.ID,
		"building", b.ID,
		"days", s.day-p.StartDay,
		"quality", p.QualityRating,
		"spent", p.SpentCost,
	)
}

// CancelProject cancels an active project immediately: the crew returns to
// the pool, a cancellation penalty is charged, and the building id that
// was under construction is returned so the caller can reset it.
func (s *Scheduler) CancelProject(id uuid.UUID) (string, error) {
	p, ok := s.projects[id]
	if !ok {
		return "", ErrProjectNotFound
	}
	s.releaseWorkers(p)
	penalty := p.EstimatedCost * cancelPenaltyRate
	s.totalInvestment += p.SpentCost + penalty

	delete(s.byBuilding, p.BuildingID)
	delete(s.projects, id)

	slog.Info("construction cancelled", "project", id, "building", p.BuildingID, "penalty", penalty)
	return p.BuildingID, nil
}

// Project returns a copy of an active project.
func (s *Scheduler) Project(id uuid.UUID) (Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return Project{}, ErrProjectNotFound
	}
	return *p, nil
}

// ProjectForBuilding returns the active project id for a building, if any.
func (s *Scheduler) ProjectForBuilding(buildingID string) (uuid.UUID, bool) {
	id, ok := s.byBuilding[buildingID]
	return id, ok
}

// GenerateReport aggregates scheduler state into the external snapshot.
func (s *Scheduler) GenerateReport() Report {
	r := Report{
		ActiveProjects:    len(s.projects),
		CompletedProjects: s.completedCount,
		TotalInvestment:   s.totalInvestment,
	}

	busy := 0
	for _, w := range s.pool {
		if !w.Available {
			busy++
		}
	}
	r.WorkerUtilization = float64(busy) / math.Max(1, float64(len(s.pool)))

	var delivered, required float64
	for _, p := range s.projects {
		if p.IsDelayed {
			r.DelayedProjects++
		}
		r.TotalInvestment += p.SpentCost
		for _, ph := range p.Phases {
			for _, m := range ph.Materials {
				delivered += m.Delivered
				required += m.Required
			}
		}
	}
	r.MaterialEfficiency = delivered / math.Max(1, required)

	if s.completedCount > 0 {
		r.AverageCompletionTime = s.totalCompletionDay / float64(s.completedCount)
		r.AverageQuality = s.totalQuality / float64(s.completedCount)
	}
	return r
}

// Day returns the scheduler's simulated-day counter.
func (s *Scheduler) Day() float64 { return s.day }
