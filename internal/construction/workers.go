package construction

import (
	"math/rand"

	"github.com/google/uuid"
)

// Worker is one member of the labor pool. A worker serves at most one
// project at a time.
type Worker struct {
	ID             uuid.UUID  `json:"id"`
	SkillLevel     float64    `json:"skill_level"` // 0.0–1.0
	Specialization string     `json:"specialization"`
	Efficiency     float64    `json:"efficiency"`
	Available      bool       `json:"available"`
	ProjectID      *uuid.UUID `json:"project_id,omitempty"`
}

var specializations = [...]string{"foundation", "structure", "systems", "finishing", "general"}

// spawnWorkers creates the labor pool, cycling specializations so every
// phase can staff up.
func spawnWorkers(count int, rng *rand.Rand) []*Worker {
	workers := make([]*Worker, 0, count)
	for i := 0; i < count; i++ {
		skill := 0.3 + rng.Float64()*0.7
		workers = append(workers, &Worker{
			ID:             uuid.New(),
			SkillLevel:     skill,
			Specialization: specializations[i%len(specializations)],
			Efficiency:     0.5 + skill*0.5,
			Available:      true,
		})
	}
	return workers
}

// assignWorkers staffs a project for a phase: specialization matches first,
// then anyone available, up to the smaller of the phase requirement and the
// project's crew cap.
func (s *Scheduler) assignWorkers(p *Project, ph *Phase) {
	s.releaseWorkers(p)

	want := ph.RequiredWorkers
	if want > p.MaxWorkers {
		want = p.MaxWorkers
	}

	pick := func(matchSpec bool) {
		for _, w := range s.pool {
			if len(p.Workers) >= want {
				return
			}
			if !w.Available {
				continue
			}
			if matchSpec && w.Specialization != ph.Specialization {
				continue
			}
			w.Available = false
			id := p.ID
			w.ProjectID = &id
			p.Workers = append(p.Workers, w)
		}
	}
	pick(true)
	pick(false)
}

// releaseWorkers returns a project's crew to the pool.
func (s *Scheduler) releaseWorkers(p *Project) {
	for _, w := range p.Workers {
		w.Available = true
		w.ProjectID = nil
	}
	p.Workers = p.Workers[:0]
}

// crewEfficiency averages the assigned crew's efficiency; an unstaffed
// project works at a trickle rather than halting outright.
func crewEfficiency(p *Project) float64 {
	if len(p.Workers) == 0 {
		return 0.1
	}
	total := 0.0
	for _, w := range p.Workers {
		total += w.Efficiency
	}
	return total / float64(len(p.Workers))
}

// crewSkill averages the assigned crew's skill for quality inspections.
func crewSkill(p *Project) float64 {
	if len(p.Workers) == 0 {
		return 0.3
	}
	total := 0.0
	for _, w := range p.Workers {
		total += w.SkillLevel
	}
	return total / float64(len(p.Workers))
}
