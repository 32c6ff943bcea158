package construction

import (
	"fmt"
	"log/slog"
)

// eventKind tags the stochastic construction events. Each variant has
// exactly one handler; all are non-fatal and leave invariants intact.
type eventKind uint8

const (
	eventWeather eventKind = iota
	eventMaterialDelay
	eventWorkerInjury
	eventEquipment
)

// rollEvent perturbs one project with at most one low-probability event
// per tick. dt scales the roll so event frequency tracks simulated time,
// not tick rate. A zero EventChance makes the scheduler fully
// deterministic.
func (s *Scheduler) rollEvent(p *Project, dt float64) {
	chance := s.cfg.EventChance * dt
	if chance <= 0 || s.rng.Float64() >= chance {
		return
	}

	kind := eventKind(s.rng.Intn(4))
	switch kind {
	case eventWeather:
		s.applyWeatherDelay(p)
	case eventMaterialDelay:
		s.applyMaterialDelay(p)
	case eventWorkerInjury:
		s.applyWorkerInjury(p)
	case eventEquipment:
		s.applyEquipmentBreakdown(p)
	}
}

// applyWeatherDelay slows work until conditions recover (WeatherFactor
// drifts back toward 1 each update).
func (s *Scheduler) applyWeatherDelay(p *Project) {
	p.WeatherFactor *= 0.6
	if p.WeatherFactor < 0.2 {
		p.WeatherFactor = 0.2
	}
	p.addDelayReason("bad weather")
	slog.Debug("construction event", "project", p.ID, "event", "weather", "factor", p.WeatherFactor)
}

// applyMaterialDelay pushes the current phase's undelivered orders out by
// one to two days.
func (s *Scheduler) applyMaterialDelay(p *Project) {
	ph := p.Phases[p.CurrentPhase]
	slip := 1 + s.rng.Float64()
	for _, m := range ph.Materials {
		if m.Delivered < m.Required {
			m.DeliveryDay += slip
		}
	}
	p.addDelayReason("material delivery slipped")
	slog.Debug("construction event", "project", p.ID, "event", "material_delay", "slip_days", slip)
}

// applyWorkerInjury sends one crew member home and logs a safety incident.
func (s *Scheduler) applyWorkerInjury(p *Project) {
	p.SafetyIncidents++
	if len(p.Workers) > 0 {
		w := p.Workers[len(p.Workers)-1]
		w.Available = true
		w.ProjectID = nil
		p.Workers = p.Workers[:len(p.Workers)-1]
	}
	p.addDelayReason("worker injury")
	slog.Debug("construction event", "project", p.ID, "event", "injury", "incidents", p.SafetyIncidents)
}

// applyEquipmentBreakdown raises the project's daily cost.
func (s *Scheduler) applyEquipmentBreakdown(p *Project) {
	extra := 50 + s.rng.Float64()*150
	p.DailyCost += extra
	p.addDelayReason(fmt.Sprintf("equipment breakdown (+%.0f/day)", extra))
	slog.Debug("construction event", "project", p.ID, "event", "equipment", "extra_daily_cost", extra)
}
