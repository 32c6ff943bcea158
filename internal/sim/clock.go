// Package sim provides the simulation clock and the orchestrator that
// drives every subsystem from a single tick.
package sim

import (
	"fmt"
	"time"
)

// Speed is a discrete game-speed preset.
type Speed uint8

const (
	SpeedPaused Speed = iota
	SpeedSlow
	SpeedNormal
	SpeedFast
	SpeedUltra
)

// multiplier returns the preset's factor over the base time scale.
func (s Speed) multiplier() float64 {
	switch s {
	case SpeedSlow:
		return 0.5
	case SpeedNormal:
		return 1
	case SpeedFast:
		return 2
	case SpeedUltra:
		return 4
	default:
		return 0
	}
}

// SecondsPerDay converts simulated seconds to simulated days.
const SecondsPerDay = 86400.0

// Clock accumulates simulated time from host-loop timestamps: elapsed real
// time × speed preset × global time scale. Pausing halts accumulation and
// preserves all state for resumption.
type Clock struct {
	timeScale  float64
	speed      Speed
	running    bool
	lastReal   time.Time
	simSeconds float64
}

// NewClock creates a stopped clock at normal speed.
func NewClock(timeScale float64) *Clock {
	if timeScale <= 0 {
		timeScale = 1
	}
	return &Clock{timeScale: timeScale, speed: SpeedNormal}
}

// Start begins time accumulation from now.
func (c *Clock) Start(now time.Time) {
	c.running = true
	c.lastReal = now
}

// Pause halts advancement; simulated time is preserved.
func (c *Clock) Pause() { c.speed = SpeedPaused }

// Resume returns to normal speed.
func (c *Clock) Resume() { c.speed = SpeedNormal }

// Stop halts the clock entirely.
func (c *Clock) Stop() { c.running = false }

// SetSpeed selects a speed preset.
func (c *Clock) SetSpeed(s Speed) { c.speed = s }

// Speed returns the current preset.
func (c *Clock) Speed() Speed { return c.speed }

// Update advances the clock to now and returns the simulated seconds that
// elapsed. Paused or stopped clocks return 0 while still tracking real
// time, so resuming never produces a catch-up jump.
func (c *Clock) Update(now time.Time) float64 {
	if !c.running {
		return 0
	}
	elapsed := now.Sub(c.lastReal).Seconds()
	c.lastReal = now
	if elapsed <= 0 {
		return 0
	}
	dt := elapsed * c.speed.multiplier() * c.timeScale
	c.simSeconds += dt
	return dt
}

// SimSeconds returns total accumulated simulated time.
func (c *Clock) SimSeconds() float64 { return c.simSeconds }

// SimTime renders a simulated-seconds count as a readable timestamp.
func SimTime(seconds float64) string {
	total := int64(seconds)
	mins := total / 60 % 60
	hours := total / 3600 % 24
	days := total/int64(SecondsPerDay)%365 + 1
	years := total/int64(SecondsPerDay)/365 + 1
	return fmt.Sprintf("Year %d Day %d, %02d:%02d", years, days, hours, mins)
}
