// Package config holds the simulation's tunable parameters, with env
// overrides and struct-tag validation.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Config drives world generation, subsystem cadence, and fiscal policy.
// Intervals are in simulated seconds.
type Config struct {
	Seed      int64   `validate:"required"`
	WorldSize float64 `validate:"gt=0"`
	CellSize  float64 `validate:"gt=0"`

	// TimeScale converts real seconds to simulated seconds at normal speed.
	TimeScale float64 `validate:"gt=0"`

	EconomyInterval   float64 `validate:"gt=0"` // default hourly-equivalent
	TerrainInterval   float64 `validate:"gt=0"` // factor refresh + dirty pass
	FullValueInterval float64 `validate:"gt=0"` // full-grid value recompute
	TopologyInterval  float64 `validate:"gt=0"` // pathfinder rebuild check

	WorkerCount int     `validate:"gt=0"`
	EventChance float64 `validate:"gte=0,lte=1"` // construction events/day

	PropertyTaxRate   float64 `validate:"gte=0,lt=1"`
	BusinessTaxRate   float64 `validate:"gte=0,lt=1"`
	ServiceCostPerCap float64 `validate:"gte=0"`
	StartingFunds     float64
	TargetFunds       float64 `validate:"gt=0"`
}

// Default returns the standard simulation parameters.
func Default() Config {
	return Config{
		Seed:              42,
		WorldSize:         400,
		CellSize:          4,
		TimeScale:         60, // 1 real second = 1 simulated minute
		EconomyInterval:   3600,
		TerrainInterval:   5,
		FullValueInterval: 30,
		TopologyInterval:  1,
		WorkerCount:       40,
		EventChance:       0.05,
		PropertyTaxRate:   0.012,
		BusinessTaxRate:   0.10,
		ServiceCostPerCap: 0.8,
		StartingFunds:     50_000,
		TargetFunds:       200_000,
	}
}

var validate = validator.New()

// Validate checks the configuration's struct tags.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// FromEnv overlays CITYSIM_* environment variables onto c. Unset or
// malformed variables leave the existing value in place.
func FromEnv(c Config) Config {
	c.Seed = envInt64("CITYSIM_SEED", c.Seed)
	c.WorldSize = envFloat("CITYSIM_WORLD_SIZE", c.WorldSize)
	c.CellSize = envFloat("CITYSIM_CELL_SIZE", c.CellSize)
	c.TimeScale = envFloat("CITYSIM_TIME_SCALE", c.TimeScale)
	c.EconomyInterval = envFloat("CITYSIM_ECONOMY_INTERVAL", c.EconomyInterval)
	c.WorkerCount = int(envInt64("CITYSIM_WORKER_COUNT", int64(c.WorkerCount)))
	c.EventChance = envFloat("CITYSIM_EVENT_CHANCE", c.EventChance)
	return c
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func envInt64(key string, fallback int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}
