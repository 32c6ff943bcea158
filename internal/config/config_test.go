package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.WorldSize = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.EventChance = 1.5
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.PropertyTaxRate = -0.01
	assert.Error(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CITYSIM_SEED", "7")
	t.Setenv("CITYSIM_WORLD_SIZE", "250")
	t.Setenv("CITYSIM_EVENT_CHANCE", "0")

	cfg := FromEnv(Default())
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 250.0, cfg.WorldSize)
	assert.Zero(t, cfg.EventChance)
	assert.Equal(t, Default().TimeScale, cfg.TimeScale, "unset variables keep defaults")
}

func TestFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("CITYSIM_SEED", "not-a-number")
	t.Setenv("CITYSIM_TIME_SCALE", "")

	cfg := FromEnv(Default())
	assert.Equal(t, Default().Seed, cfg.Seed)
	assert.Equal(t, Default().TimeScale, cfg.TimeScale)
}
