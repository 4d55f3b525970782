package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 0, cfg.DeductionHour)
	assert.Equal(t, 5, cfg.DeductionMinute)
	assert.Equal(t, "America/Guatemala", cfg.Timezone)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DEDUCTION_HOUR", "3")
	t.Setenv("DEDUCTION_MINUTE", "30")
	t.Setenv("ADMIN_EMAIL", "ops@gym.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3, cfg.DeductionHour)
	assert.Equal(t, 30, cfg.DeductionMinute)
	assert.Equal(t, "ops@gym.example", cfg.AdminEmail)
}

func TestLoadIgnoresBadInt(t *testing.T) {
	t.Setenv("DEDUCTION_HOUR", "midnight")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.DeductionHour)
}
