package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 7, cfg.PeriodLengthDays)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PERIOD_LENGTH_DAYS", "14")
	t.Setenv("DAILY_STD_HOURS", "7.5")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 14, cfg.PeriodLengthDays)
	assert.Equal(t, 7.5, cfg.DailyStdHours)
	require.NoError(t, cfg.Validate())
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Load()
	cfg.Port = "nope"
	cfg.PeriodLengthDays = 0
	cfg.PeriodAnchor = "Jan 5"
	cfg.DailyStdHours = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
	assert.Contains(t, err.Error(), "period length")
	assert.Contains(t, err.Error(), "anchor")
	assert.Contains(t, err.Error(), "standard hours")
}
