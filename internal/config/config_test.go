package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg := FromViper(v)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "pharmastock", cfg.Database.DBName)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 300, cfg.Cache.SnapshotTTLSecs)
	assert.False(t, cfg.Storage.Enabled)

	intel := cfg.Intelligence
	assert.Equal(t, 1.5, intel.SafetyFactor)
	assert.Equal(t, 7, intel.DefaultLeadTimeDays)
	assert.Equal(t, 30, intel.DefaultHorizonDays)
	assert.Equal(t, "linear-regression", intel.DefaultModel)
	assert.Equal(t, 0.75, intel.TrendAverageAccuracy)
	assert.Equal(t, int64(42), intel.Seed)
	assert.Equal(t, 50, intel.Trees)
	assert.Equal(t, 0.8, intel.RiskHighThreshold)
	assert.Equal(t, 0.6, intel.RiskMediumThreshold)
	assert.Equal(t, 4, intel.Workers)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("SAFETY_FACTOR", 2.0)
	v.Set("RISK_HIGH_THRESHOLD", 0.9)
	v.Set("CACHE_ENABLED", true)
	v.Set("REDIS_URL", "redis://localhost:6379/1")

	cfg := FromViper(v)

	assert.Equal(t, 2.0, cfg.Intelligence.SafetyFactor)
	assert.Equal(t, 0.9, cfg.Intelligence.RiskHighThreshold)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Cache.RedisURL)
}
