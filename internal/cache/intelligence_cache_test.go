package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/pharmastock/backend-go/internal/config"
	"github.com/andresuchdata/pharmastock/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIntelligenceCache_DisabledIsNoop(t *testing.T) {
	c, err := NewIntelligenceCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.SetReorderSuggestions(ctx, SnapshotParams{}, []domain.ReorderSuggestion{{DrugName: "x"}}))

	got, ok, err := c.GetReorderSuggestions(ctx, SnapshotParams{})
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	_, ok, err = c.GetSupplierRanking(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.InvalidateAll(ctx))
}

func TestBuildReorderKey(t *testing.T) {
	base := SnapshotParams{SafetyFactor: 1.5, LeadTimeDays: 7}

	key := buildReorderKey(base)
	assert.True(t, strings.HasPrefix(key, "intel:reorder:"))
	assert.Len(t, strings.TrimPrefix(key, "intel:reorder:"), 40)

	assert.Equal(t, key, buildReorderKey(SnapshotParams{SafetyFactor: 1.5, LeadTimeDays: 7}))
	assert.NotEqual(t, key, buildReorderKey(SnapshotParams{SafetyFactor: 2, LeadTimeDays: 7}))
	assert.NotEqual(t, key, buildReorderKey(SnapshotParams{SafetyFactor: 1.5, LeadTimeDays: 14}))

	withModel := buildReorderKey(SnapshotParams{SafetyFactor: 1.5, LeadTimeDays: 7, ForecastModel: "Linear-Regression "})
	assert.NotEqual(t, key, withModel)
	assert.Equal(t, withModel, buildReorderKey(SnapshotParams{SafetyFactor: 1.5, LeadTimeDays: 7, ForecastModel: "linear-regression"}))
}

func TestBuildSuppliersKey(t *testing.T) {
	assert.Equal(t, "intel:suppliers:ranking", buildSuppliersKey())
}

func TestBuildRedisOptions(t *testing.T) {
	t.Run("url wins", func(t *testing.T) {
		opts, err := buildRedisOptions(config.CacheConfig{RedisURL: "redis://:secret@cache:6380/2"})
		require.NoError(t, err)
		assert.Equal(t, "cache:6380", opts.Addr)
		assert.Equal(t, "secret", opts.Password)
		assert.Equal(t, 2, opts.DB)
	})

	t.Run("host and port defaults", func(t *testing.T) {
		opts, err := buildRedisOptions(config.CacheConfig{RedisDB: 1})
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:6379", opts.Addr)
		assert.Equal(t, 1, opts.DB)
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := buildRedisOptions(config.CacheConfig{RedisURL: "http://nope"})
		assert.Error(t, err)
	})
}

func TestSnapshotTTL(t *testing.T) {
	assert.Equal(t, 5*time.Minute, snapshotTTL(config.CacheConfig{}))
	assert.Equal(t, 90*time.Second, snapshotTTL(config.CacheConfig{SnapshotTTLSecs: 90}))
}

func TestBuildRedisOptions_Timeouts(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisURL: "redis://cache:6379/0"})
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, opts.DialTimeout)
	assert.Equal(t, 2*time.Second, opts.ReadTimeout)
	assert.Equal(t, 2*time.Second, opts.WriteTimeout)
}
