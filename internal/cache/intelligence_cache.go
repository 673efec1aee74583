package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/pharmastock/backend-go/internal/config"
	"github.com/andresuchdata/pharmastock/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	reorderKeyPrefix   = "intel:reorder"
	suppliersKeyPrefix = "intel:suppliers"
	intelScanBatchSize = 100
)

// SnapshotParams identifies a reorder analysis run. Suggestions computed
// with different policy settings are cached separately.
type SnapshotParams struct {
	SafetyFactor  float64
	LeadTimeDays  int
	ForecastModel string
}

// IntelligenceCache stores the whole-inventory snapshots that are expensive
// to rebuild. Forecasts are never cached since every call re-fits.
type IntelligenceCache interface {
	GetReorderSuggestions(ctx context.Context, params SnapshotParams) ([]domain.ReorderSuggestion, bool, error)
	SetReorderSuggestions(ctx context.Context, params SnapshotParams, suggestions []domain.ReorderSuggestion) error
	GetSupplierRanking(ctx context.Context) ([]domain.ScoredSupplier, bool, error)
	SetSupplierRanking(ctx context.Context, ranking []domain.ScoredSupplier) error
	InvalidateAll(ctx context.Context) error
}

type redisIntelligenceCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopIntelligenceCache struct{}

func NewIntelligenceCache(cfg config.CacheConfig) (IntelligenceCache, error) {
	if !cfg.Enabled {
		return &noopIntelligenceCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisIntelligenceCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopIntelligenceCache() IntelligenceCache {
	return &noopIntelligenceCache{}
}

func (c *redisIntelligenceCache) GetReorderSuggestions(ctx context.Context, params SnapshotParams) ([]domain.ReorderSuggestion, bool, error) {
	var suggestions []domain.ReorderSuggestion
	ok, err := c.getJSON(ctx, buildReorderKey(params), &suggestions)
	return suggestions, ok, err
}

func (c *redisIntelligenceCache) SetReorderSuggestions(ctx context.Context, params SnapshotParams, suggestions []domain.ReorderSuggestion) error {
	return c.setJSON(ctx, buildReorderKey(params), suggestions)
}

func (c *redisIntelligenceCache) GetSupplierRanking(ctx context.Context) ([]domain.ScoredSupplier, bool, error) {
	var ranking []domain.ScoredSupplier
	ok, err := c.getJSON(ctx, buildSuppliersKey(), &ranking)
	return ranking, ok, err
}

func (c *redisIntelligenceCache) SetSupplierRanking(ctx context.Context, ranking []domain.ScoredSupplier) error {
	return c.setJSON(ctx, buildSuppliersKey(), ranking)
}

func (c *redisIntelligenceCache) InvalidateAll(ctx context.Context) error {
	return unlinkPrefixes(ctx, c.client, intelScanBatchSize, reorderKeyPrefix, suppliersKeyPrefix)
}

func (c *redisIntelligenceCache) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, dst); err != nil {
		return false, fmt.Errorf("decode %s cache: %w", key, err)
	}
	return true, nil
}

func (c *redisIntelligenceCache) setJSON(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s cache: %w", key, err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (n *noopIntelligenceCache) GetReorderSuggestions(ctx context.Context, params SnapshotParams) ([]domain.ReorderSuggestion, bool, error) {
	return nil, false, nil
}

func (n *noopIntelligenceCache) SetReorderSuggestions(ctx context.Context, params SnapshotParams, suggestions []domain.ReorderSuggestion) error {
	return nil
}

func (n *noopIntelligenceCache) GetSupplierRanking(ctx context.Context) ([]domain.ScoredSupplier, bool, error) {
	return nil, false, nil
}

func (n *noopIntelligenceCache) SetSupplierRanking(ctx context.Context, ranking []domain.ScoredSupplier) error {
	return nil
}

func (n *noopIntelligenceCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildReorderKey(params SnapshotParams) string {
	return fmt.Sprintf("%s:%s", reorderKeyPrefix, snapshotParamsHash(params))
}

func buildSuppliersKey() string {
	return suppliersKeyPrefix + ":ranking"
}

func snapshotParamsHash(params SnapshotParams) string {
	parts := []string{
		fmt.Sprintf("safety_factor=%.4f", params.SafetyFactor),
		fmt.Sprintf("lead_time=%d", params.LeadTimeDays),
	}
	if m := strings.ToLower(strings.TrimSpace(params.ForecastModel)); m != "" {
		parts = append(parts, "model="+m)
	}

	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
