package cache

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/andresuchdata/pharmastock/backend-go/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	defaultSnapshotTTL = 5 * time.Minute
	redisPingTimeout   = 5 * time.Second
	redisDialTimeout   = 3 * time.Second
	redisIOTimeout     = 2 * time.Second
)

// newRedisClient connects and pings Redis, returning the client together
// with the snapshot TTL.
func newRedisClient(cfg config.CacheConfig) (*redis.Client, time.Duration, error) {
	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, 0, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, 0, fmt.Errorf("redis ping %s failed: %w", opts.Addr, err)
	}

	return client, snapshotTTL(cfg), nil
}

func snapshotTTL(cfg config.CacheConfig) time.Duration {
	if cfg.SnapshotTTLSecs <= 0 {
		return defaultSnapshotTTL
	}
	return time.Duration(cfg.SnapshotTTLSecs) * time.Second
}

// buildRedisOptions prefers REDIS_URL and falls back to host/port settings.
// Short timeouts keep a slow cache from stalling API requests.
func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	var opts *redis.Options
	if cfg.RedisURL != "" {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		host, port := cfg.RedisHost, cfg.RedisPort
		if host == "" {
			host = "127.0.0.1"
		}
		if port == "" {
			port = "6379"
		}
		opts = &redis.Options{
			Addr:     net.JoinHostPort(host, port),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
	}

	opts.DialTimeout = redisDialTimeout
	opts.ReadTimeout = redisIOTimeout
	opts.WriteTimeout = redisIOTimeout
	return opts, nil
}

// unlinkPrefixes removes every key under the given prefixes. Keys are
// collected with SCAN and dropped with UNLINK in batches.
func unlinkPrefixes(ctx context.Context, client *redis.Client, batchSize int64, prefixes ...string) error {
	for _, prefix := range prefixes {
		batch := make([]string, 0, batchSize)
		iter := client.Scan(ctx, 0, prefix+":*", batchSize).Iterator()
		for iter.Next(ctx) {
			batch = append(batch, iter.Val())
			if int64(len(batch)) == batchSize {
				if err := client.Unlink(ctx, batch...).Err(); err != nil {
					return fmt.Errorf("redis unlink %s failed: %w", prefix, err)
				}
				batch = batch[:0]
			}
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("redis scan %s failed: %w", prefix, err)
		}
		if len(batch) > 0 {
			if err := client.Unlink(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis unlink %s failed: %w", prefix, err)
			}
		}
	}
	return nil
}
