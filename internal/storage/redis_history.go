package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"graph_router/pkg"

	"github.com/redis/go-redis/v9"
)

const (
	// HistoryTTL is the default lifetime of a run record
	HistoryTTL = 7 * 24 * time.Hour

	runPrefix  = "run:"
	runListKey = "runs"
)

// HistoryConfig controls where run history goes
type HistoryConfig struct {
	RedisURL   string        `envconfig:"REDIS_URL" yaml:"-"`
	FilePath   string        `envconfig:"HISTORY_FILE" yaml:"file_path"`
	TTL        time.Duration `envconfig:"HISTORY_TTL" yaml:"ttl"`
	MaxEntries int           `envconfig:"HISTORY_MAX_ENTRIES" yaml:"max_entries"`
}

// RedisHistory implements HistoryStore using Redis
type RedisHistory struct {
	client     *redis.Client
	ttl        time.Duration
	maxEntries int
}

// NewRedisHistory creates a Redis history store from a redis:// URL
func NewRedisHistory(ctx context.Context, config HistoryConfig) (*RedisHistory, error) {
	if config.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL environment variable is required")
	}

	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := config.TTL
	if ttl <= 0 {
		ttl = HistoryTTL
	}
	maxEntries := config.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 100
	}

	return &RedisHistory{client: client, ttl: ttl, maxEntries: maxEntries}, nil
}

// key generates a Redis key for the given run ID
func (r *RedisHistory) key(id string) string {
	return runPrefix + id
}

// Save stores the record with TTL and pushes its ID onto the bounded run list
func (r *RedisHistory) Save(ctx context.Context, record pkg.RunRecord) error {
	data, err := pkg.JSON.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(record.ID), data, r.ttl)
	pipe.LPush(ctx, runListKey, record.ID)
	pipe.LTrim(ctx, runListKey, 0, int64(r.maxEntries-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}
	return nil
}

// Get retrieves one record
func (r *RedisHistory) Get(ctx context.Context, id string) (*pkg.RunRecord, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("run not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get run record: %w", err)
	}

	var record pkg.RunRecord
	if err := pkg.JSON.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run record: %w", err)
	}
	return &record, nil
}

// Recent returns up to n records, newest first. Expired records are skipped.
func (r *RedisHistory) Recent(ctx context.Context, n int) ([]pkg.RunRecord, error) {
	if n <= 0 {
		return []pkg.RunRecord{}, nil
	}
	ids, err := r.client.LRange(ctx, runListKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	records := make([]pkg.RunRecord, 0, len(ids))
	for _, id := range ids {
		record, err := r.Get(ctx, id)
		if err != nil {
			continue
		}
		records = append(records, *record)
	}
	return records, nil
}

// Close closes the Redis connection
func (r *RedisHistory) Close() error {
	return r.client.Close()
}
