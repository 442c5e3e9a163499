package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// FileSource reads a YAML document of the form
//
//	complaint_type:
//	  - code: noise
//	    label: Noise
type FileSource struct {
	Path string
}

// Load parses the file
func (s FileSource) Load(ctx context.Context) (Snapshot, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return ParseYAML(raw)
}

// ParseYAML decodes a dictionary document
func ParseYAML(raw []byte) (Snapshot, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("parse dictionary: %w", err)
	}
	return snap, nil
}

// PostgresSource reads the sys_dict table
type PostgresSource struct {
	DB *pgxpool.Pool
}

// Load reads every dictionary row
func (s PostgresSource) Load(ctx context.Context) (Snapshot, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT kind, code, label, score
		FROM sys_dict
		ORDER BY kind, sort_order, code
	`)
	if err != nil {
		return nil, fmt.Errorf("query sys_dict: %w", err)
	}
	defer rows.Close()

	snap := make(Snapshot)
	for rows.Next() {
		var (
			kind string
			e    Entry
		)
		if err := rows.Scan(&kind, &e.Code, &e.Label, &e.Score); err != nil {
			return nil, fmt.Errorf("scan sys_dict: %w", err)
		}
		snap[Kind(kind)] = append(snap[Kind(kind)], e)
	}
	return snap, rows.Err()
}

// CacheKey is the Redis key holding the cached snapshot
const CacheKey = "complaintdesk:dictionary"

// RedisCache is a read-through cache in front of another source.
// Redis failures fall back to the inner source.
type RedisCache struct {
	rdb    redis.Cmdable
	inner  Source
	ttl    time.Duration
	logger *zap.SugaredLogger
}

// NewRedisCache wraps inner with a Redis cache
func NewRedisCache(rdb redis.Cmdable, inner Source, ttl time.Duration, logger *zap.SugaredLogger) *RedisCache {
	return &RedisCache{rdb: rdb, inner: inner, ttl: ttl, logger: logger}
}

// Load returns the cached snapshot or fills the cache from the inner source
func (c *RedisCache) Load(ctx context.Context) (Snapshot, error) {
	raw, err := c.rdb.Get(ctx, CacheKey).Bytes()
	switch {
	case err == nil:
		var snap Snapshot
		if jerr := json.Unmarshal(raw, &snap); jerr == nil {
			return snap, nil
		}
		c.logger.Warnw("Discarding unreadable dictionary cache entry", "key", CacheKey)
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warnw("Dictionary cache unavailable, reading source", "error", err)
	}

	snap, err := c.inner.Load(ctx)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(snap)
	if err != nil {
		return snap, nil
	}
	if err := c.rdb.Set(ctx, CacheKey, encoded, c.ttl).Err(); err != nil {
		c.logger.Warnw("Failed to cache dictionary", "error", err)
	}
	return snap, nil
}
