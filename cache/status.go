package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"reelsmith/config"
	"reelsmith/types"
)

// ErrNotFound is returned when no status is cached for a job.
var ErrNotFound = errors.New("cache: job status not found")

// RedisConfig holds connection settings for the status cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// StatusCache mirrors generation job status into redis so any API instance
// can answer polling requests.
type StatusCache struct {
	redis *redis.Client
}

// New creates a status cache. A failed ping is logged by the caller; the
// cache degrades to a no-op when redis is unreachable.
func New(cfg RedisConfig) *StatusCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &StatusCache{redis: rdb}
}

// Ping verifies the redis connection.
func (c *StatusCache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *StatusCache) Close() error {
	return c.redis.Close()
}

func statusKey(jobID string) string {
	return "jobs:status:" + jobID
}

// SetStatus stores a job status snapshot with the configured TTL.
func (c *StatusCache) SetStatus(ctx context.Context, status *types.JobStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal job status: %w", err)
	}
	if err := c.redis.Set(ctx, statusKey(status.JobID), data, config.JobStatusTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache job status: %w", err)
	}
	return nil
}

// GetStatus fetches a cached job status. Returns ErrNotFound for unknown jobs.
func (c *StatusCache) GetStatus(ctx context.Context, jobID string) (*types.JobStatus, error) {
	data, err := c.redis.Get(ctx, statusKey(jobID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read job status: %w", err)
	}

	var status types.JobStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job status: %w", err)
	}
	return &status, nil
}

// Delete removes a cached job status.
func (c *StatusCache) Delete(ctx context.Context, jobID string) error {
	return c.redis.Del(ctx, statusKey(jobID)).Err()
}
