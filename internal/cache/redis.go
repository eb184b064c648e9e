package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Config holds Redis configuration
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RedisCache tracks import-job state in Redis. The worker treats it as
// optional: when Redis is unreachable the service runs without state
// tracking rather than failing.
type RedisCache struct {
	client *redis.Client
}

// ImportState records the outcome of the last successful run of one job
type ImportState struct {
	Job         string    `json:"job"`
	CompletedAt time.Time `json:"completed_at"`
	Success     int       `json:"success"`
	Errors      int       `json:"errors"`
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// SetImportState records the outcome of a completed import job
func (c *RedisCache) SetImportState(ctx context.Context, state ImportState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal import state: %w", err)
	}

	key := importStateKey(state.Job)
	if err := c.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set import state: %w", err)
	}

	log.Debug().
		Str("job", state.Job).
		Time("completed_at", state.CompletedAt).
		Msg("Import state recorded")

	return nil
}

// GetImportState returns the last recorded state for a job, or nil when the
// job has never completed
func (c *RedisCache) GetImportState(ctx context.Context, job string) (*ImportState, error) {
	data, err := c.client.Get(ctx, importStateKey(job)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import state: %w", err)
	}

	var state ImportState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal import state: %w", err)
	}

	return &state, nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func importStateKey(job string) string {
	return fmt.Sprintf("clubratings:import_state:%s", job)
}
