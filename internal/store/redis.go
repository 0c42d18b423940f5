package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string        `json:"addr"`
	Password string        `json:"password"`
	DB       int           `json:"db"`
	Prefix   string        `json:"prefix"`
	TTL      time.Duration `json:"ttl"` // 0 = no expiry
}

// RedisStore persists records in Redis. When Redis is unavailable it falls
// back to an in-memory store so the running process keeps its state; the
// degradation is logged once per transition.
type RedisStore struct {
	client   *redis.Client
	cfg      RedisConfig
	fallback *MemoryStore
	healthy  atomic.Bool
	logger   zerolog.Logger
}

// NewRedisStore connects to Redis. A failed initial ping does not fail
// construction; the store starts in degraded (memory-only) mode and recovers
// on the next successful operation.
func NewRedisStore(cfg RedisConfig, logger zerolog.Logger) *RedisStore {
	if cfg.Prefix == "" {
		cfg.Prefix = "core"
	}
	s := &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		cfg:      cfg,
		fallback: NewMemoryStore(),
		logger:   logger.With().Str("component", "redis_store").Logger(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		s.logger.Warn().Err(err).Str("addr", cfg.Addr).
			Msg("redis unavailable, starting in memory-fallback mode")
		s.healthy.Store(false)
	} else {
		s.healthy.Store(true)
		s.logger.Info().Str("addr", cfg.Addr).Msg("connected to redis")
	}
	return s
}

func (s *RedisStore) key(key string) string {
	return s.cfg.Prefix + ":" + key
}

func (s *RedisStore) markHealthy(ok bool) {
	if s.healthy.Swap(ok) != ok {
		if ok {
			s.logger.Info().Msg("redis recovered")
		} else {
			s.logger.Warn().Msg("redis degraded, using memory fallback")
		}
	}
}

// Save writes the record to Redis, mirroring it to the fallback so a later
// Redis outage still serves the latest state.
func (s *RedisStore) Save(ctx context.Context, key string, value interface{}) error {
	if err := s.fallback.Save(ctx, key, value); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(key), data, s.cfg.TTL).Err(); err != nil {
		s.markHealthy(false)
		return fmt.Errorf("redis save %s: %w", key, err)
	}
	s.markHealthy(true)
	return nil
}

// Load reads from Redis, falling back to the in-memory mirror on error.
func (s *RedisStore) Load(ctx context.Context, key string, out interface{}) error {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err == redis.Nil {
		s.markHealthy(true)
		return ErrNotFound
	}
	if err != nil {
		s.markHealthy(false)
		return s.fallback.Load(ctx, key, out)
	}
	s.markHealthy(true)
	return json.Unmarshal(data, out)
}

// Delete removes the record from Redis and the fallback.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	_ = s.fallback.Delete(ctx, key)
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		s.markHealthy(false)
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	s.markHealthy(true)
	return nil
}

// Healthy reports whether the last Redis operation succeeded.
func (s *RedisStore) Healthy() bool {
	return s.healthy.Load()
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
