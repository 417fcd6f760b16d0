package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"recording-whisper/internal/app/utils"
	"recording-whisper/internal/config"
)

// TranscriptCache stores transcription results keyed by chunk content, so
// re-running over identical audio can skip the remote call. A cache is
// additive: misses and failures never change the outcome of a run.
type TranscriptCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, text string) error
}

// Key derives the cache key for a chunk from its raw bytes.
func Key(audio []byte) string {
	return "a2t:chunk:" + utils.HashBytes(audio)
}

// Noop is the default cache: every lookup misses, every store is dropped.
type Noop struct{}

func (Noop) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (Noop) Set(context.Context, string, string) error         { return nil }

// cached entries outlive any plausible re-run window
const defaultTTL = 30 * 24 * time.Hour

// RedisCache keeps chunk transcripts in redis with a fixed TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl: defaultTTL,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	text, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, text string) error {
	return c.client.Set(ctx, key, text, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
