package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL is how long a generated reply stays cached.
const DefaultCacheTTL = 24 * time.Hour

const cacheKeyPrefix = "hotelcritic:reply:"

// Store is the key-value surface the reply cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisStore is a Store backed by Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects lazily to the Redis server at addr.
func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis GET: %w", err)
	}
	return val, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error { return r.client.Close() }

// Cached serves repeated prompts from a Store. Cache failures are logged and
// never fail a request.
type Cached struct {
	Provider
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewCached wraps p. A nil logger discards cache diagnostics.
func NewCached(p Provider, store Store, ttl time.Duration, logger *slog.Logger) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cached{Provider: p, store: store, ttl: ttl, logger: logger}
}

func (c *Cached) Generate(ctx context.Context, prompt string, s Settings) (string, error) {
	key := CacheKey(c.Provider.Name(), prompt, s)

	val, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("reply cache read failed", "error", err)
	case ok:
		c.logger.Debug("reply cache hit", "key", key)
		return val, nil
	default:
		c.logger.Debug("reply cache miss", "key", key)
	}

	out, err := c.Provider.Generate(ctx, prompt, s)
	if err != nil {
		return "", err
	}
	if err := c.store.Set(ctx, key, out, c.ttl); err != nil {
		c.logger.Warn("reply cache write failed", "error", err)
	}
	return out, nil
}

// CacheKey derives a stable key from everything that shapes a reply.
func CacheKey(provider, prompt string, s Settings) string {
	h := sha256.New()
	for _, part := range []string{
		provider,
		s.Model,
		strconv.FormatFloat(s.Temperature, 'f', -1, 64),
		strconv.Itoa(maxTokens(s)),
		prompt,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}
