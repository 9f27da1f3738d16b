package llm

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultCacheTTL controls how long completions stay cached.
const DefaultCacheTTL = 24 * time.Hour

// cacheBackend is the subset of Redis the cache needs.
type cacheBackend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type redisBackend struct {
	rdb *redis.Client
}

func (b redisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	return b.rdb.Get(ctx, key).Bytes()
}

func (b redisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.rdb.Set(ctx, key, value, ttl).Err()
}

// CachedClient serves repeated identical prompts from Redis.
// Cached responses keep their original usage so cost reports stay comparable.
type CachedClient struct {
	Client
	backend cacheBackend
	ttl     time.Duration
	logger  *zap.Logger
	closer  func() error

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachedClient connects to redisURL and wraps client. When the URL is empty,
// invalid or unreachable the cache is disabled and client is returned as is.
func NewCachedClient(ctx context.Context, client Client, redisURL string, ttl time.Duration, logger *zap.Logger) Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(redisURL) == "" {
		return client
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn("cache: invalid redis URL, caching disabled", zap.Error(err))
		return client
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("cache: redis unreachable, caching disabled", zap.Error(err))
		_ = rdb.Close()
		return client
	}
	logger.Info("cache: redis connected", zap.String("addr", opts.Addr))

	c := newCachedClient(client, redisBackend{rdb: rdb}, ttl, logger)
	c.closer = rdb.Close
	return c
}

func newCachedClient(client Client, backend cacheBackend, ttl time.Duration, logger *zap.Logger) *CachedClient {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedClient{Client: client, backend: backend, ttl: ttl, logger: logger}
}

// CacheKey builds a deterministic key from the call parameters.
func CacheKey(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("career:llm:%x", hash[:12])
}

// GenerateContent serves from cache or delegates.
func (c *CachedClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (*Response, error) {
	return c.cached(ctx, CacheKey("text", c.GetModel(tier), prompt), func() (*Response, error) {
		return c.Client.GenerateContent(ctx, prompt, tier)
	})
}

// GenerateJSON serves from cache or delegates.
func (c *CachedClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (*Response, error) {
	return c.cached(ctx, CacheKey("json", c.GetModel(tier), prompt), func() (*Response, error) {
		return c.Client.GenerateJSON(ctx, prompt, tier)
	})
}

func (c *CachedClient) cached(ctx context.Context, key string, call func() (*Response, error)) (*Response, error) {
	data, err := c.backend.Get(ctx, key)
	if err == nil {
		var resp Response
		if json.Unmarshal(data, &resp) == nil {
			c.hits.Add(1)
			c.logger.Debug("cache: hit", zap.String("key", key))
			return &resp, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Debug("cache: get failed", zap.Error(err))
	}
	c.misses.Add(1)

	resp, err := call()
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(resp); err == nil {
		if err := c.backend.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Debug("cache: set failed", zap.Error(err))
		}
	}
	return resp, nil
}

// Stats returns cache hit/miss counters.
func (c *CachedClient) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Close closes the Redis connection and the wrapped client.
func (c *CachedClient) Close() error {
	var errs []error
	if c.closer != nil {
		errs = append(errs, c.closer())
	}
	errs = append(errs, c.Client.Close())
	return errors.Join(errs...)
}
