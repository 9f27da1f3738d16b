package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapBackend struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMapBackend() *mapBackend {
	return &mapBackend{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (b *mapBackend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.data[key]
	if !ok {
		return nil, redis.Nil
	}
	return v, nil
}

func (b *mapBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = value
	b.ttls[key] = ttl
	return nil
}

func TestCachedClient_HitAfterMiss(t *testing.T) {
	inner := &fakeClient{text: `{"skills": []}`}
	backend := newMapBackend()
	client := newCachedClient(inner, backend, time.Minute, nil)

	first, err := client.GenerateJSON(context.Background(), "prompt", TierStandard)
	require.NoError(t, err)
	second, err := client.GenerateJSON(context.Background(), "prompt", TierStandard)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Model, second.Model)
	hits, misses := client.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	for _, ttl := range backend.ttls {
		assert.Equal(t, time.Minute, ttl)
	}
}

func TestCachedClient_KeysDifferByModeAndTier(t *testing.T) {
	inner := &fakeClient{text: "{}"}
	client := newCachedClient(inner, newMapBackend(), 0, nil)
	ctx := context.Background()

	_, _ = client.GenerateJSON(ctx, "prompt", TierStandard)
	_, _ = client.GenerateJSON(ctx, "prompt", TierAdvanced)
	_, _ = client.GenerateContent(ctx, "prompt", TierStandard)

	assert.Equal(t, 3, inner.calls)
	assert.Equal(t, DefaultCacheTTL, client.ttl)
}

func TestCachedClient_ErrorsAreNotCached(t *testing.T) {
	inner := &fakeClient{err: errors.New("unavailable")}
	backend := newMapBackend()
	client := newCachedClient(inner, backend, time.Minute, nil)

	_, err := client.GenerateJSON(context.Background(), "prompt", TierStandard)
	require.Error(t, err)
	assert.Empty(t, backend.data)
}

func TestNewCachedClient_DisabledWithoutURL(t *testing.T) {
	inner := &fakeClient{}
	assert.Same(t, Client(inner), NewCachedClient(context.Background(), inner, "", time.Minute, nil))
	assert.Same(t, Client(inner), NewCachedClient(context.Background(), inner, "://bad", time.Minute, nil))
}

func TestCacheKey_Deterministic(t *testing.T) {
	assert.Equal(t, CacheKey("a", "b"), CacheKey("a", "b"))
	assert.NotEqual(t, CacheKey("a", "b"), CacheKey("ab"))
	assert.Contains(t, CacheKey("x"), "career:llm:")
}

func TestCachedClient_CloseClosesInner(t *testing.T) {
	inner := &fakeClient{}
	client := newCachedClient(inner, newMapBackend(), time.Minute, nil)
	require.NoError(t, client.Close())
	assert.True(t, inner.closed)
}
