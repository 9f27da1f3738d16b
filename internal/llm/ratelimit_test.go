package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimitedClient_DisabledReturnsInner(t *testing.T) {
	inner := &fakeClient{}
	assert.Same(t, Client(inner), NewRateLimitedClient(inner, 0, 5))
}

func TestRateLimitedClient_Delegates(t *testing.T) {
	inner := &fakeClient{text: "{}"}
	client := NewRateLimitedClient(inner, 1000, 2)

	_, err := client.GenerateJSON(context.Background(), "a", TierLite)
	require.NoError(t, err)
	_, err = client.GenerateContent(context.Background(), "b", TierLite)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestRateLimitedClient_HonoursContext(t *testing.T) {
	inner := &fakeClient{text: "{}"}
	client := NewRateLimitedClient(inner, 0.001, 1)

	_, err := client.GenerateJSON(context.Background(), "first", TierLite)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = client.GenerateJSON(ctx, "second", TierLite)

	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}
