package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedClient throttles calls to the wrapped client process-wide.
type RateLimitedClient struct {
	Client
	limiter *rate.Limiter
}

// NewRateLimitedClient wraps client with a token bucket of rps requests per
// second and the given burst. A non-positive rps disables limiting.
func NewRateLimitedClient(client Client, rps float64, burst int) Client {
	if rps <= 0 {
		return client
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedClient{Client: client, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// GenerateContent waits for a token, then delegates.
func (c *RateLimitedClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.Client.GenerateContent(ctx, prompt, tier)
}

// GenerateJSON waits for a token, then delegates.
func (c *RateLimitedClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.Client.GenerateJSON(ctx, prompt, tier)
}
