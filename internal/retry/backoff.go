package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// sleep waits for d or until ctx is done. Tests replace it.
var sleep = func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// backoffDelay returns base × 2^(failures-1) for the given number of
// consecutive attempt slots, without jitter.
func backoffDelay(base time.Duration, failures int) time.Duration {
	if failures < 1 || base <= 0 {
		return 0
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = base
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = base << 16
	bo.Reset()

	d := bo.NextBackOff()
	for i := 1; i < failures; i++ {
		d = bo.NextBackOff()
	}
	return d
}
