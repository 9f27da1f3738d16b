// Package retry runs one extraction pass with validation-driven recovery.
//
// Attempt 1 is the plain extraction. Every later attempt classifies the
// previous failure and tries the applicable recovery strategies in order of
// relative cost, keeping a candidate only when it beats the best confidence
// seen so far. Transient call failures back off exponentially before the
// next attempt. Execute never returns an error: exhaustion is reported in
// the RetryResult alongside the best data found.
package retry

import (
	"fmt"
	"time"
)

// Defaults for Config
const (
	DefaultMaxAttempts   = 3
	DefaultMinConfidence = 70.0
	DefaultBackoffBase   = time.Second
	DefaultCallTimeout   = 90 * time.Second
)

// Strategy labels reported in RetryMetadata.FinalStrategy
const (
	LabelInitial  = "initial_extraction"
	LabelRecovery = "retry_recovery"
)

// Config bounds a pass
type Config struct {
	MaxAttempts   int
	MinConfidence float64
	// BackoffBase is the delay after the first transient failure; it doubles per attempt.
	BackoffBase time.Duration
	// CallTimeout bounds each completion call; zero disables the limit.
	CallTimeout time.Duration
}

// DefaultConfig returns the standard bounds
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   DefaultMaxAttempts,
		MinConfidence: DefaultMinConfidence,
		BackoffBase:   DefaultBackoffBase,
		CallTimeout:   DefaultCallTimeout,
	}
}

// Validate checks the bounds
func (c Config) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 100 {
		return fmt.Errorf("min confidence must be within [0,100], got %.1f", c.MinConfidence)
	}
	if c.BackoffBase < 0 || c.CallTimeout < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.MinConfidence <= 0 {
		c.MinConfidence = DefaultMinConfidence
	}
	return c
}
