// Package retry repeats idempotent calls with a backoff between attempts.
package retry

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	defaultDelay    = 100 * time.Millisecond
	defaultMaxDelay = 5 * time.Second
)

// Backoff returns the pause after the given failed attempt, counted from 1.
type Backoff func(attempt int) time.Duration

type ShouldRetry func(error) bool

// OnRetry observes a failed attempt that is about to be repeated.
type OnRetry func(attempt int, err error, wait time.Duration)

type RetryConfig struct {
	MaxAttempts int
	Backoff     Backoff
	ShouldRetry ShouldRetry
	OnRetry     OnRetry
}

func (c RetryConfig) withDefaults() RetryConfig {
	c.MaxAttempts = max(c.MaxAttempts, 1)
	if c.Backoff == nil {
		c.Backoff = ExponentialBackoff(defaultDelay)
	}
	if c.ShouldRetry == nil {
		c.ShouldRetry = func(error) bool { return true }
	}
	if c.OnRetry == nil {
		c.OnRetry = func(int, error, time.Duration) {}
	}
	return c
}

// ExponentialBackoff doubles delay with every attempt and adds up to 50%
// jitter. Pauses never exceed 5s.
func ExponentialBackoff(delay time.Duration) Backoff {
	return func(attempt int) time.Duration {
		base := delay << min(attempt-1, 16)
		base = min(base, defaultMaxDelay)
		jitter := time.Duration(rand.Int64N(int64(base/2) + 1))
		return min(base+jitter, defaultMaxDelay)
	}
}

func LinearBackoff(delay time.Duration) Backoff {
	return func(int) time.Duration {
		return delay
	}
}

func Do(ctx context.Context, c RetryConfig, fn func() error) error {
	_, err := DoWithResult(ctx, c, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult calls fn until it succeeds, returns an error rejected by
// ShouldRetry, or MaxAttempts is reached. The last error is returned.
func DoWithResult[T any](
	ctx context.Context, c RetryConfig, fn func() (T, error),
) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	c = c.withDefaults()
	for attempt := 1; ; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if attempt >= c.MaxAttempts || !c.ShouldRetry(err) {
			return zero, err
		}

		wait := c.Backoff(attempt)
		c.OnRetry(attempt, err, wait)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, fmt.Errorf("%w: %w", ctx.Err(), err)
		case <-t.C:
		}
	}
}
