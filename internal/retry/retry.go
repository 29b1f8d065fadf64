// Package retry implements the exponential-backoff-with-ceiling retry loop
// used both within a job attempt (transient embedding errors) and by the
// job queue (backoff between whole-attempt retries).
package retry

import (
	"context"
	"time"
)

// Config parameterizes a retry loop. Base is the first delay; each
// subsequent attempt doubles it, capped at Max.
type Config struct {
	MaxAttempts int
	Base        time.Duration
	Max         time.Duration
}

// Delay returns the backoff delay to wait after the given 0-indexed attempt
// fails, before the next attempt starts.
func (c Config) Delay(attempt int) time.Duration {
	d := c.Base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= c.Max {
			return c.Max
		}
	}
	return d
}

// Do retries fn up to cfg.MaxAttempts times, sleeping cfg.Delay(attempt)
// between attempts, and returns the last error if every attempt fails.
// It stops early on context cancellation.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.Delay(attempt)):
			}
		}
	}
	return lastErr
}
