// Package retry runs operations with bounded exponential backoff and jitter.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// Config configures retry behavior for transient failures.
type Config struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns the policy used at store boundaries.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 4,
		InitialWait: 50 * time.Millisecond,
		MaxWait:     2 * time.Second,
		Multiplier:  2.0,
	}
}

// Validate checks the policy bounds.
func (c Config) Validate() error {
	switch {
	case c.MaxAttempts < 1:
		return fmt.Errorf("retry max attempts must be >= 1, got %d", c.MaxAttempts)
	case c.InitialWait < 0 || c.MaxWait < 0:
		return fmt.Errorf("retry waits must not be negative")
	case c.Multiplier < 1:
		return fmt.Errorf("retry multiplier must be >= 1, got %g", c.Multiplier)
	}
	return nil
}

// Classifier reports whether err is worth another attempt.
type Classifier func(err error) bool

// Do calls op until it succeeds, returns an error the classifier rejects,
// or the attempts run out. A nil classifier retries every error. Context
// errors are never retried.
func Do(ctx context.Context, cfg Config, retryable Classifier, op func(ctx context.Context) error) error {
	_, err := Value(ctx, cfg, retryable, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Value is Do for operations that return a result.
func Value[T any](ctx context.Context, cfg Config, retryable Classifier, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := max(cfg.MaxAttempts, 1)

	var lastErr error
	for attempt := range attempts {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !shouldRetry(err, retryable) {
			return zero, err
		}

		// Last attempt: don't sleep, just return the error.
		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(cfg.backoff(attempt)):
		}
	}
	return zero, lastErr
}

func shouldRetry(err error, retryable Classifier) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if retryable == nil {
		return true
	}
	return retryable(err)
}

// backoff computes the wait duration for the given attempt.
func (c Config) backoff(attempt int) time.Duration {
	mult := c.Multiplier
	if mult < 1 {
		mult = 1
	}
	wait := float64(c.InitialWait) * math.Pow(mult, float64(attempt))
	if c.MaxWait > 0 && wait > float64(c.MaxWait) {
		wait = float64(c.MaxWait)
	}

	// Add ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
