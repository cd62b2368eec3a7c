// Package retry re-runs flaky operations such as classifier calls.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Config controls how often and how long to retry.
type Config struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     bool // linear backoff: attempt * Delay

	// OnRetry, when set, is told about every failed attempt that will be retried.
	OnRetry func(err error, next time.Duration)
}

// IsPermanent reports whether err was marked with backoff.Permanent.
func IsPermanent(err error) bool {
	var p *backoff.PermanentError
	return errors.As(err, &p)
}

// Policy returns the wait schedule between attempts.
func (c Config) Policy() backoff.BackOff {
	if c.Backoff {
		return &linearBackOff{step: c.Delay}
	}
	return backoff.NewConstantBackOff(c.Delay)
}

// Do calls fn until it succeeds, returns a permanent error, attempts run out,
// or ctx is cancelled. Errors marked with backoff.Permanent are returned
// unwrapped.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	attempts := max(cfg.MaxAttempts, 1)

	opts := []backoff.RetryOption{
		backoff.WithBackOff(cfg.Policy()),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithMaxElapsedTime(0),
	}
	if cfg.OnRetry != nil {
		opts = append(opts, backoff.WithNotify(cfg.OnRetry))
	}

	var (
		tries     int
		permanent *backoff.PermanentError
	)
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		tries++
		err := fn(ctx)
		if !errors.As(err, &permanent) {
			permanent = nil
		}
		return struct{}{}, err
	}, opts...)
	switch {
	case err == nil:
		return nil
	case permanent != nil:
		return permanent.Err
	case tries < attempts || attempts == 1 || ctx.Err() != nil:
		return err
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}

// linearBackOff waits step, 2*step, 3*step and so on.
type linearBackOff struct {
	step  time.Duration
	tries int
}

var _ backoff.BackOff = (*linearBackOff)(nil)

func (b *linearBackOff) NextBackOff() time.Duration {
	b.tries++
	return time.Duration(b.tries) * b.step
}

func (b *linearBackOff) Reset() { b.tries = 0 }
