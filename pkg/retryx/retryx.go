// Package retryx bounds calls to flaky collaborators: every attempt gets its
// own timeout and the number of retries is capped.
package retryx

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy configures Do. Zero fields fall back to the defaults below.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64

	// AttemptTimeout bounds each individual attempt.
	AttemptTimeout time.Duration

	InitialInterval time.Duration
	MaxInterval     time.Duration
}

const (
	DefaultAttemptTimeout  = 10 * time.Second
	DefaultInitialInterval = 200 * time.Millisecond
	DefaultMaxInterval     = 2 * time.Second
)

// Permanent marks err so Do stops retrying and returns it unchanged.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op until it succeeds, returns a permanent error, the retries run
// out, or ctx is done. Permanent errors are returned unwrapped.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	timeout := p.AttemptTimeout
	if timeout <= 0 {
		timeout = DefaultAttemptTimeout
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = orDefault(p.InitialInterval, DefaultInitialInterval)
	eb.MaxInterval = orDefault(p.MaxInterval, DefaultMaxInterval)
	eb.MaxElapsedTime = 0 // bounded by MaxRetries and ctx instead

	attempt := func() error {
		actx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return op(actx)
	}

	return backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(eb, p.MaxRetries), ctx))
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
